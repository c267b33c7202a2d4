package ast

import (
	"github.com/skeinlang/skein/pkg/types"
)

// Root is the kind-checked, name-resolved input program. Earlier phases
// own parsing, resolution, and kind inference; everything here arrives
// with kinds attached and symbols resolved.
type Root struct {
	Defs      []*Def
	Classes   []*ClassDecl
	Instances []*InstanceDecl
	Effects   []*EffectDecl
	Enums     []*EnumDecl
}

// Def is one top-level definition: a declared signature and a body.
type Def struct {
	Sym  types.DefSym
	Spec Spec
	Body Expr
	Loc  SourceLocation
}

func (d *Def) GetSourceLocation() SourceLocation { return d.Loc }

// Spec is a declared signature: quantifiers, constraints, formal
// parameters, return type, and effect. Quantifier variables are rigid;
// the body may not specialize them.
type Spec struct {
	Quantifiers []types.Var
	TConstrs    []types.ClassConstraint
	EConstrs    []types.EqualityConstraint
	FParams     []FParam
	RetTpe      types.Type
	Eff         types.Type
	Loc         SourceLocation
}

// DeclaredScheme assembles the scheme this spec declares: an arrow over
// the parameter types for functions, the bare return type for constants.
func (s Spec) DeclaredScheme() types.Scheme {
	base := s.RetTpe
	if len(s.FParams) > 0 {
		ps := make([]types.Type, len(s.FParams))
		for i, p := range s.FParams {
			ps[i] = p.Tpe
		}
		base = types.MkArrow(ps, s.Eff, s.RetTpe)
	}
	return types.Scheme{
		Quantifiers: s.Quantifiers,
		TConstrs:    s.TConstrs,
		EConstrs:    s.EConstrs,
		Base:        base,
	}
}

// VarSym identifies a term-level variable binding. Name resolution gives
// every binder a unique id, so shadowing is already resolved.
type VarSym struct {
	Name string
	ID   int
}

func (s VarSym) String() string { return s.Name }

// FParam is a formal parameter with its declared type.
type FParam struct {
	Sym VarSym
	Tpe types.Type
	Loc SourceLocation
}

// ClassDecl declares a type class over one parameter.
type ClassDecl struct {
	Sym    types.ClassSym
	Param  types.Var
	Super  []types.ClassSym
	Sigs   []*SigDecl
	Assocs []AssocDecl
	Loc    SourceLocation
}

func (d *ClassDecl) GetSourceLocation() SourceLocation { return d.Loc }

// SigDecl is a class signature, optionally carrying a default body.
type SigDecl struct {
	Sym     types.SigSym
	Spec    Spec
	Default Expr // nil when the signature has no default implementation
	Loc     SourceLocation
}

func (d *SigDecl) GetSourceLocation() SourceLocation { return d.Loc }

// AssocDecl declares an associated type inside a class.
type AssocDecl struct {
	Sym types.AssocSym
	K   types.Kind
	Loc SourceLocation
}

// InstanceDecl declares an instance of a class at a type, with the defs
// implementing the class signatures and the associated type equations.
type InstanceDecl struct {
	Class    types.ClassSym
	Tpe      types.Type
	TConstrs []types.ClassConstraint
	Defs     []*Def
	Assocs   []AssocDef
	Loc      SourceLocation
}

func (d *InstanceDecl) GetSourceLocation() SourceLocation { return d.Loc }

// AssocDef is one associated type equation provided by an instance.
type AssocDef struct {
	Sym types.AssocSym
	Arg types.Type
	Ret types.Type
	Loc SourceLocation
}

// EffectDecl declares an algebraic effect and its operations.
type EffectDecl struct {
	Sym types.EffSym
	Ops []*OpDecl
	Loc SourceLocation
}

func (d *EffectDecl) GetSourceLocation() SourceLocation { return d.Loc }

// OpDecl declares one operation of an effect. The operation's own effect
// is the declaring effect plus whatever its spec names.
type OpDecl struct {
	Sym  types.OpSym
	Spec Spec
	Loc  SourceLocation
}

// EnumDecl declares an enum, its type parameters, and its cases.
type EnumDecl struct {
	Sym    types.EnumSym
	Params []types.Var
	Cases  []CaseDecl
	Loc    SourceLocation
}

func (d *EnumDecl) GetSourceLocation() SourceLocation { return d.Loc }

// CaseDecl is one enum case with its payload type.
type CaseDecl struct {
	Sym     types.CaseSym
	Payload types.Type
	Loc     SourceLocation
}

// Expr is the closed sum of input expressions. Inference dispatches on
// the concrete node types with exhaustive switches.
type Expr interface {
	SourceLocatable
	isExpr()
}

// Lit is the closed sum of literal constants.
type Lit interface {
	isLit()
}

type (
	UnitLit    struct{}
	BoolLit    struct{ V bool }
	CharLit    struct{ V rune }
	Int32Lit   struct{ V int32 }
	Int64Lit   struct{ V int64 }
	Float64Lit struct{ V float64 }
	BigIntLit  struct{ V string }
	StrLit     struct{ V string }
)

func (UnitLit) isLit()    {}
func (BoolLit) isLit()    {}
func (CharLit) isLit()    {}
func (Int32Lit) isLit()   {}
func (Int64Lit) isLit()   {}
func (Float64Lit) isLit() {}
func (BigIntLit) isLit()  {}
func (StrLit) isLit()     {}

// VarExpr references a bound term variable.
type VarExpr struct {
	Sym VarSym
	Loc SourceLocation
}

// CstExpr is a literal.
type CstExpr struct {
	Lit Lit
	Loc SourceLocation
}

// LambdaExpr abstracts one parameter. A nil Param.Tpe means the
// parameter type is inferred.
type LambdaExpr struct {
	Param FParam
	Body  Expr
	Loc   SourceLocation
}

// ApplyExpr applies a function to arguments.
type ApplyExpr struct {
	Fn   Expr
	Args []Expr
	Loc  SourceLocation
}

// LetExpr binds Bound to Sym in Body. Local bindings are monomorphic;
// polymorphism enters through top-level defs and signatures. Rec allows
// the binding to reference itself.
type LetExpr struct {
	Sym   VarSym
	Rec   bool
	Bound Expr
	Body  Expr
	Loc   SourceLocation
}

// IfExpr is a conditional.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Loc  SourceLocation
}

// AscribeExpr asserts a type, an effect, or both on an expression. A nil
// Tpe or Eff asserts nothing for that component.
type AscribeExpr struct {
	E   Expr
	Tpe types.Type
	Eff types.Type
	Loc SourceLocation
}

// TupleExpr builds a tuple.
type TupleExpr struct {
	Elems []Expr
	Loc   SourceLocation
}

// TagExpr constructs an enum case around a payload.
type TagExpr struct {
	Case    types.CaseSym
	Payload Expr
	Loc     SourceLocation
}

// RecordEmptyExpr is the empty record literal.
type RecordEmptyExpr struct {
	Loc SourceLocation
}

// RecordSelectExpr projects one field out of a record.
type RecordSelectExpr struct {
	Rec   Expr
	Label types.Label
	Loc   SourceLocation
}

// RecordExtendExpr adds one field in front of a record.
type RecordExtendExpr struct {
	Label types.Label
	Value Expr
	Rest  Expr
	Loc   SourceLocation
}

// RecordRestrictExpr removes one field from a record.
type RecordRestrictExpr struct {
	Label types.Label
	Rest  Expr
	Loc   SourceLocation
}

// LazyExpr suspends a pure expression; ForceExpr runs it.
type LazyExpr struct {
	E   Expr
	Loc SourceLocation
}

type ForceExpr struct {
	E   Expr
	Loc SourceLocation
}

// DefRefExpr references a top-level def, instantiating its scheme.
type DefRefExpr struct {
	Sym types.DefSym
	Loc SourceLocation
}

// SigRefExpr references a class signature, instantiating its scheme and
// emitting the class obligation.
type SigRefExpr struct {
	Sym types.SigSym
	Loc SourceLocation
}

// DoExpr performs one algebraic effect operation.
type DoExpr struct {
	Op   types.OpSym
	Args []Expr
	Loc  SourceLocation
}

// TryWithExpr runs Body, handling the operations of one effect. The
// handled effect is discharged from Body's effect.
type TryWithExpr struct {
	Body    Expr
	Handled types.EffSym
	Rules   []HandlerRule
	Loc     SourceLocation
}

// HandlerRule implements one operation inside a TryWithExpr. Rule bodies
// must produce the TryWith result type.
type HandlerRule struct {
	Op     types.OpSym
	Params []FParam
	Body   Expr
	Loc    SourceLocation
}

func (e *VarExpr) isExpr()            {}
func (e *CstExpr) isExpr()            {}
func (e *LambdaExpr) isExpr()         {}
func (e *ApplyExpr) isExpr()          {}
func (e *LetExpr) isExpr()            {}
func (e *IfExpr) isExpr()             {}
func (e *AscribeExpr) isExpr()        {}
func (e *TupleExpr) isExpr()          {}
func (e *TagExpr) isExpr()            {}
func (e *RecordEmptyExpr) isExpr()    {}
func (e *RecordSelectExpr) isExpr()   {}
func (e *RecordExtendExpr) isExpr()   {}
func (e *RecordRestrictExpr) isExpr() {}
func (e *LazyExpr) isExpr()           {}
func (e *ForceExpr) isExpr()          {}
func (e *DefRefExpr) isExpr()         {}
func (e *SigRefExpr) isExpr()         {}
func (e *DoExpr) isExpr()             {}
func (e *TryWithExpr) isExpr()        {}

func (e *VarExpr) GetSourceLocation() SourceLocation            { return e.Loc }
func (e *CstExpr) GetSourceLocation() SourceLocation            { return e.Loc }
func (e *LambdaExpr) GetSourceLocation() SourceLocation         { return e.Loc }
func (e *ApplyExpr) GetSourceLocation() SourceLocation          { return e.Loc }
func (e *LetExpr) GetSourceLocation() SourceLocation            { return e.Loc }
func (e *IfExpr) GetSourceLocation() SourceLocation             { return e.Loc }
func (e *AscribeExpr) GetSourceLocation() SourceLocation        { return e.Loc }
func (e *TupleExpr) GetSourceLocation() SourceLocation          { return e.Loc }
func (e *TagExpr) GetSourceLocation() SourceLocation            { return e.Loc }
func (e *RecordEmptyExpr) GetSourceLocation() SourceLocation    { return e.Loc }
func (e *RecordSelectExpr) GetSourceLocation() SourceLocation   { return e.Loc }
func (e *RecordExtendExpr) GetSourceLocation() SourceLocation   { return e.Loc }
func (e *RecordRestrictExpr) GetSourceLocation() SourceLocation { return e.Loc }
func (e *LazyExpr) GetSourceLocation() SourceLocation           { return e.Loc }
func (e *ForceExpr) GetSourceLocation() SourceLocation          { return e.Loc }
func (e *DefRefExpr) GetSourceLocation() SourceLocation         { return e.Loc }
func (e *SigRefExpr) GetSourceLocation() SourceLocation         { return e.Loc }
func (e *DoExpr) GetSourceLocation() SourceLocation             { return e.Loc }
func (e *TryWithExpr) GetSourceLocation() SourceLocation        { return e.Loc }
