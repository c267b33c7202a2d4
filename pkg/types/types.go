package types

import "fmt"

// Type is the term language of the checker: variables, constructor
// constants, applications, transparent aliases, and associated-type
// projections. Terms are immutable after construction and freely shared
// across goroutines. Effect formulas are ordinary Types of kind Eff.
type Type interface {
	Kind() Kind
	isType()
	fmt.Stringer
}

// VarID uniquely identifies a type variable within one checker run.
type VarID int64

// Var is a type variable. Identity is the ID alone: two Vars denote the
// same variable iff their IDs match. A rigid Var stands for a
// caller-fixed type and may not be bound to a concrete term. Display
// names live in the Formatter's side table, never on the node.
type Var struct {
	ID    VarID
	K     Kind
	Rigid bool
}

func (v Var) Kind() Kind { return v.K }
func (v Var) isType()    {}

func (v Var) String() string {
	if v.Rigid {
		return fmt.Sprintf("!%d", v.ID)
	}
	return fmt.Sprintf("?%d", v.ID)
}

// Cst is a constructor constant.
type Cst struct {
	C Ctor
}

func (c Cst) Kind() Kind     { return c.C.Kind() }
func (c Cst) isType()        {}
func (c Cst) String() string { return c.C.String() }

// Apply is a left-associative type application. Its kind is the result
// side of the function position's arrow kind, fixed at construction.
type Apply struct {
	Fn  Type
	Arg Type
	K   Kind
}

func (a *Apply) Kind() Kind { return a.K }
func (a *Apply) isType()    {}

func (a *Apply) String() string {
	return fmt.Sprintf("%s[%s]", a.Fn, a.Arg)
}

// Alias is an applied type alias. Unification always expands it to Tpe
// before structural comparison; the node survives only so diagnostics can
// show the name the user wrote.
type Alias struct {
	Sym  AliasSym
	Args []Type
	Tpe  Type
}

func (a *Alias) Kind() Kind { return a.Tpe.Kind() }
func (a *Alias) isType()    {}

func (a *Alias) String() string {
	s := a.Sym.String()
	for _, arg := range a.Args {
		s += fmt.Sprintf("[%s]", arg)
	}
	return s
}

// AssocType is an associated-type projection Sym[Arg]. It is opaque to
// structural unification until the equality environment reduces it.
type AssocType struct {
	Sym AssocSym
	Arg Type
	K   Kind
}

func (a *AssocType) Kind() Kind { return a.K }
func (a *AssocType) isType()    {}

func (a *AssocType) String() string {
	return fmt.Sprintf("%s[%s]", a.Sym, a.Arg)
}

// MkApply applies fn to arg, deriving the result kind from fn's arrow
// kind. Applying a non-arrow is an invariant violation from an earlier
// phase and raises an internal fault.
func MkApply(fn, arg Type) *Apply {
	ka, ok := fn.Kind().(KArrow)
	if !ok {
		ICE("applied type %s of non-arrow kind %s", fn, fn.Kind())
	}
	return &Apply{Fn: fn, Arg: arg, K: ka.R}
}

// MkApplyAll applies fn to each argument in turn.
func MkApplyAll(fn Type, args ...Type) Type {
	t := fn
	for _, arg := range args {
		t = MkApply(t, arg)
	}
	return t
}

// Convenience constants of kind Star.
var (
	UnitType    Type = Cst{CtorUnit{}}
	VoidType    Type = Cst{CtorVoid{}}
	BoolType    Type = Cst{CtorBool{}}
	CharType    Type = Cst{CtorChar{}}
	Float64Type Type = Cst{CtorFloat64{}}
	Int32Type   Type = Cst{CtorInt32{}}
	Int64Type   Type = Cst{CtorInt64{}}
	BigIntType  Type = Cst{CtorBigInt{}}
	StrType     Type = Cst{CtorStr{}}
)

// MkArrow builds the function type params -> ret \ eff.
func MkArrow(params []Type, eff, ret Type) Type {
	t := Type(Cst{CtorArrow{Arity: len(params) + 1}})
	t = MkApply(t, eff)
	for _, p := range params {
		t = MkApply(t, p)
	}
	return MkApply(t, ret)
}

// ArrowParts splits a fully applied arrow into its parameter types,
// effect, and result. ok is false if t is not a fully applied arrow.
func ArrowParts(t Type) (params []Type, eff Type, ret Type, ok bool) {
	head, args := SplitApply(t)
	cst, isCst := head.(Cst)
	if !isCst {
		return nil, nil, nil, false
	}
	arrow, isArrow := cst.C.(CtorArrow)
	if !isArrow || len(args) != arrow.Arity+1 {
		return nil, nil, nil, false
	}
	return args[1 : len(args)-1], args[0], args[len(args)-1], true
}

// SplitApply unwinds an application spine into its head and arguments.
func SplitApply(t Type) (Type, []Type) {
	var args []Type
	for {
		app, ok := t.(*Apply)
		if !ok {
			// reverse into application order
			for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
				args[i], args[j] = args[j], args[i]
			}
			return t, args
		}
		args = append(args, app.Arg)
		t = app.Fn
	}
}

// HeadCtor returns the constructor at the head of t's application spine,
// if any.
func HeadCtor(t Type) (Ctor, bool) {
	head, _ := SplitApply(t)
	if cst, ok := head.(Cst); ok {
		return cst.C, true
	}
	return nil, false
}

// MkTuple builds the tuple type of the given element types.
func MkTuple(elems []Type) Type {
	return MkApplyAll(Cst{CtorTuple{Arity: len(elems)}}, elems...)
}

// MkRecordRowEmpty, MkRecordRowExtend and MkRecord build record types.
func MkRecordRowEmpty() Type { return Cst{CtorRecordRowEmpty{}} }

func MkRecordRowExtend(label Label, field, rest Type) Type {
	return MkApplyAll(Cst{CtorRecordRowExtend{Label: label}}, field, rest)
}

func MkRecord(row Type) Type {
	return MkApply(Cst{CtorRecord{}}, row)
}

// MkSchemaRowEmpty, MkSchemaRowExtend and MkSchema build schema types.
func MkSchemaRowEmpty() Type { return Cst{CtorSchemaRowEmpty{}} }

func MkSchemaRowExtend(label Label, pred, rest Type) Type {
	return MkApplyAll(Cst{CtorSchemaRowExtend{Label: label}}, pred, rest)
}

func MkSchema(row Type) Type {
	return MkApply(Cst{CtorSchema{}}, row)
}

// MkLazy builds Lazy[t].
func MkLazy(t Type) Type {
	return MkApply(Cst{CtorLazy{}}, t)
}

// MkEnum applies an enum constructor to its type arguments.
func MkEnum(sym EnumSym, kind Kind, args ...Type) Type {
	return MkApplyAll(Cst{CtorEnum{Sym: sym, K: kind}}, args...)
}

// MkTag builds the constructor type of one enum case:
// Tag(c)[payload][enumType].
func MkTag(c CaseSym, payload, enumType Type) Type {
	return MkApplyAll(Cst{CtorTag{Case: c}}, payload, enumType)
}

// TypeEq reports structural equality of two types. Variables compare by
// ID only; aliases compare by their expansions.
func TypeEq(a, b Type) bool {
	a, b = UnAlias(a), UnAlias(b)
	switch x := a.(type) {
	case Var:
		y, ok := b.(Var)
		return ok && x.ID == y.ID
	case Cst:
		y, ok := b.(Cst)
		return ok && x.C == y.C
	case *Apply:
		y, ok := b.(*Apply)
		return ok && TypeEq(x.Fn, y.Fn) && TypeEq(x.Arg, y.Arg)
	case *AssocType:
		y, ok := b.(*AssocType)
		return ok && x.Sym == y.Sym && TypeEq(x.Arg, y.Arg)
	default:
		ICE("unknown type node %T", a)
		return false
	}
}

// UnAlias strips any outermost alias nodes.
func UnAlias(t Type) Type {
	for {
		a, ok := t.(*Alias)
		if !ok {
			return t
		}
		t = a.Tpe
	}
}
