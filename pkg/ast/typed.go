package ast

import (
	"github.com/skeinlang/skein/pkg/types"
)

// TypedRoot is the checker's output: every definition annotated with its
// final types and effects. Definitions that failed carry Error nodes and
// their declared signature, so downstream phases always see a complete
// tree.
type TypedRoot struct {
	Defs      map[types.DefSym]*TypedDef
	Sigs      map[types.SigSym]*TypedSig
	Instances []*TypedInstance
}

// TypedDef is one fully typed definition. Recovered marks defs whose
// bodies failed to check; their Body is a TError at the declared type.
type TypedDef struct {
	Sym       types.DefSym
	Scheme    types.Scheme
	Body      TExpr
	Purity    types.Purity
	Recovered bool
	Loc       SourceLocation
}

// TypedSig is a class signature after checking. Body is the checked
// default implementation, nil when the signature declares none.
type TypedSig struct {
	Sym       types.SigSym
	Scheme    types.Scheme
	Body      TExpr
	Recovered bool
	Loc       SourceLocation
}

// TypedInstance is an instance with its checked member defs.
type TypedInstance struct {
	Class types.ClassSym
	Tpe   types.Type
	Defs  []*TypedDef
	Loc   SourceLocation
}

// TExpr is the closed sum of typed expressions. Every node carries its
// type and its effect.
type TExpr interface {
	SourceLocatable
	Tpe() types.Type
	Eff() types.Type
	isTExpr()
}

// TypedNode carries the annotations every typed expression shares. It is
// embedded in each variant; field names are chosen so they never collide
// with the promoted methods.
type TypedNode struct {
	T types.Type // the node's type
	E types.Type // the node's effect
	L SourceLocation
}

func (n TypedNode) Tpe() types.Type                   { return n.T }
func (n TypedNode) Eff() types.Type                   { return n.E }
func (n TypedNode) GetSourceLocation() SourceLocation { return n.L }

// Typed builds the shared annotation for a node.
func Typed(tpe, eff types.Type, loc SourceLocation) TypedNode {
	return TypedNode{T: tpe, E: eff, L: loc}
}

type TVar struct {
	TypedNode
	Sym VarSym
}

type TCst struct {
	TypedNode
	Lit Lit
}

type TLambda struct {
	TypedNode
	Param FParam
	Body  TExpr
}

type TApply struct {
	TypedNode
	Fn   TExpr
	Args []TExpr
}

type TLet struct {
	TypedNode
	Sym   VarSym
	Rec   bool
	Bound TExpr
	Body  TExpr
}

type TIf struct {
	TypedNode
	Cond TExpr
	Then TExpr
	Else TExpr
}

type TAscribe struct {
	TypedNode
	E TExpr
}

type TTuple struct {
	TypedNode
	Elems []TExpr
}

type TTag struct {
	TypedNode
	Case    types.CaseSym
	Payload TExpr
}

type TRecordEmpty struct {
	TypedNode
}

type TRecordSelect struct {
	TypedNode
	Rec   TExpr
	Label types.Label
}

type TRecordExtend struct {
	TypedNode
	Label types.Label
	Value TExpr
	Rest  TExpr
}

type TRecordRestrict struct {
	TypedNode
	Label types.Label
	Rest  TExpr
}

type TLazy struct {
	TypedNode
	E TExpr
}

type TForce struct {
	TypedNode
	E TExpr
}

type TDefRef struct {
	TypedNode
	Sym types.DefSym
}

type TSigRef struct {
	TypedNode
	Sym types.SigSym
}

type TDo struct {
	TypedNode
	Op   types.OpSym
	Args []TExpr
}

type TTryWith struct {
	TypedNode
	Body    TExpr
	Handled types.EffSym
	Rules   []THandlerRule
}

// THandlerRule is a checked handler rule.
type THandlerRule struct {
	Op     types.OpSym
	Params []FParam
	Body   TExpr
	Loc    SourceLocation
}

// TError stands in for an expression that failed to check. It carries
// the type and effect the context expected, so siblings and callers keep
// checking against a well-formed node.
type TError struct {
	TypedNode
}

func (*TVar) isTExpr()            {}
func (*TCst) isTExpr()            {}
func (*TLambda) isTExpr()         {}
func (*TApply) isTExpr()          {}
func (*TLet) isTExpr()            {}
func (*TIf) isTExpr()             {}
func (*TAscribe) isTExpr()        {}
func (*TTuple) isTExpr()          {}
func (*TTag) isTExpr()            {}
func (*TRecordEmpty) isTExpr()    {}
func (*TRecordSelect) isTExpr()   {}
func (*TRecordExtend) isTExpr()   {}
func (*TRecordRestrict) isTExpr() {}
func (*TLazy) isTExpr()           {}
func (*TForce) isTExpr()          {}
func (*TDefRef) isTExpr()         {}
func (*TSigRef) isTExpr()         {}
func (*TDo) isTExpr()             {}
func (*TTryWith) isTExpr()        {}
func (*TError) isTExpr()          {}

// ApplyTExpr rebuilds a typed expression with the substitution applied
// to every type and effect annotation. Nodes are immutable; the result
// shares no mutable state with the input.
func ApplyTExpr(s types.Substitution, te TExpr) TExpr {
	if te == nil {
		return nil
	}
	node := func() TypedNode {
		return TypedNode{
			T: s.Apply(te.Tpe()),
			E: s.Apply(te.Eff()),
			L: te.GetSourceLocation(),
		}
	}
	switch e := te.(type) {
	case *TVar:
		return &TVar{TypedNode: node(), Sym: e.Sym}
	case *TCst:
		return &TCst{TypedNode: node(), Lit: e.Lit}
	case *TLambda:
		p := e.Param
		p.Tpe = s.Apply(p.Tpe)
		return &TLambda{TypedNode: node(), Param: p, Body: ApplyTExpr(s, e.Body)}
	case *TApply:
		return &TApply{TypedNode: node(), Fn: ApplyTExpr(s, e.Fn), Args: applyAll(s, e.Args)}
	case *TLet:
		return &TLet{
			TypedNode: node(),
			Sym:       e.Sym,
			Rec:       e.Rec,
			Bound:     ApplyTExpr(s, e.Bound),
			Body:      ApplyTExpr(s, e.Body),
		}
	case *TIf:
		return &TIf{
			TypedNode: node(),
			Cond:      ApplyTExpr(s, e.Cond),
			Then:      ApplyTExpr(s, e.Then),
			Else:      ApplyTExpr(s, e.Else),
		}
	case *TAscribe:
		return &TAscribe{TypedNode: node(), E: ApplyTExpr(s, e.E)}
	case *TTuple:
		return &TTuple{TypedNode: node(), Elems: applyAll(s, e.Elems)}
	case *TTag:
		return &TTag{TypedNode: node(), Case: e.Case, Payload: ApplyTExpr(s, e.Payload)}
	case *TRecordEmpty:
		return &TRecordEmpty{TypedNode: node()}
	case *TRecordSelect:
		return &TRecordSelect{TypedNode: node(), Rec: ApplyTExpr(s, e.Rec), Label: e.Label}
	case *TRecordExtend:
		return &TRecordExtend{
			TypedNode: node(),
			Label:     e.Label,
			Value:     ApplyTExpr(s, e.Value),
			Rest:      ApplyTExpr(s, e.Rest),
		}
	case *TRecordRestrict:
		return &TRecordRestrict{TypedNode: node(), Label: e.Label, Rest: ApplyTExpr(s, e.Rest)}
	case *TLazy:
		return &TLazy{TypedNode: node(), E: ApplyTExpr(s, e.E)}
	case *TForce:
		return &TForce{TypedNode: node(), E: ApplyTExpr(s, e.E)}
	case *TDefRef:
		return &TDefRef{TypedNode: node(), Sym: e.Sym}
	case *TSigRef:
		return &TSigRef{TypedNode: node(), Sym: e.Sym}
	case *TDo:
		return &TDo{TypedNode: node(), Op: e.Op, Args: applyAll(s, e.Args)}
	case *TTryWith:
		rules := make([]THandlerRule, len(e.Rules))
		for i, r := range e.Rules {
			params := make([]FParam, len(r.Params))
			for j, p := range r.Params {
				p.Tpe = s.Apply(p.Tpe)
				params[j] = p
			}
			rules[i] = THandlerRule{Op: r.Op, Params: params, Body: ApplyTExpr(s, r.Body), Loc: r.Loc}
		}
		return &TTryWith{TypedNode: node(), Body: ApplyTExpr(s, e.Body), Handled: e.Handled, Rules: rules}
	case *TError:
		return &TError{TypedNode: node()}
	default:
		types.ICE("ApplyTExpr: unexpected node %T", te)
		return nil
	}
}

func applyAll(s types.Substitution, es []TExpr) []TExpr {
	if es == nil {
		return nil
	}
	out := make([]TExpr, len(es))
	for i, e := range es {
		out[i] = ApplyTExpr(s, e)
	}
	return out
}
