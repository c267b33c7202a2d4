package ast

import (
	"github.com/skeinlang/skein/pkg/types"
)

// WalkTypes visits every type embedded anywhere in the program: specs,
// declarations, and the type and effect ascriptions inside expression
// trees. Nil types are skipped.
func WalkTypes(root *Root, visit func(types.Type)) {
	v := func(t types.Type) {
		if t != nil {
			visit(t)
		}
	}

	walkSpec := func(s Spec) {
		for _, q := range s.Quantifiers {
			v(q)
		}
		for _, tc := range s.TConstrs {
			v(tc.Arg)
		}
		for _, ec := range s.EConstrs {
			v(ec.Arg)
			v(ec.Result)
		}
		for _, p := range s.FParams {
			v(p.Tpe)
		}
		v(s.RetTpe)
		v(s.Eff)
	}

	for _, def := range root.Defs {
		walkSpec(def.Spec)
		walkExprTypes(def.Body, v)
	}
	for _, class := range root.Classes {
		v(class.Param)
		for _, sig := range class.Sigs {
			walkSpec(sig.Spec)
			if sig.Default != nil {
				walkExprTypes(sig.Default, v)
			}
		}
	}
	for _, inst := range root.Instances {
		v(inst.Tpe)
		for _, tc := range inst.TConstrs {
			v(tc.Arg)
		}
		for _, a := range inst.Assocs {
			v(a.Arg)
			v(a.Ret)
		}
		for _, def := range inst.Defs {
			walkSpec(def.Spec)
			walkExprTypes(def.Body, v)
		}
	}
	for _, eff := range root.Effects {
		for _, op := range eff.Ops {
			walkSpec(op.Spec)
		}
	}
	for _, enum := range root.Enums {
		for _, p := range enum.Params {
			v(p)
		}
		for _, c := range enum.Cases {
			v(c.Payload)
		}
	}
}

func walkExprTypes(e Expr, v func(types.Type)) {
	switch x := e.(type) {
	case *VarExpr, *CstExpr, *RecordEmptyExpr, *DefRefExpr, *SigRefExpr:
	case *LambdaExpr:
		v(x.Param.Tpe)
		walkExprTypes(x.Body, v)
	case *ApplyExpr:
		walkExprTypes(x.Fn, v)
		for _, a := range x.Args {
			walkExprTypes(a, v)
		}
	case *LetExpr:
		walkExprTypes(x.Bound, v)
		walkExprTypes(x.Body, v)
	case *IfExpr:
		walkExprTypes(x.Cond, v)
		walkExprTypes(x.Then, v)
		walkExprTypes(x.Else, v)
	case *AscribeExpr:
		v(x.Tpe)
		v(x.Eff)
		walkExprTypes(x.E, v)
	case *TupleExpr:
		for _, el := range x.Elems {
			walkExprTypes(el, v)
		}
	case *TagExpr:
		walkExprTypes(x.Payload, v)
	case *RecordSelectExpr:
		walkExprTypes(x.Rec, v)
	case *RecordExtendExpr:
		walkExprTypes(x.Value, v)
		walkExprTypes(x.Rest, v)
	case *RecordRestrictExpr:
		walkExprTypes(x.Rest, v)
	case *LazyExpr:
		walkExprTypes(x.E, v)
	case *ForceExpr:
		walkExprTypes(x.E, v)
	case *DoExpr:
		for _, a := range x.Args {
			walkExprTypes(a, v)
		}
	case *TryWithExpr:
		walkExprTypes(x.Body, v)
		for _, r := range x.Rules {
			for _, p := range r.Params {
				v(p.Tpe)
			}
			walkExprTypes(r.Body, v)
		}
	default:
		types.ICE("unknown expression %T", e)
	}
}
