package typer

import (
	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
	"github.com/skeinlang/skein/pkg/unify"
)

// inferer walks one definition body, growing a substitution and the
// obligation lists as it goes. The typed tree it returns is provisional:
// annotations still mention variables the final substitution resolves.
type inferer struct {
	fresh    *types.Fresh
	table    *SymTable
	uni      *unify.Unifier
	def      types.DefSym
	subst    types.Substitution
	tconstrs []types.ClassConstraint
	econstrs []types.EqualityConstraint
}

func newInferer(def types.DefSym, table *SymTable, uni *unify.Unifier) *inferer {
	return &inferer{
		fresh: uni.Fresh,
		table: table,
		uni:   uni,
		def:   def,
		subst: types.NewSubstitution(),
	}
}

// unifyAt unifies expected with actual under the running substitution and
// folds the result back in. Deferred equalities are queued for the solve
// phase. Failures carry the location of node.
func (inf *inferer) unifyAt(expected, actual types.Type, node ast.SourceLocatable) error {
	a := inf.subst.Apply(expected)
	b := inf.subst.Apply(actual)
	s, residual, err := inf.uni.Unify(a, b)
	if err != nil {
		return WrapInferError(err, inf.def, node)
	}
	inf.subst = s.Compose(inf.subst)
	inf.econstrs = append(inf.econstrs, residual...)
	return nil
}

// instantiate opens a scheme with fresh flexible variables and takes on
// its obligations.
func (inf *inferer) instantiate(sc types.Scheme) types.Type {
	tcs, ecs, base := types.Instantiate(inf.fresh, sc)
	inf.tconstrs = append(inf.tconstrs, tcs...)
	inf.econstrs = append(inf.econstrs, ecs...)
	return base
}

func litType(l ast.Lit) types.Type {
	switch l.(type) {
	case ast.UnitLit:
		return types.UnitType
	case ast.BoolLit:
		return types.BoolType
	case ast.CharLit:
		return types.CharType
	case ast.Int32Lit:
		return types.Int32Type
	case ast.Int64Lit:
		return types.Int64Type
	case ast.Float64Lit:
		return types.Float64Type
	case ast.BigIntLit:
		return types.BigIntType
	case ast.StrLit:
		return types.StrType
	default:
		types.ICE("unknown literal %T", l)
		return nil
	}
}

// inferExp assigns a type and an effect to every node of e. Effects
// accumulate as unions; only lambda abstraction suspends them into the
// arrow's latent position.
func (inf *inferer) inferExp(env *TypeEnv, e ast.Expr) (ast.TExpr, error) {
	switch x := e.(type) {
	case *ast.VarExpr:
		sc, ok := env.SchemeOf(x.Sym)
		if !ok {
			types.ICE("unbound variable %s in %s", x.Sym, inf.def)
		}
		t := inf.instantiate(sc)
		return &ast.TVar{TypedNode: ast.Typed(t, types.PureType, x.Loc), Sym: x.Sym}, nil

	case *ast.CstExpr:
		return &ast.TCst{TypedNode: ast.Typed(litType(x.Lit), types.PureType, x.Loc), Lit: x.Lit}, nil

	case *ast.LambdaExpr:
		param := x.Param
		if param.Tpe == nil {
			param.Tpe = types.Type(inf.fresh.FreshVar(types.Star))
		}
		inner := env.Extend()
		inner.Bind(param.Sym, types.MonoScheme(param.Tpe))
		body, err := inf.inferExp(inner, x.Body)
		if err != nil {
			return nil, err
		}
		t := types.MkArrow([]types.Type{param.Tpe}, body.Eff(), body.Tpe())
		return &ast.TLambda{TypedNode: ast.Typed(t, types.PureType, x.Loc), Param: param, Body: body}, nil

	case *ast.ApplyExpr:
		fn, err := inf.inferExp(env, x.Fn)
		if err != nil {
			return nil, err
		}
		args := make([]ast.TExpr, len(x.Args))
		argTpes := make([]types.Type, len(x.Args))
		effs := []types.Type{fn.Eff()}
		for i, a := range x.Args {
			arg, err := inf.inferExp(env, a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
			argTpes[i] = arg.Tpe()
			effs = append(effs, arg.Eff())
		}
		ret := types.Type(inf.fresh.FreshVar(types.Star))
		latent := types.Type(inf.fresh.FreshVar(types.EffKind))
		if err := inf.unifyAt(fn.Tpe(), types.MkArrow(argTpes, latent, ret), x); err != nil {
			return nil, err
		}
		effs = append(effs, latent)
		return &ast.TApply{TypedNode: ast.Typed(ret, types.MkUnionAll(effs...), x.Loc), Fn: fn, Args: args}, nil

	case *ast.LetExpr:
		inner := env.Extend()
		var bound ast.TExpr
		var err error
		if x.Rec {
			// the binding sees itself at a fresh monomorphic type
			self := types.Type(inf.fresh.FreshVar(types.Star))
			inner.Bind(x.Sym, types.MonoScheme(self))
			bound, err = inf.inferExp(inner, x.Bound)
			if err != nil {
				return nil, err
			}
			if err := inf.unifyAt(self, bound.Tpe(), x.Bound); err != nil {
				return nil, err
			}
		} else {
			bound, err = inf.inferExp(env, x.Bound)
			if err != nil {
				return nil, err
			}
			inner.Bind(x.Sym, types.MonoScheme(bound.Tpe()))
		}
		body, err := inf.inferExp(inner, x.Body)
		if err != nil {
			return nil, err
		}
		eff := types.MkUnion(bound.Eff(), body.Eff())
		return &ast.TLet{
			TypedNode: ast.Typed(body.Tpe(), eff, x.Loc),
			Sym:       x.Sym,
			Rec:       x.Rec,
			Bound:     bound,
			Body:      body,
		}, nil

	case *ast.IfExpr:
		cond, err := inf.inferExp(env, x.Cond)
		if err != nil {
			return nil, err
		}
		if err := inf.unifyAt(types.BoolType, cond.Tpe(), x.Cond); err != nil {
			return nil, err
		}
		then, err := inf.inferExp(env, x.Then)
		if err != nil {
			return nil, err
		}
		els, err := inf.inferExp(env, x.Else)
		if err != nil {
			return nil, err
		}
		if err := inf.unifyAt(then.Tpe(), els.Tpe(), x.Else); err != nil {
			return nil, err
		}
		eff := types.MkUnionAll(cond.Eff(), then.Eff(), els.Eff())
		return &ast.TIf{
			TypedNode: ast.Typed(then.Tpe(), eff, x.Loc),
			Cond:      cond,
			Then:      then,
			Else:      els,
		}, nil

	case *ast.AscribeExpr:
		inner, err := inf.inferExp(env, x.E)
		if err != nil {
			return nil, err
		}
		tpe := inner.Tpe()
		if x.Tpe != nil {
			if err := inf.unifyAt(x.Tpe, inner.Tpe(), x); err != nil {
				return nil, err
			}
			tpe = x.Tpe
		}
		eff := inner.Eff()
		if x.Eff != nil {
			if err := inf.unifyAt(x.Eff, inner.Eff(), x); err != nil {
				return nil, err
			}
			eff = x.Eff
		}
		return &ast.TAscribe{TypedNode: ast.Typed(tpe, eff, x.Loc), E: inner}, nil

	case *ast.TupleExpr:
		elems := make([]ast.TExpr, len(x.Elems))
		tpes := make([]types.Type, len(x.Elems))
		effs := make([]types.Type, len(x.Elems))
		for i, el := range x.Elems {
			te, err := inf.inferExp(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = te
			tpes[i] = te.Tpe()
			effs[i] = te.Eff()
		}
		return &ast.TTuple{
			TypedNode: ast.Typed(types.MkTuple(tpes), types.MkUnionAll(effs...), x.Loc),
			Elems:     elems,
		}, nil

	case *ast.TagExpr:
		sc, ok := inf.table.Cases[x.Case]
		if !ok {
			types.ICE("unknown enum case %s in %s", x.Case, inf.def)
		}
		arrow := inf.instantiate(sc)
		params, _, ret, ok := types.ArrowParts(arrow)
		if !ok || len(params) != 1 {
			types.ICE("malformed case constructor type %s for %s", arrow, x.Case)
		}
		payload, err := inf.inferExp(env, x.Payload)
		if err != nil {
			return nil, err
		}
		if err := inf.unifyAt(params[0], payload.Tpe(), x.Payload); err != nil {
			return nil, err
		}
		return &ast.TTag{
			TypedNode: ast.Typed(ret, payload.Eff(), x.Loc),
			Case:      x.Case,
			Payload:   payload,
		}, nil

	case *ast.RecordEmptyExpr:
		t := types.MkRecord(types.MkRecordRowEmpty())
		return &ast.TRecordEmpty{TypedNode: ast.Typed(t, types.PureType, x.Loc)}, nil

	case *ast.RecordSelectExpr:
		rec, err := inf.inferExp(env, x.Rec)
		if err != nil {
			return nil, err
		}
		field := types.Type(inf.fresh.FreshVar(types.Star))
		rest := types.Type(inf.fresh.FreshVar(types.RecordRow))
		want := types.MkRecord(types.MkRecordRowExtend(x.Label, field, rest))
		if err := inf.unifyAt(want, rec.Tpe(), x); err != nil {
			return nil, err
		}
		return &ast.TRecordSelect{
			TypedNode: ast.Typed(field, rec.Eff(), x.Loc),
			Rec:       rec,
			Label:     x.Label,
		}, nil

	case *ast.RecordExtendExpr:
		value, err := inf.inferExp(env, x.Value)
		if err != nil {
			return nil, err
		}
		rest, err := inf.inferExp(env, x.Rest)
		if err != nil {
			return nil, err
		}
		row := types.Type(inf.fresh.FreshVar(types.RecordRow))
		if err := inf.unifyAt(types.MkRecord(row), rest.Tpe(), x.Rest); err != nil {
			return nil, err
		}
		t := types.MkRecord(types.MkRecordRowExtend(x.Label, value.Tpe(), row))
		eff := types.MkUnion(value.Eff(), rest.Eff())
		return &ast.TRecordExtend{
			TypedNode: ast.Typed(t, eff, x.Loc),
			Label:     x.Label,
			Value:     value,
			Rest:      rest,
		}, nil

	case *ast.RecordRestrictExpr:
		rest, err := inf.inferExp(env, x.Rest)
		if err != nil {
			return nil, err
		}
		field := types.Type(inf.fresh.FreshVar(types.Star))
		row := types.Type(inf.fresh.FreshVar(types.RecordRow))
		want := types.MkRecord(types.MkRecordRowExtend(x.Label, field, row))
		if err := inf.unifyAt(want, rest.Tpe(), x); err != nil {
			return nil, err
		}
		return &ast.TRecordRestrict{
			TypedNode: ast.Typed(types.MkRecord(row), rest.Eff(), x.Loc),
			Label:     x.Label,
			Rest:      rest,
		}, nil

	case *ast.LazyExpr:
		inner, err := inf.inferExp(env, x.E)
		if err != nil {
			return nil, err
		}
		// a suspended computation must not smuggle effects past the thunk
		if err := inf.unifyAt(types.PureType, inner.Eff(), x.E); err != nil {
			return nil, err
		}
		t := types.MkLazy(inner.Tpe())
		return &ast.TLazy{TypedNode: ast.Typed(t, types.PureType, x.Loc), E: inner}, nil

	case *ast.ForceExpr:
		inner, err := inf.inferExp(env, x.E)
		if err != nil {
			return nil, err
		}
		elem := types.Type(inf.fresh.FreshVar(types.Star))
		if err := inf.unifyAt(types.MkLazy(elem), inner.Tpe(), x); err != nil {
			return nil, err
		}
		return &ast.TForce{TypedNode: ast.Typed(elem, inner.Eff(), x.Loc), E: inner}, nil

	case *ast.DefRefExpr:
		sc, ok := inf.table.Defs[x.Sym]
		if !ok {
			types.ICE("unknown def %s referenced from %s", x.Sym, inf.def)
		}
		t := inf.instantiate(sc)
		return &ast.TDefRef{TypedNode: ast.Typed(t, types.PureType, x.Loc), Sym: x.Sym}, nil

	case *ast.SigRefExpr:
		info, ok := inf.table.Sigs[x.Sym]
		if !ok {
			types.ICE("unknown signature %s referenced from %s", x.Sym, inf.def)
		}
		t := inf.instantiate(info.Scheme)
		return &ast.TSigRef{TypedNode: ast.Typed(t, types.PureType, x.Loc), Sym: x.Sym}, nil

	case *ast.DoExpr:
		info, ok := inf.table.Ops[x.Op]
		if !ok {
			types.ICE("unknown operation %s in %s", x.Op, inf.def)
		}
		arrow := inf.instantiate(info.Scheme)
		args := make([]ast.TExpr, len(x.Args))
		argTpes := make([]types.Type, len(x.Args))
		var effs []types.Type
		for i, a := range x.Args {
			arg, err := inf.inferExp(env, a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
			argTpes[i] = arg.Tpe()
			effs = append(effs, arg.Eff())
		}
		ret := types.Type(inf.fresh.FreshVar(types.Star))
		latent := types.Type(inf.fresh.FreshVar(types.EffKind))
		if err := inf.unifyAt(arrow, types.MkArrow(argTpes, latent, ret), x); err != nil {
			return nil, err
		}
		effs = append(effs, latent)
		return &ast.TDo{TypedNode: ast.Typed(ret, types.MkUnionAll(effs...), x.Loc), Op: x.Op, Args: args}, nil

	case *ast.TryWithExpr:
		return inf.inferTryWith(env, x)

	default:
		types.ICE("unknown expression %T", e)
		return nil, nil
	}
}

// inferTryWith checks a handled block. The handled effect is discharged
// from the body's effect; the handler rules contribute their own effects
// and must produce the block's result type.
func (inf *inferer) inferTryWith(env *TypeEnv, x *ast.TryWithExpr) (ast.TExpr, error) {
	decl, ok := inf.table.Effects[x.Handled]
	if !ok {
		types.ICE("unknown effect %s handled in %s", x.Handled, inf.def)
	}

	body, err := inf.inferExp(env, x.Body)
	if err != nil {
		return nil, err
	}
	result := body.Tpe()

	byOp := make(map[types.OpSym]ast.HandlerRule, len(x.Rules))
	for _, rule := range x.Rules {
		info, known := inf.table.Ops[rule.Op]
		if !known || info.Eff != x.Handled {
			types.ICE("rule for %s inside handler of %s", rule.Op, x.Handled)
		}
		if _, dup := byOp[rule.Op]; dup {
			return nil, NewInferError(&DuplicateHandlerError{Op: rule.Op}, inf.def, x)
		}
		byOp[rule.Op] = rule
	}

	effs := []types.Type{types.MkDifference(body.Eff(), types.MkEffect(x.Handled))}
	rules := make([]ast.THandlerRule, 0, len(decl.Ops))
	for _, op := range decl.Ops {
		rule, found := byOp[op.Sym]
		if !found {
			return nil, NewInferError(&MissingHandlerError{Eff: x.Handled, Op: op.Sym}, inf.def, x)
		}
		opArrow := inf.instantiate(inf.table.Ops[op.Sym].Scheme)
		opParams, _, _, ok := types.ArrowParts(opArrow)
		if !ok {
			types.ICE("malformed operation type %s for %s", opArrow, op.Sym)
		}
		if len(rule.Params) != len(opParams) {
			arity := &HandlerArityError{Op: op.Sym, Want: len(opParams), Got: len(rule.Params)}
			return nil, NewInferError(arity, inf.def, rule.Body)
		}

		inner := env.Extend()
		params := make([]ast.FParam, len(rule.Params))
		for i, p := range rule.Params {
			if p.Tpe == nil {
				p.Tpe = opParams[i]
			} else if err := inf.unifyAt(opParams[i], p.Tpe, rule.Body); err != nil {
				return nil, err
			}
			inner.Bind(p.Sym, types.MonoScheme(p.Tpe))
			params[i] = p
		}

		ruleBody, err := inf.inferExp(inner, rule.Body)
		if err != nil {
			return nil, err
		}
		if err := inf.unifyAt(result, ruleBody.Tpe(), rule.Body); err != nil {
			return nil, err
		}
		effs = append(effs, ruleBody.Eff())
		rules = append(rules, ast.THandlerRule{Op: op.Sym, Params: params, Body: ruleBody, Loc: rule.Loc})
	}

	return &ast.TTryWith{
		TypedNode: ast.Typed(result, types.MkUnionAll(effs...), x.Loc),
		Body:      body,
		Handled:   x.Handled,
		Rules:     rules,
	}, nil
}
