package typer

import (
	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
	"github.com/skeinlang/skein/pkg/unify"
)

// checkBody runs the pipeline for one definition body: infer, pin the
// declared return type and effect, default leftover effect slack,
// generalize, check subsumption, and reassemble the typed tree.
func (c *Checker) checkBody(sym types.DefSym, spec ast.Spec, bodyExp ast.Expr, declared types.Scheme) (ast.TExpr, types.Purity, error) {
	renv := types.NewRigidityEnv()
	for _, q := range declared.Quantifiers {
		renv.MarkRigid(q.ID)
	}
	for _, q := range spec.Quantifiers {
		renv.MarkRigid(q.ID)
	}

	uni := c.newUnifier(renv)
	inf := newInferer(sym, c.table, uni)

	env := NewTypeEnv()
	paramTpes := make([]types.Type, len(spec.FParams))
	for i, p := range spec.FParams {
		if p.Tpe == nil {
			types.ICE("parameter %s of %s has no declared type", p.Sym, sym)
		}
		env.Bind(p.Sym, types.MonoScheme(p.Tpe))
		paramTpes[i] = p.Tpe
	}

	body, err := inf.inferExp(env, bodyExp)
	if err != nil {
		return nil, 0, err
	}

	if err := inf.unifyAt(spec.RetTpe, body.Tpe(), bodyExp); err != nil {
		return nil, 0, err
	}
	if err := inf.unifyAt(spec.Eff, body.Eff(), bodyExp); err != nil {
		return nil, 0, c.refineEffectError(sym, spec, inf, body, bodyExp, err)
	}

	base := body.Tpe()
	if len(spec.FParams) > 0 {
		base = types.MkArrow(paramTpes, body.Eff(), body.Tpe())
	}
	base = inf.subst.Apply(base)
	tcs := inf.subst.ApplyClassConstraints(inf.tconstrs)
	ecs := inf.subst.ApplyEqualityConstraints(inf.econstrs)

	// unconstrained flexible effect variables are slack; close them as Pure
	collect := []types.Type{base}
	for _, tc := range tcs {
		collect = append(collect, tc.Arg)
	}
	for _, ec := range ecs {
		collect = append(collect, ec.Arg, ec.Result)
	}
	defaults := effectDefaults(renv, collect...)
	if !defaults.IsEmpty() {
		inf.subst = defaults.Compose(inf.subst)
		base = defaults.Apply(base)
		tcs = defaults.ApplyClassConstraints(tcs)
		ecs = defaults.ApplyEqualityConstraints(ecs)
	}

	inferred := types.Generalize(tcs, ecs, base, renv)
	if err := uni.CheckSubsumes(inferred, declared); err != nil {
		gerr := &GeneralizationError{Def: sym, Declared: declared, Inferred: inferred, Inner: err}
		return nil, 0, NewInferError(gerr, sym, bodyExp)
	}

	typedBody := ast.ApplyTExpr(inf.subst, body)
	return typedBody, purityFloor(typedBody.Eff(), c.univ), nil
}

// refineEffectError turns a failed unification against a declared Pure
// effect into the dedicated purity diagnostics; other effect mismatches
// pass through unchanged.
func (c *Checker) refineEffectError(sym types.DefSym, spec ast.Spec, inf *inferer, body ast.TExpr, node ast.SourceLocatable, err error) error {
	if !types.TypeEq(spec.Eff, types.PureType) {
		return err
	}
	inferredEff := inf.subst.Apply(body.Eff())
	var inner error
	switch purityFloor(inferredEff, c.univ) {
	case types.PurityImpure:
		inner = &ImpureDeclaredAsPureError{Def: sym, Inferred: inferredEff}
	case types.PurityControlImpure:
		inner = &EffectfulDeclaredAsPureError{Def: sym, Inferred: inferredEff}
	default:
		return err
	}
	ege := &EffectGeneralizationError{Def: sym, Declared: spec.Eff, Inferred: inferredEff, Inner: inner}
	return NewInferError(ege, sym, node)
}

// effectDefaults binds every flexible effect variable free in ts to Pure.
func effectDefaults(renv types.RigidityEnv, ts ...types.Type) types.Substitution {
	s := types.NewSubstitution()
	for _, v := range types.FreeVarsAll(ts...).Sorted() {
		if v.K == types.EffKind && !renv.IsRigid(v) {
			s.Bind(v.ID, types.PureType)
		}
	}
	return s
}

// purityFloor classifies an effect at its most permissive instantiation:
// every variable and unresolved projection counts as Pure, so the result
// reflects only the effects the formula is guaranteed to mention.
func purityFloor(eff types.Type, univ *types.Universe) types.Purity {
	return types.Classify(types.EvalEffects(pureAtUnknowns(eff), univ))
}

func pureAtUnknowns(t types.Type) types.Type {
	t = types.UnAlias(t)
	switch x := t.(type) {
	case types.Var:
		return types.PureType
	case *types.AssocType:
		return types.PureType
	case types.Cst:
		return x
	case *types.Apply:
		return rebuildEffApp(x)
	default:
		types.ICE("unknown type node %T", t)
		return nil
	}
}

func rebuildEffApp(a *types.Apply) types.Type {
	head, args := types.SplitApply(a)
	cst, ok := head.(types.Cst)
	if !ok {
		return types.PureType
	}
	switch cst.C.(type) {
	case types.CtorUnion:
		return types.MkUnion(pureAtUnknowns(args[0]), pureAtUnknowns(args[1]))
	case types.CtorIntersection:
		return types.MkIntersection(pureAtUnknowns(args[0]), pureAtUnknowns(args[1]))
	case types.CtorComplement:
		return types.MkComplement(pureAtUnknowns(args[0]))
	default:
		return types.PureType
	}
}

// recoveredBody builds the stub standing in for a failed definition: an
// error node at the declared type and effect, so sibling checks and later
// phases always see a complete tree.
func (c *Checker) recoveredBody(spec ast.Spec, loc ast.SourceLocation) (ast.TExpr, types.Purity) {
	stub := &ast.TError{TypedNode: ast.Typed(spec.RetTpe, spec.Eff, loc)}
	return stub, purityFloor(spec.Eff, c.univ)
}

// newUnifier assembles a unifier over the checker's shared read-only
// context with the given rigidity environment.
func (c *Checker) newUnifier(renv types.RigidityEnv) *unify.Unifier {
	return &unify.Unifier{
		Fresh: c.fresh,
		Renv:  renv,
		CEnv:  c.cenv,
		EEnv:  c.eenv,
		Univ:  c.univ,
		Cache: c.cache,
	}
}
