package unify

import (
	"errors"

	"github.com/skeinlang/skein/pkg/types"
)

// ReduceStep reduces one associated-type application by the best matching
// instance equation. The argument's own variables are held rigid during
// the match, so finding an instance can never bind the caller's
// variables.
func (u *Unifier) ReduceStep(sym types.AssocSym, arg types.Type) (types.Type, error) {
	renv := types.RigidityOf(types.FreeVars(arg))
	matcher := u.withRenv(renv)
	for _, def := range u.EEnv.Defs(sym) {
		fr := u.freshenTypes(def.Arg, def.Ret)
		pat, ret := fr[0], fr[1]
		s, residual, err := matcher.Unify(pat, arg)
		if err != nil || len(residual) > 0 {
			continue
		}
		return s.Apply(ret), nil
	}
	return nil, IrreducibleAssocTypeError{Sym: sym, Arg: arg}
}

// Reduce rewrites every reducible associated-type application in t,
// innermost applications first, repeating to a fixpoint. Irreducible
// applications stay in place for entailment to judge. Associated types
// are checked non-recursive by an earlier phase, so a reduction chain
// that fails to settle is an internal fault.
func (u *Unifier) Reduce(t types.Type) types.Type {
	const maxPasses = 512
	for i := 0; i < maxPasses; i++ {
		next, changed := u.reducePass(t)
		if !changed {
			return next
		}
		t = next
	}
	types.ICE("associated type reduction did not settle on %s", t)
	return nil
}

func (u *Unifier) reducePass(t types.Type) (types.Type, bool) {
	switch x := t.(type) {
	case types.Var, types.Cst:
		return t, false
	case *types.Apply:
		fn, c1 := u.reducePass(x.Fn)
		arg, c2 := u.reducePass(x.Arg)
		if !c1 && !c2 {
			return t, false
		}
		return types.MkApply(fn, arg), true
	case *types.Alias:
		tpe, changed := u.reducePass(x.Tpe)
		if !changed {
			return t, false
		}
		return &types.Alias{Sym: x.Sym, Args: x.Args, Tpe: tpe}, true
	case *types.AssocType:
		arg, argChanged := u.reducePass(x.Arg)
		node := x
		if argChanged {
			node = &types.AssocType{Sym: x.Sym, Arg: arg, K: x.K}
		}
		if u.hasFlexibleVars(arg) {
			return node, argChanged
		}
		reduced, err := u.ReduceStep(node.Sym, node.Arg)
		if err != nil {
			return node, argChanged
		}
		return reduced, true
	default:
		types.ICE("unknown type node %T", t)
		return nil, false
	}
}

// EntailEq proves that the goal equality follows from the assumed ones:
// the assumptions rewrite matching projections to their results, both
// sides reduce, and the reduced sides must agree without binding any of
// the goal's variables.
func (u *Unifier) EntailEq(assumed []types.EqualityConstraint, goal types.EqualityConstraint) error {
	lhs := u.rewriteAssumed(assumed, &types.AssocType{
		Sym: goal.Assoc,
		Arg: goal.Arg,
		K:   goal.Result.Kind(),
	})
	rhs := u.rewriteAssumed(assumed, goal.Result)

	lhs = u.Reduce(lhs)
	rhs = u.Reduce(rhs)

	renv := types.RigidityOf(types.FreeVarsAll(lhs, rhs))
	prover := u.withRenv(renv)
	_, residual, err := prover.Unify(lhs, rhs)
	if err != nil || len(residual) > 0 {
		return IrreducibleAssocTypeError{Sym: goal.Assoc, Arg: goal.Arg}
	}
	return nil
}

// rewriteAssumed replaces every projection matching an assumed equality
// with that equality's result.
func (u *Unifier) rewriteAssumed(assumed []types.EqualityConstraint, t types.Type) types.Type {
	if len(assumed) == 0 {
		return t
	}
	switch x := t.(type) {
	case types.Var, types.Cst:
		return t
	case *types.Apply:
		fn := u.rewriteAssumed(assumed, x.Fn)
		arg := u.rewriteAssumed(assumed, x.Arg)
		if fn == x.Fn && arg == x.Arg {
			return t
		}
		return types.MkApply(fn, arg)
	case *types.Alias:
		return &types.Alias{Sym: x.Sym, Args: x.Args, Tpe: u.rewriteAssumed(assumed, x.Tpe)}
	case *types.AssocType:
		arg := u.rewriteAssumed(assumed, x.Arg)
		for _, a := range assumed {
			if a.Assoc == x.Sym && types.TypeEq(a.Arg, arg) {
				return a.Result
			}
		}
		if arg == x.Arg {
			return t
		}
		return &types.AssocType{Sym: x.Sym, Arg: arg, K: x.K}
	default:
		types.ICE("unknown type node %T", t)
		return nil
	}
}

// IsIrreducible reports whether err is an irreducible associated type
// failure.
func IsIrreducible(err error) bool {
	var e IrreducibleAssocTypeError
	return errors.As(err, &e)
}
