// Package unify implements unification over the type and effect terms of
// pkg/types: syntactic decomposition with an occurs check for ordinary
// positions, order-insensitive row matching for record and schema rows,
// Boolean unification for effect positions, and reduction plus entailment
// for associated types.
package unify

import (
	"errors"

	"github.com/skeinlang/skein/pkg/types"
	"github.com/skeinlang/skein/pkg/zhegalkin"
)

// Unifier carries the read-only context one unification needs. The same
// Unifier can serve many calls; all fields are shared references.
type Unifier struct {
	Fresh *types.Fresh
	Renv  types.RigidityEnv
	CEnv  types.ClassEnv
	EEnv  types.EqualityEnv
	Univ  *types.Universe
	Cache *zhegalkin.Cache
}

// withRenv derives a Unifier with a different rigidity environment.
func (u *Unifier) withRenv(renv types.RigidityEnv) *Unifier {
	c := *u
	c.Renv = renv
	return &c
}

func (u *Unifier) rigid(v types.Var) bool {
	return u.Renv.IsRigid(v)
}

// Unify computes a most general unifier of t1 and t2 together with any
// equality constraints whose resolution had to be deferred. Success and
// failure are symmetric in the argument order; diagnostics treat t1 as
// the expected side.
func (u *Unifier) Unify(t1, t2 types.Type) (types.Substitution, []types.EqualityConstraint, error) {
	s, ecs, err := u.unify(t1, t2)
	if err != nil {
		var mm MismatchError
		if errors.As(err, &mm) && mm.ExpectedFull == nil {
			mm.ExpectedFull = t1
			mm.ActualFull = t2
			return nil, nil, mm
		}
		return nil, nil, err
	}
	return s, ecs, nil
}

func (u *Unifier) unify(t1, t2 types.Type) (types.Substitution, []types.EqualityConstraint, error) {
	t1 = types.UnAlias(t1)
	t2 = types.UnAlias(t2)

	if types.TypeEq(t1, t2) {
		return nil, nil, nil
	}

	// associated types never unify structurally
	if a, ok := t1.(*types.AssocType); ok {
		return u.unifyAssoc(a, t2)
	}
	if a, ok := t2.(*types.AssocType); ok {
		return u.unifyAssoc(a, t1)
	}

	// effect positions unify as Boolean formulas
	if types.IsEffKind(t1.Kind()) || types.IsEffKind(t2.Kind()) {
		s, err := u.unifyEffects(t1, t2)
		return s, nil, err
	}

	// rows unify by label, never positionally
	if types.IsRowKind(t1.Kind()) || types.IsRowKind(t2.Kind()) {
		if v, ok := t1.(types.Var); ok {
			return u.unifyVar(v, t2)
		}
		if v, ok := t2.(types.Var); ok {
			return u.unifyVar(v, t1)
		}
		return u.unifyRows(t1, t2)
	}

	switch x := t1.(type) {
	case types.Var:
		return u.unifyVar(x, t2)
	case types.Cst:
		if v, ok := t2.(types.Var); ok {
			return u.unifyVar(v, t1)
		}
		// equal constants were caught by the fast path above
		return nil, nil, MismatchError{Expected: t1, Actual: t2}
	case *types.Apply:
		switch y := t2.(type) {
		case types.Var:
			return u.unifyVar(y, t1)
		case *types.Apply:
			return u.unifyApply(x, y)
		default:
			return nil, nil, MismatchError{Expected: t1, Actual: t2}
		}
	default:
		types.ICE("unknown type node %T", t1)
		return nil, nil, nil
	}
}

func (u *Unifier) unifyVar(v types.Var, t types.Type) (types.Substitution, []types.EqualityConstraint, error) {
	if w, ok := t.(types.Var); ok {
		if w.ID == v.ID {
			return nil, nil, nil
		}
		switch {
		case u.rigid(v) && u.rigid(w):
			return nil, nil, RigidityError{Var: v, To: w}
		case u.rigid(v):
			return types.Singleton(w.ID, v), nil, nil
		default:
			return types.Singleton(v.ID, w), nil, nil
		}
	}
	if u.rigid(v) {
		return nil, nil, RigidityError{Var: v, To: t}
	}
	if types.FreeVars(t).Contains(v.ID) {
		return nil, nil, OccursCheckError{Var: v, In: t}
	}
	return types.Singleton(v.ID, t), nil, nil
}

func (u *Unifier) unifyApply(a, b *types.Apply) (types.Substitution, []types.EqualityConstraint, error) {
	s1, ec1, err := u.unify(a.Fn, b.Fn)
	if err != nil {
		return nil, nil, err
	}
	s2, ec2, err := u.unify(s1.Apply(a.Arg), s1.Apply(b.Arg))
	if err != nil {
		return nil, nil, err
	}
	return s2.Compose(s1), append(ec1, ec2...), nil
}

// unifyAssoc handles an associated-type projection on one side. If the
// argument still contains flexible variables the projection cannot be
// looked up yet: the equality is deferred as a residual constraint for
// the caller to assert once the argument is concrete. Otherwise the
// projection reduces and unification continues on the result.
func (u *Unifier) unifyAssoc(a *types.AssocType, other types.Type) (types.Substitution, []types.EqualityConstraint, error) {
	if types.TypeEq(a, other) {
		return nil, nil, nil
	}
	if u.hasFlexibleVars(a.Arg) {
		return nil, []types.EqualityConstraint{{Assoc: a.Sym, Arg: a.Arg, Result: other}}, nil
	}
	reduced, err := u.ReduceStep(a.Sym, a.Arg)
	if err != nil {
		// rigid variables may be resolvable from assumed equalities later
		if len(types.FreeVars(a.Arg)) > 0 {
			return nil, []types.EqualityConstraint{{Assoc: a.Sym, Arg: a.Arg, Result: other}}, nil
		}
		return nil, nil, err
	}
	return u.unify(reduced, other)
}

func (u *Unifier) hasFlexibleVars(t types.Type) bool {
	for _, v := range types.FreeVars(t).Sorted() {
		if !u.rigid(v) {
			return true
		}
	}
	return false
}

// freshenTypes renames the free variables of the given types, shared
// variables consistently, to fresh flexible ones. Instance declarations
// are generic: each match works on its own copy.
func (u *Unifier) freshenTypes(ts ...types.Type) []types.Type {
	vs := types.FreeVarsAll(ts...)
	if len(vs) == 0 {
		return ts
	}
	s := make(types.Substitution, len(vs))
	for _, v := range vs.Sorted() {
		s[v.ID] = u.Fresh.FreshVar(v.K)
	}
	return s.ApplyAll(ts)
}
