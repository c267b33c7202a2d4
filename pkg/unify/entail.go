package unify

import (
	"github.com/skeinlang/skein/pkg/types"
)

// EntailClass proves that a class obligation follows from the assumed
// constraints and the class environment. An obligation holds by
// assumption, by an assumption's super class, or by a matching instance
// whose own constraints are entailed in turn. It never binds the goal's
// variables: obligations must be entailed, not merely satisfiable.
func (u *Unifier) EntailClass(assumed []types.ClassConstraint, goal types.ClassConstraint) error {
	for _, a := range assumed {
		if !types.TypeEq(a.Arg, goal.Arg) {
			continue
		}
		if a.Class == goal.Class {
			return nil
		}
		for _, super := range u.CEnv.SuperClasses(a.Class) {
			if super == goal.Class {
				return nil
			}
		}
	}

	ctx, ok := u.CEnv[goal.Class]
	if !ok {
		return MissingInstanceError{Constraint: goal}
	}
	renv := types.RigidityOf(types.FreeVars(goal.Arg))
	matcher := u.withRenv(renv)
	for _, inst := range ctx.Instances {
		instTpe, instConstrs := u.freshenInstance(inst)
		s, residual, err := matcher.Unify(instTpe, goal.Arg)
		if err != nil || len(residual) > 0 {
			continue
		}
		entailed := true
		for _, c := range s.ApplyClassConstraints(instConstrs) {
			if err := u.EntailClass(assumed, c); err != nil {
				entailed = false
				break
			}
		}
		if entailed {
			return nil
		}
	}
	return MissingInstanceError{Constraint: goal}
}

// freshenInstance renames an instance's generic variables consistently
// across its type and constraints.
func (u *Unifier) freshenInstance(inst types.Instance) (types.Type, []types.ClassConstraint) {
	vs := types.FreeVars(inst.Tpe)
	for _, c := range inst.TConstrs {
		for id, v := range types.FreeVars(c.Arg) {
			vs[id] = v
		}
	}
	if len(vs) == 0 {
		return inst.Tpe, inst.TConstrs
	}
	s := make(types.Substitution, len(vs))
	for _, v := range vs.Sorted() {
		s[v.ID] = u.Fresh.FreshVar(v.K)
	}
	return s.Apply(inst.Tpe), s.ApplyClassConstraints(inst.TConstrs)
}
