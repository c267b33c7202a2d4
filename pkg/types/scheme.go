package types

import (
	"fmt"
	"strings"
)

// ClassConstraint is a class membership obligation Class[Arg].
type ClassConstraint struct {
	Class ClassSym
	Arg   Type
}

func (c ClassConstraint) String() string {
	return fmt.Sprintf("%s[%s]", c.Class, c.Arg)
}

// EqualityConstraint asserts that the associated type application
// Assoc[Arg] equals Result.
type EqualityConstraint struct {
	Assoc  AssocSym
	Arg    Type
	Result Type
}

func (c EqualityConstraint) String() string {
	return fmt.Sprintf("%s[%s] ~ %s", c.Assoc, c.Arg, c.Result)
}

// Scheme is a polymorphic type: quantified variables, the class and
// equality constraints they must satisfy, and the base type. Every
// quantifier occurs free in the base or in a constraint; dead quantifiers
// are never introduced.
type Scheme struct {
	Quantifiers []Var
	TConstrs    []ClassConstraint
	EConstrs    []EqualityConstraint
	Base        Type
}

// MonoScheme wraps a monomorphic type as a scheme with no quantifiers.
func MonoScheme(t Type) Scheme {
	return Scheme{Base: t}
}

// IsMono reports whether the scheme quantifies nothing.
func (sc Scheme) IsMono() bool { return len(sc.Quantifiers) == 0 }

func (sc Scheme) String() string {
	var b strings.Builder
	if len(sc.Quantifiers) > 0 {
		b.WriteString("forall ")
		for i, q := range sc.Quantifiers {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(q.String())
		}
		b.WriteString(". ")
	}
	for _, c := range sc.TConstrs {
		b.WriteString(c.String())
		b.WriteString(" => ")
	}
	for _, c := range sc.EConstrs {
		b.WriteString(c.String())
		b.WriteString(" => ")
	}
	b.WriteString(sc.Base.String())
	return b.String()
}

// FreeSchemeVars collects the free variables of the scheme: those of the
// base and constraints minus the quantifiers.
func FreeSchemeVars(sc Scheme) VarSet {
	s := make(VarSet)
	freeVarsInto(sc.Base, s)
	for _, c := range sc.TConstrs {
		freeVarsInto(c.Arg, s)
	}
	for _, c := range sc.EConstrs {
		freeVarsInto(c.Arg, s)
		freeVarsInto(c.Result, s)
	}
	for _, q := range sc.Quantifiers {
		delete(s, q.ID)
	}
	return s
}

// Generalize closes tpe over its free variables that renv does not mark
// rigid. Rigid variables belong to enclosing scopes and stay free.
// Constraint variables are quantified alongside the base so obligations
// travel with the scheme.
func Generalize(tconstrs []ClassConstraint, econstrs []EqualityConstraint, tpe Type, renv RigidityEnv) Scheme {
	free := make(VarSet)
	freeVarsInto(tpe, free)
	for _, c := range tconstrs {
		freeVarsInto(c.Arg, free)
	}
	for _, c := range econstrs {
		freeVarsInto(c.Arg, free)
		freeVarsInto(c.Result, free)
	}
	var quantifiers []Var
	for _, v := range free.Sorted() {
		if !renv.IsRigid(v) {
			quantifiers = append(quantifiers, v)
		}
	}
	return Scheme{
		Quantifiers: quantifiers,
		TConstrs:    tconstrs,
		EConstrs:    econstrs,
		Base:        tpe,
	}
}

// Instantiate opens the scheme's quantifiers into fresh flexible
// variables, applied consistently across the base and both constraint
// lists. It returns the instantiated constraints and base.
func Instantiate(fresh *Fresh, sc Scheme) ([]ClassConstraint, []EqualityConstraint, Type) {
	if len(sc.Quantifiers) == 0 {
		return sc.TConstrs, sc.EConstrs, sc.Base
	}
	s := make(Substitution, len(sc.Quantifiers))
	for _, q := range sc.Quantifiers {
		s[q.ID] = fresh.FreshVar(q.K)
	}
	return s.ApplyClassConstraints(sc.TConstrs),
		s.ApplyEqualityConstraints(sc.EConstrs),
		s.Apply(sc.Base)
}

// ApplyScheme rewrites a scheme's free variables, leaving quantifiers
// untouched. Bindings for quantified ids are dropped first.
func ApplyScheme(s Substitution, sc Scheme) Scheme {
	if len(s) == 0 {
		return sc
	}
	trimmed := s
	for _, q := range sc.Quantifiers {
		if _, ok := s[q.ID]; ok {
			trimmed = cloneWithout(s, sc.Quantifiers)
			break
		}
	}
	return Scheme{
		Quantifiers: sc.Quantifiers,
		TConstrs:    trimmed.ApplyClassConstraints(sc.TConstrs),
		EConstrs:    trimmed.ApplyEqualityConstraints(sc.EConstrs),
		Base:        trimmed.Apply(sc.Base),
	}
}

func cloneWithout(s Substitution, qs []Var) Substitution {
	out := make(Substitution, len(s))
	for id, t := range s {
		out[id] = t
	}
	for _, q := range qs {
		delete(out, q.ID)
	}
	return out
}
