package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitutionApply(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)
	b := fresh.FreshVar(Star)

	s := Singleton(a.ID, Int32Type)
	assert.True(t, TypeEq(Int32Type, s.Apply(a)))
	assert.True(t, TypeEq(b, s.Apply(b)))
	assert.True(t, TypeEq(MkLazy(Int32Type), s.Apply(MkLazy(a))))

	arrow := MkArrow([]Type{a}, PureType, b)
	got := s.Apply(arrow)
	params, _, ret, ok := ArrowParts(got)
	require.True(t, ok)
	assert.True(t, TypeEq(Int32Type, params[0]))
	assert.True(t, TypeEq(b, ret))
}

func TestSubstitutionCompose(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)
	b := fresh.FreshVar(Star)

	inner := Singleton(a.ID, b)
	outer := Singleton(b.ID, Int32Type)

	// outer @@ inner applies inner first
	composed := outer.Compose(inner)
	assert.True(t, TypeEq(Int32Type, composed.Apply(a)))
	assert.True(t, TypeEq(Int32Type, composed.Apply(b)))

	// one application reaches the fixpoint
	once := composed.Apply(a)
	assert.True(t, TypeEq(once, composed.Apply(once)))
}

func TestSubstitutionComposeConflict(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)

	inner := Singleton(a.ID, Int32Type)
	outer := Singleton(a.ID, StrType)

	// the later substitution wins on conflicts
	composed := outer.Compose(inner)
	assert.True(t, TypeEq(StrType, composed.Apply(a)))
}

func TestSubstitutionConstraints(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)
	eq := ClassSym{Name: "Eq"}
	elem := AssocSym{Class: eq, Name: "Elem"}

	s := Singleton(a.ID, Int32Type)

	tcs := s.ApplyClassConstraints([]ClassConstraint{{Class: eq, Arg: a}})
	require.Len(t, tcs, 1)
	assert.True(t, TypeEq(Int32Type, tcs[0].Arg))

	ecs := s.ApplyEqualityConstraints([]EqualityConstraint{{Assoc: elem, Arg: a, Result: a}})
	require.Len(t, ecs, 1)
	assert.True(t, TypeEq(Int32Type, ecs[0].Arg))
	assert.True(t, TypeEq(Int32Type, ecs[0].Result))
}

func TestGeneralize(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)
	b := fresh.FreshVar(Star)
	outer := fresh.FreshVar(Star)

	renv := NewRigidityEnv()
	renv.MarkRigid(outer.ID)

	arrow := MkArrow([]Type{a, outer}, PureType, b)
	sc := Generalize(nil, nil, arrow, renv)

	require.Len(t, sc.Quantifiers, 2)
	assert.Equal(t, a.ID, sc.Quantifiers[0].ID)
	assert.Equal(t, b.ID, sc.Quantifiers[1].ID)

	free := FreeSchemeVars(sc)
	require.Len(t, free, 1)
	assert.True(t, free.Contains(outer.ID))
}

func TestGeneralizeQuantifiesConstraintVars(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)
	b := fresh.FreshVar(Star)
	eq := ClassSym{Name: "Eq"}

	// b occurs only in the constraint, yet still quantifies
	sc := Generalize([]ClassConstraint{{Class: eq, Arg: b}}, nil, a, NewRigidityEnv())
	require.Len(t, sc.Quantifiers, 2)
	assert.Empty(t, FreeSchemeVars(sc))
}

func TestGeneralizeSkipsFlaggedRigid(t *testing.T) {
	fresh := NewFresh()
	q := fresh.FreshRigidVar(Star)

	sc := Generalize(nil, nil, MkLazy(q), NewRigidityEnv())
	assert.Empty(t, sc.Quantifiers)
	assert.True(t, FreeSchemeVars(sc).Contains(q.ID))
}

func TestInstantiate(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshRigidVar(Star)
	eq := ClassSym{Name: "Eq"}

	sc := Scheme{
		Quantifiers: []Var{a},
		TConstrs:    []ClassConstraint{{Class: eq, Arg: a}},
		Base:        MkArrow([]Type{a}, PureType, BoolType),
	}

	tcs, _, base := Instantiate(fresh, sc)
	require.Len(t, tcs, 1)

	params, _, _, ok := ArrowParts(base)
	require.True(t, ok)

	opened, isVar := params[0].(Var)
	require.True(t, isVar)
	assert.NotEqual(t, a.ID, opened.ID)
	assert.False(t, opened.Rigid)

	// the constraint opened to the same fresh variable as the base
	assert.True(t, TypeEq(opened, tcs[0].Arg))

	// a second instantiation is independent of the first
	_, _, base2 := Instantiate(fresh, sc)
	params2, _, _, _ := ArrowParts(base2)
	assert.False(t, TypeEq(params[0], params2[0]))
}

func TestInstantiateMono(t *testing.T) {
	sc := MonoScheme(Int32Type)
	assert.True(t, sc.IsMono())

	tcs, ecs, base := Instantiate(NewFresh(), sc)
	assert.Empty(t, tcs)
	assert.Empty(t, ecs)
	assert.True(t, TypeEq(Int32Type, base))
}

func TestGeneralizeInstantiateRoundTrip(t *testing.T) {
	fresh := NewFresh()
	a := fresh.FreshVar(Star)
	eff := fresh.FreshVar(EffKind)

	arrow := MkArrow([]Type{a}, eff, a)
	sc := Generalize(nil, nil, arrow, NewRigidityEnv())
	require.Len(t, sc.Quantifiers, 2)

	_, _, base := Instantiate(fresh, sc)
	params, gotEff, ret, ok := ArrowParts(base)
	require.True(t, ok)

	// the shape survives: param and result stay identified
	assert.True(t, TypeEq(params[0], ret))
	assert.False(t, TypeEq(params[0], a), "instantiation must not reuse the generalized variable")
	assert.Equal(t, EffKind, gotEff.Kind())
}

func TestApplySchemeRespectsQuantifiers(t *testing.T) {
	fresh := NewFresh()
	q := fresh.FreshRigidVar(Star)
	free := fresh.FreshVar(Star)

	sc := Scheme{
		Quantifiers: []Var{q},
		Base:        MkArrow([]Type{q}, PureType, free),
	}

	s := NewSubstitution()
	s.Bind(q.ID, Int32Type)
	s.Bind(free.ID, StrType)

	got := ApplyScheme(s, sc)
	params, _, ret, ok := ArrowParts(got.Base)
	require.True(t, ok)

	// the quantified variable is untouched, the free one rewrites
	assert.True(t, TypeEq(q, params[0]))
	assert.True(t, TypeEq(StrType, ret))

	// the original substitution still holds both bindings
	bound, ok := s.Get(q.ID)
	require.True(t, ok)
	assert.True(t, TypeEq(Int32Type, bound))
}
