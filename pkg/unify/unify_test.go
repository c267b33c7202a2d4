package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeinlang/skein/pkg/types"
	"github.com/skeinlang/skein/pkg/zhegalkin"
)

var (
	askSym  = types.EffSym{Name: "Ask"}
	failSym = types.EffSym{Name: "Fail"}
)

// testUnifier builds a unifier over a small fixed universe with empty
// class and equality environments. Tests mutate the returned envs to
// install their fixtures.
func testUnifier() *Unifier {
	return &Unifier{
		Fresh: types.NewFresh(),
		Renv:  types.NewRigidityEnv(),
		CEnv:  make(types.ClassEnv),
		EEnv:  make(types.EqualityEnv),
		Univ:  types.NewUniverse(askSym, failSym),
		Cache: zhegalkin.NewCache(64),
	}
}

// requireUnifies asserts that t1 and t2 unify and that the unifier is in
// fact a unifier: both sides agree after applying it.
func requireUnifies(t *testing.T, u *Unifier, t1, t2 types.Type) types.Substitution {
	t.Helper()
	s, residual, err := u.Unify(t1, t2)
	require.NoError(t, err)
	require.Empty(t, residual)

	a, b := s.Apply(t1), s.Apply(t2)
	s2, residual2, err := u.Unify(a, b)
	require.NoError(t, err, "substitution does not unify %s with %s", a, b)
	require.Empty(t, residual2)
	require.Empty(t, s2, "substitution was not most general: %s left over", s2)
	return s
}

func TestUnifyIdentical(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)

	for _, tpe := range []types.Type{types.Int32Type, a, types.MkLazy(types.StrType)} {
		s, residual, err := u.Unify(tpe, tpe)
		require.NoError(t, err)
		assert.Empty(t, residual)
		assert.Empty(t, s)
	}
}

func TestUnifyVarBinding(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)

	s := requireUnifies(t, u, a, types.Int32Type)
	assert.True(t, types.TypeEq(types.Int32Type, s.Apply(a)))

	// symmetric orientation
	u2 := testUnifier()
	b := u2.Fresh.FreshVar(types.Star)
	s = requireUnifies(t, u2, types.Int32Type, b)
	assert.True(t, types.TypeEq(types.Int32Type, s.Apply(b)))
}

func TestUnifyStructuralDecomposition(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)
	b := u.Fresh.FreshVar(types.Star)

	t1 := types.MkArrow([]types.Type{a}, types.PureType, a)
	t2 := types.MkArrow([]types.Type{types.Int32Type}, types.PureType, b)

	s := requireUnifies(t, u, t1, t2)
	assert.True(t, types.TypeEq(types.Int32Type, s.Apply(a)))
	assert.True(t, types.TypeEq(types.Int32Type, s.Apply(b)))
}

func TestUnifyArrowBindsEffect(t *testing.T) {
	// The effect component of an arrow unifies through the Boolean
	// unifier, not structurally.
	u := testUnifier()
	e := u.Fresh.FreshVar(types.EffKind)

	pure := types.MkArrow([]types.Type{types.Int32Type}, types.PureType, types.BoolType)
	open := types.MkArrow([]types.Type{types.Int32Type}, e, types.BoolType)

	s := requireUnifies(t, u, pure, open)
	assert.True(t, types.TypeEq(types.PureType, s.Apply(e)))
}

func TestUnifyTuple(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)
	b := u.Fresh.FreshVar(types.Star)

	s := requireUnifies(t, u,
		types.MkTuple([]types.Type{a, types.StrType}),
		types.MkTuple([]types.Type{types.Int32Type, b}))
	assert.True(t, types.TypeEq(types.Int32Type, s.Apply(a)))
	assert.True(t, types.TypeEq(types.StrType, s.Apply(b)))
}

func TestUnifyMismatch(t *testing.T) {
	u := testUnifier()

	_, _, err := u.Unify(types.Int32Type, types.StrType)
	var mm MismatchError
	require.ErrorAs(t, err, &mm)
	assert.True(t, types.TypeEq(types.Int32Type, mm.Expected))
	assert.True(t, types.TypeEq(types.StrType, mm.Actual))
}

func TestUnifyArityMismatch(t *testing.T) {
	u := testUnifier()

	_, _, err := u.Unify(
		types.MkTuple([]types.Type{types.Int32Type, types.StrType}),
		types.MkTuple([]types.Type{types.Int32Type, types.StrType, types.BoolType}))
	var mm MismatchError
	require.ErrorAs(t, err, &mm)
}

func TestUnifyMismatchCarriesEnclosingTypes(t *testing.T) {
	u := testUnifier()

	t1 := types.MkLazy(types.Int32Type)
	t2 := types.MkLazy(types.StrType)
	_, _, err := u.Unify(t1, t2)

	var mm MismatchError
	require.ErrorAs(t, err, &mm)
	assert.True(t, types.TypeEq(types.Int32Type, mm.Expected))
	assert.True(t, types.TypeEq(t1, mm.ExpectedFull))
	assert.True(t, types.TypeEq(t2, mm.ActualFull))
}

func TestOccursCheck(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)

	_, _, err := u.Unify(a, types.MkLazy(a))
	var occ OccursCheckError
	require.ErrorAs(t, err, &occ)
	assert.Equal(t, a.ID, occ.Var.ID)
}

func TestRigidVariables(t *testing.T) {
	u := testUnifier()
	r1 := u.Fresh.FreshRigidVar(types.Star)
	r2 := u.Fresh.FreshRigidVar(types.Star)
	flex := u.Fresh.FreshVar(types.Star)

	// rigid against a concrete type fails
	_, _, err := u.Unify(r1, types.Int32Type)
	var re RigidityError
	require.ErrorAs(t, err, &re)

	// two distinct rigids fail
	_, _, err = u.Unify(r1, r2)
	require.ErrorAs(t, err, &re)

	// a flexible variable binds to the rigid one, never the reverse
	s := requireUnifies(t, u, flex, r1)
	assert.True(t, types.TypeEq(r1, s.Apply(flex)))
	s = requireUnifies(t, u, r1, flex)
	assert.True(t, types.TypeEq(r1, s.Apply(flex)))
}

func TestRenvMarkedRigidity(t *testing.T) {
	u := testUnifier()
	v := u.Fresh.FreshVar(types.Star)
	u.Renv.MarkRigid(v.ID)

	_, _, err := u.Unify(v, types.Int32Type)
	var re RigidityError
	require.ErrorAs(t, err, &re)
}

func TestUnifySymmetry(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)
	b := u.Fresh.FreshVar(types.Star)

	pairs := []struct {
		name string
		l, r types.Type
	}{
		{"var const", a, types.StrType},
		{"arrows", types.MkArrow([]types.Type{a}, types.PureType, b),
			types.MkArrow([]types.Type{types.Int32Type}, types.PureType, types.BoolType)},
		{"lazy", types.MkLazy(a), types.MkLazy(types.Int32Type)},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			s1 := requireUnifies(t, u, tt.l, tt.r)
			s2 := requireUnifies(t, u, tt.r, tt.l)
			assert.True(t, types.TypeEq(s1.Apply(tt.l), s2.Apply(tt.l)))
			assert.True(t, types.TypeEq(s1.Apply(tt.r), s2.Apply(tt.r)))
		})
	}
}

func TestUnifySubstitutionIdempotent(t *testing.T) {
	// Chained bindings collapse: applying the result twice changes
	// nothing beyond applying it once.
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)
	b := u.Fresh.FreshVar(types.Star)
	e := u.Fresh.FreshVar(types.EffKind)

	t1 := types.MkArrow([]types.Type{a}, e, b)
	t2 := types.MkArrow([]types.Type{types.MkLazy(b)}, types.PureType, types.Int32Type)

	s := requireUnifies(t, u, t1, t2)
	for _, probe := range []types.Type{t1, t2, a, b, e} {
		once := s.Apply(probe)
		assert.True(t, types.TypeEq(once, s.Apply(once)),
			"second application moved %s", once)
	}
	assert.True(t, types.TypeEq(s.Apply(t1), s.Compose(s).Apply(t1)))
}

func TestUnifyThroughAlias(t *testing.T) {
	u := testUnifier()
	a := u.Fresh.FreshVar(types.Star)

	alias := &types.Alias{Sym: types.AliasSym{Name: "MyInt"}, Tpe: types.Int32Type}
	s := requireUnifies(t, u, a, alias)
	assert.True(t, types.TypeEq(types.Int32Type, s.Apply(a)))
}
