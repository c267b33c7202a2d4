package zhegalkin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireUnifies solves l = r and checks the solution pointwise: under
// every palette assignment of the variables left free, both sides must
// evaluate to the same set.
func requireUnifies(t *testing.T, l, r Expr) Subst {
	t.Helper()
	s, err := Unify(l, r, nil)
	require.NoError(t, err)

	sl := s.Apply(l)
	sr := s.Apply(r)

	vars := map[int64]bool{}
	for _, v := range sl.FreeVars(false) {
		vars[v.ID] = true
	}
	for _, v := range sr.FreeVars(false) {
		vars[v.ID] = true
	}
	ids := make([]int64, 0, len(vars))
	for id := range vars {
		ids = append(ids, id)
	}

	var walk func(i int, assign map[int64]CofiniteSet)
	walk = func(i int, assign map[int64]CofiniteSet) {
		if i == len(ids) {
			at := func(v Var) CofiniteSet { return assign[v.ID] }
			require.Equal(t, sl.Eval(at), sr.Eval(at),
				"solution does not hold under %v", assign)
			return
		}
		for _, set := range evalPalette {
			assign[ids[i]] = set
			walk(i+1, assign)
		}
	}
	walk(0, map[int64]CofiniteSet{})
	return s
}

func TestUnifyVarAgainstConstant(t *testing.T) {
	x := flex(1)
	io := MkCst(FiniteSet(1))

	s := requireUnifies(t, MkVar(x), io)
	assert.True(t, ExprEq(io, s.Apply(MkVar(x))))
}

func TestUnifySolvedFormBindsDirectly(t *testing.T) {
	// x = t with x not in t binds x to t itself, not to an equivalent
	// eliminated form.
	x, y := flex(1), flex(2)
	rhs := Or(MkVar(y), MkCst(FiniteSet(1)))

	s := requireUnifies(t, MkVar(x), rhs)
	require.Len(t, s, 1)
	assert.True(t, ExprEq(rhs, s.Apply(MkVar(x))))
}

func TestUnifyIdenticalSidesIsEmpty(t *testing.T) {
	a := rigid(1)
	e := Or(MkVar(a), MkCst(FiniteSet(2)))
	s, err := Unify(e, e, nil)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestUnifyCommutedUnionsOfRigids(t *testing.T) {
	a, b := MkVar(rigid(1)), MkVar(rigid(2))
	s, err := Unify(Or(a, b), Or(b, a), nil)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestUnifyAbsorbsVarIntoConstant(t *testing.T) {
	// ?e ∪ IO = IO forces ?e ⊆ IO.
	e := flex(1)
	io := MkCst(FiniteSet(1))

	s := requireUnifies(t, Or(MkVar(e), io), io)
	require.Contains(t, s, e.ID)

	// the binding admits the pure solution
	zeroed := s.Apply(MkVar(e)).MapVars(func(Var) Expr { return Zero })
	assert.True(t, zeroed.IsZero())
}

func TestUnifyHandlerDischarge(t *testing.T) {
	// ?l - Ask = Pure is solvable with ?l ⊆ Ask.
	l := flex(1)
	ask := MkCst(FiniteSet(3))

	s := requireUnifies(t, And(MkVar(l), Not(ask)), Zero)
	bound := s.Apply(MkVar(l))
	eachAssignment2(func(a, _ CofiniteSet) {
		at := func(v Var) CofiniteSet { return a }
		got := bound.Eval(at)
		assert.True(t, got.Inter(FiniteSet(3).Complement()).IsEmpty(),
			"binding %s leaks outside the handled effect under %s", bound, a)
	})
}

func TestUnifyRigidMismatchFails(t *testing.T) {
	a, b := MkVar(rigid(1)), MkVar(rigid(2))
	_, err := Unify(a, b, nil)
	var noSol NoSolutionError
	require.ErrorAs(t, err, &noSol)
	assert.False(t, noSol.Residual.IsZero())
}

func TestUnifyOpenUniverseDistinguishesCofinite(t *testing.T) {
	// {1,2} covers every declared index yet differs from the universal
	// set at any effect declared later, so they must not unify.
	_, err := Unify(MkCst(FiniteSet(1, 2)), One, nil)
	var noSol NoSolutionError
	require.ErrorAs(t, err, &noSol)
}

func TestUnifyMixedRigidFlexible(t *testing.T) {
	// ?e ∪ !a = !a ∪ IO needs ?e to cover IO but stay inside !a ∪ IO.
	e, a := flex(1), rigid(2)
	io := MkCst(FiniteSet(1))

	lhs := Or(MkVar(e), MkVar(a))
	rhs := Or(MkVar(a), io)
	s := requireUnifies(t, lhs, rhs)
	require.Contains(t, s, e.ID)
}

func TestUnifyIsIdempotent(t *testing.T) {
	e := flex(1)
	lhs := Or(MkVar(e), MkCst(FiniteSet(2)))
	rhs := MkCst(FiniteSet(1, 2))

	s := requireUnifies(t, lhs, rhs)
	again, err := Unify(s.Apply(lhs), s.Apply(rhs), nil)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSubstCompose(t *testing.T) {
	x, y := flex(1), flex(2)
	inner := Subst{x.ID: MkVar(y)}
	outer := Subst{y.ID: One}

	composed := outer.Compose(inner)
	assert.True(t, composed.Apply(MkVar(x)).IsOne())
	assert.True(t, composed.Apply(MkVar(y)).IsOne())
}

func TestCacheIsTransparent(t *testing.T) {
	c := NewCache(64)
	require.NotNil(t, c)

	x, y := MkVar(flex(1)), MkVar(rigid(2))

	assert.True(t, ExprEq(Xor(x, y), c.Xor(x, y)))
	assert.True(t, ExprEq(And(x, y), c.And(x, y)))
	// repeated calls hit the memo and must agree
	assert.True(t, ExprEq(c.And(x, y), c.And(x, y)))

	s1, err1 := Unify(Or(x, y), y, nil)
	s2, err2 := Unify(Or(x, y), y, c)
	s3, err3 := Unify(Or(x, y), y, c)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NoError(t, err3)
	assert.Equal(t, s1.String(), s2.String())
	assert.Equal(t, s2.String(), s3.String())
}

func TestNewCacheDisabled(t *testing.T) {
	assert.Nil(t, NewCache(0))
	assert.Nil(t, NewCache(-5))
}
