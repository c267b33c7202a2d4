package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeinlang/skein/pkg/types"
)

var (
	containerClass = types.ClassSym{Name: "Container"}
	elemAssoc      = types.AssocSym{Class: containerClass, Name: "Elem"}
)

// withElemEquations installs Elem[String] = Char and Elem[Lazy[a]] = a.
func withElemEquations(u *Unifier) {
	u.EEnv.Add(elemAssoc, types.AssocTypeDef{Arg: types.StrType, Ret: types.CharType})
	generic := u.Fresh.FreshVar(types.Star)
	u.EEnv.Add(elemAssoc, types.AssocTypeDef{Arg: types.MkLazy(generic), Ret: generic})
}

func elemOf(arg types.Type) *types.AssocType {
	return &types.AssocType{Sym: elemAssoc, Arg: arg, K: types.Star}
}

func TestReduceStepConcrete(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	got, err := u.ReduceStep(elemAssoc, types.StrType)
	require.NoError(t, err)
	assert.True(t, types.TypeEq(types.CharType, got))
}

func TestReduceStepGenericInstance(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	got, err := u.ReduceStep(elemAssoc, types.MkLazy(types.Int32Type))
	require.NoError(t, err)
	assert.True(t, types.TypeEq(types.Int32Type, got))
}

func TestReduceStepNoMatch(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	_, err := u.ReduceStep(elemAssoc, types.BoolType)
	var irr IrreducibleAssocTypeError
	require.ErrorAs(t, err, &irr)
	assert.True(t, IsIrreducible(err))
}

func TestReduceStepNeverBindsArgumentVars(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	// a flexible argument must not be specialized to match an instance
	arg := u.Fresh.FreshVar(types.Star)
	_, err := u.ReduceStep(elemAssoc, types.MkLazy(arg))
	require.NoError(t, err, "matching may instantiate the instance side freely")

	_, err = u.ReduceStep(elemAssoc, arg)
	require.Error(t, err, "a bare variable matches no instance head")
}

func TestReduceNested(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	// Elem[Lazy[Elem[String]]] reduces inside out to Char
	nested := elemOf(types.MkLazy(elemOf(types.StrType)))
	got := u.Reduce(nested)
	assert.True(t, types.TypeEq(types.CharType, got))
}

func TestReduceLeavesIrreducibleInPlace(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	r := u.Fresh.FreshRigidVar(types.Star)
	got := u.Reduce(types.MkLazy(elemOf(r)))

	_, args := types.SplitApply(got)
	require.Len(t, args, 1)
	_, isAssoc := args[0].(*types.AssocType)
	assert.True(t, isAssoc)
}

func TestUnifyDefersFlexibleAssoc(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	arg := u.Fresh.FreshVar(types.Star)
	s, residual, err := u.Unify(elemOf(arg), types.Int32Type)
	require.NoError(t, err)
	assert.Empty(t, s)
	require.Len(t, residual, 1)
	assert.Equal(t, elemAssoc, residual[0].Assoc)
	assert.True(t, types.TypeEq(arg, residual[0].Arg))
	assert.True(t, types.TypeEq(types.Int32Type, residual[0].Result))
}

func TestUnifyReducesGroundAssoc(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	x := u.Fresh.FreshVar(types.Star)
	s, residual, err := u.Unify(elemOf(types.StrType), x)
	require.NoError(t, err)
	assert.Empty(t, residual)
	assert.True(t, types.TypeEq(types.CharType, s.Apply(x)))
}

func TestUnifyAssocAgainstItself(t *testing.T) {
	u := testUnifier()

	r := u.Fresh.FreshRigidVar(types.Star)
	s, residual, err := u.Unify(elemOf(r), elemOf(r))
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Empty(t, residual)
}

func TestEntailEqByAssumption(t *testing.T) {
	u := testUnifier()

	r := u.Fresh.FreshRigidVar(types.Star)
	assumed := []types.EqualityConstraint{{Assoc: elemAssoc, Arg: r, Result: types.Int32Type}}
	goal := types.EqualityConstraint{Assoc: elemAssoc, Arg: r, Result: types.Int32Type}

	require.NoError(t, u.EntailEq(assumed, goal))
}

func TestEntailEqByReduction(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	goal := types.EqualityConstraint{Assoc: elemAssoc, Arg: types.StrType, Result: types.CharType}
	require.NoError(t, u.EntailEq(nil, goal))

	wrong := types.EqualityConstraint{Assoc: elemAssoc, Arg: types.StrType, Result: types.BoolType}
	require.Error(t, u.EntailEq(nil, wrong))
}

func TestEntailEqUnproven(t *testing.T) {
	u := testUnifier()
	withElemEquations(u)

	r := u.Fresh.FreshRigidVar(types.Star)
	goal := types.EqualityConstraint{Assoc: elemAssoc, Arg: r, Result: types.Int32Type}

	err := u.EntailEq(nil, goal)
	var irr IrreducibleAssocTypeError
	require.ErrorAs(t, err, &irr)
}

func TestEntailEqRewritesInsideResult(t *testing.T) {
	u := testUnifier()

	r := u.Fresh.FreshRigidVar(types.Star)
	assumed := []types.EqualityConstraint{{Assoc: elemAssoc, Arg: r, Result: types.Int32Type}}

	// Lazy[Elem[r]] ~ Lazy[Int32] follows once the assumption rewrites
	goal := types.EqualityConstraint{
		Assoc:  elemAssoc,
		Arg:    r,
		Result: types.Int32Type,
	}
	require.NoError(t, u.EntailEq(assumed, goal))

	lhs := u.rewriteAssumed(assumed, types.MkLazy(elemOf(r)))
	assert.True(t, types.TypeEq(types.MkLazy(types.Int32Type), lhs))
}

var (
	eqClass  = types.ClassSym{Name: "Eq"}
	ordClass = types.ClassSym{Name: "Ord"}
)

func withEqInstances(u *Unifier) {
	lazyElem := u.Fresh.FreshVar(types.Star)
	u.CEnv[eqClass] = &types.ClassContext{
		Instances: []types.Instance{
			{Tpe: types.Int32Type},
			{Tpe: types.MkLazy(lazyElem), TConstrs: []types.ClassConstraint{{Class: eqClass, Arg: lazyElem}}},
		},
	}
	u.CEnv[ordClass] = &types.ClassContext{Super: []types.ClassSym{eqClass}}
}

func TestEntailClassByInstance(t *testing.T) {
	u := testUnifier()
	withEqInstances(u)

	require.NoError(t, u.EntailClass(nil, types.ClassConstraint{Class: eqClass, Arg: types.Int32Type}))

	err := u.EntailClass(nil, types.ClassConstraint{Class: eqClass, Arg: types.StrType})
	var missing MissingInstanceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, eqClass, missing.Constraint.Class)
}

func TestEntailClassByAssumption(t *testing.T) {
	u := testUnifier()
	withEqInstances(u)

	r := u.Fresh.FreshRigidVar(types.Star)
	assumed := []types.ClassConstraint{{Class: eqClass, Arg: r}}
	require.NoError(t, u.EntailClass(assumed, types.ClassConstraint{Class: eqClass, Arg: r}))

	// the assumption does not cover other types
	err := u.EntailClass(assumed, types.ClassConstraint{Class: eqClass, Arg: types.StrType})
	require.Error(t, err)
}

func TestEntailClassBySuperClass(t *testing.T) {
	u := testUnifier()
	withEqInstances(u)

	r := u.Fresh.FreshRigidVar(types.Star)
	assumed := []types.ClassConstraint{{Class: ordClass, Arg: r}}
	require.NoError(t, u.EntailClass(assumed, types.ClassConstraint{Class: eqClass, Arg: r}))
}

func TestEntailClassConditionalInstance(t *testing.T) {
	u := testUnifier()
	withEqInstances(u)

	// Eq[Lazy[Int32]] holds because Eq[Int32] does
	require.NoError(t, u.EntailClass(nil,
		types.ClassConstraint{Class: eqClass, Arg: types.MkLazy(types.Int32Type)}))

	// Eq[Lazy[String]] fails on the instance's own constraint
	err := u.EntailClass(nil,
		types.ClassConstraint{Class: eqClass, Arg: types.MkLazy(types.StrType)})
	require.Error(t, err)
}

func TestEntailClassNeverBindsGoalVars(t *testing.T) {
	u := testUnifier()
	withEqInstances(u)

	// a flexible goal must be entailed for every choice, so an instance
	// at one concrete type is not enough
	v := u.Fresh.FreshVar(types.Star)
	err := u.EntailClass(nil, types.ClassConstraint{Class: eqClass, Arg: v})
	var missing MissingInstanceError
	require.ErrorAs(t, err, &missing)
}
