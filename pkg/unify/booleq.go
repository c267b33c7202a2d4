package unify

import (
	"github.com/skeinlang/skein/pkg/types"
	"github.com/skeinlang/skein/pkg/zhegalkin"
)

// unifyEffects unifies two effect formulas by translating both into
// Zhegalkin polynomials and solving the Boolean equation f1 = f2 for the
// flexible variables. The returned substitution maps effect variables
// back to effect formulas.
func (u *Unifier) unifyEffects(t1, t2 types.Type) (types.Substitution, error) {
	if types.TypeEq(t1, t2) {
		return nil, nil
	}

	// a lone flexible variable binds directly
	if v, ok := t1.(types.Var); ok && !u.rigid(v) && !types.FreeVars(t2).Contains(v.ID) {
		return types.Singleton(v.ID, t2), nil
	}
	if v, ok := t2.(types.Var); ok && !u.rigid(v) && !types.FreeVars(t1).Contains(v.ID) {
		return types.Singleton(v.ID, t1), nil
	}

	vars := make(map[int64]types.Var)
	e1 := u.toZhegalkin(t1, vars)
	e2 := u.toZhegalkin(t2, vars)

	boolSubst, err := zhegalkin.Unify(e1, e2, u.Cache)
	if err != nil {
		return nil, BoolUnifyError{F1: t1, F2: t2}
	}
	if len(boolSubst) == 0 {
		return nil, nil
	}

	out := make(types.Substitution, len(boolSubst))
	for id, expr := range boolSubst {
		v, ok := vars[id]
		if !ok {
			types.ICE("boolean unifier bound unknown variable ?%d", id)
		}
		out[v.ID] = u.fromZhegalkin(expr, vars)
	}
	return out, nil
}

// toZhegalkin translates an effect formula into its canonical polynomial,
// recording every variable it meets. A constructor outside the effect
// algebra means an earlier phase produced a malformed formula.
func (u *Unifier) toZhegalkin(t types.Type, vars map[int64]types.Var) zhegalkin.Expr {
	t = types.UnAlias(t)
	switch x := t.(type) {
	case types.Var:
		vars[int64(x.ID)] = x
		return zhegalkin.MkVar(zhegalkin.Var{ID: int64(x.ID), Flexible: !u.rigid(x)})
	case types.Cst:
		switch c := x.C.(type) {
		case types.CtorPure:
			return zhegalkin.Zero
		case types.CtorUniv:
			return zhegalkin.One
		case types.CtorEffect:
			idx, ok := u.Univ.Index(c.Sym)
			if !ok {
				types.ICE("effect %s not in universe", c.Sym)
			}
			return zhegalkin.MkCst(zhegalkin.FiniteSet(int32(idx)))
		}
	case *types.Apply:
		head, args := types.SplitApply(t)
		if cst, ok := head.(types.Cst); ok {
			switch cst.C.(type) {
			case types.CtorUnion:
				if len(args) == 2 {
					return zhegalkin.Or(u.toZhegalkin(args[0], vars), u.toZhegalkin(args[1], vars))
				}
			case types.CtorIntersection:
				if len(args) == 2 {
					return zhegalkin.And(u.toZhegalkin(args[0], vars), u.toZhegalkin(args[1], vars))
				}
			case types.CtorComplement:
				if len(args) == 1 {
					return zhegalkin.Not(u.toZhegalkin(args[0], vars))
				}
			}
		}
	}
	types.ICE("malformed effect formula %s", t)
	return zhegalkin.Expr{}
}

// fromZhegalkin translates a polynomial back into an effect formula. XOR
// has no surface constructor, so a ⊕ b expands to (a & ~b) + (~a & b);
// the constant folding in the formula builders keeps common shapes small.
func (u *Unifier) fromZhegalkin(e zhegalkin.Expr, vars map[int64]types.Var) types.Type {
	acc := u.csetToType(e.Cst)
	for _, term := range e.Terms {
		acc = xorType(acc, u.termToType(term, vars))
	}
	return acc
}

func (u *Unifier) termToType(term zhegalkin.Term, vars map[int64]types.Var) types.Type {
	acc := u.csetToType(term.Cst)
	for _, zv := range term.Vars {
		v, ok := vars[zv.ID]
		if !ok {
			types.ICE("boolean unifier produced unknown variable ?%d", zv.ID)
		}
		acc = types.MkIntersection(acc, v)
	}
	return acc
}

func (u *Unifier) csetToType(s zhegalkin.CofiniteSet) types.Type {
	if s.IsEmpty() {
		return types.PureType
	}
	if s.IsUniv() {
		return types.UnivType
	}
	acc := types.PureType
	for _, idx := range s.Elems {
		sym, ok := u.Univ.SymAt(int(idx))
		if !ok {
			types.ICE("effect index %d outside universe", idx)
		}
		acc = types.MkUnion(acc, types.MkEffect(sym))
	}
	if s.Compl {
		return types.MkComplement(acc)
	}
	return acc
}

func xorType(a, b types.Type) types.Type {
	return types.MkUnion(
		types.MkIntersection(a, types.MkComplement(b)),
		types.MkIntersection(types.MkComplement(a), b),
	)
}
