package types

import (
	"sort"
	"strings"
)

// Effect formula constants.
var (
	PureType Type = Cst{CtorPure{}}
	UnivType Type = Cst{CtorUniv{}}
)

// MkEffect is the atomic effect set {sym}.
func MkEffect(sym EffSym) Type {
	return Cst{CtorEffect{Sym: sym}}
}

// MkUnion builds e1 + e2, folding away Pure and Univ.
func MkUnion(e1, e2 Type) Type {
	if TypeEq(e1, PureType) {
		return e2
	}
	if TypeEq(e2, PureType) {
		return e1
	}
	if TypeEq(e1, UnivType) || TypeEq(e2, UnivType) {
		return UnivType
	}
	return MkApplyAll(Cst{CtorUnion{}}, e1, e2)
}

// MkUnionAll folds MkUnion over the given formulas.
func MkUnionAll(effs ...Type) Type {
	acc := PureType
	for _, e := range effs {
		acc = MkUnion(acc, e)
	}
	return acc
}

// MkIntersection builds e1 & e2, folding away Pure and Univ.
func MkIntersection(e1, e2 Type) Type {
	if TypeEq(e1, UnivType) {
		return e2
	}
	if TypeEq(e2, UnivType) {
		return e1
	}
	if TypeEq(e1, PureType) || TypeEq(e2, PureType) {
		return PureType
	}
	return MkApplyAll(Cst{CtorIntersection{}}, e1, e2)
}

// MkComplement builds ~e, folding the constant cases.
func MkComplement(e Type) Type {
	if TypeEq(e, PureType) {
		return UnivType
	}
	if TypeEq(e, UnivType) {
		return PureType
	}
	return MkApply(Cst{CtorComplement{}}, e)
}

// MkDifference builds e1 - e2 as e1 & ~e2.
func MkDifference(e1, e2 Type) Type {
	return MkIntersection(e1, MkComplement(e2))
}

// Universe is the closed set of effect symbols in scope for one checker
// run, the builtin IO included. It assigns each symbol a stable index for
// the Boolean unifier. Read-only after construction.
type Universe struct {
	syms  []EffSym
	index map[EffSym]int
}

// NewUniverse builds a universe over the declared symbols plus IO.
func NewUniverse(syms ...EffSym) *Universe {
	u := &Universe{index: make(map[EffSym]int, len(syms)+1)}
	u.add(IOSym)
	for _, s := range syms {
		u.add(s)
	}
	return u
}

func (u *Universe) add(sym EffSym) {
	if _, ok := u.index[sym]; ok {
		return
	}
	u.index[sym] = len(u.syms)
	u.syms = append(u.syms, sym)
}

// Index returns the stable index of sym.
func (u *Universe) Index(sym EffSym) (int, bool) {
	i, ok := u.index[sym]
	return i, ok
}

// SymAt returns the symbol with the given index.
func (u *Universe) SymAt(i int) (EffSym, bool) {
	if i < 0 || i >= len(u.syms) {
		return EffSym{}, false
	}
	return u.syms[i], true
}

// Syms returns all symbols in index order.
func (u *Universe) Syms() []EffSym {
	return u.syms
}

// Size returns the number of symbols in the universe.
func (u *Universe) Size() int { return len(u.syms) }

// EffectSet is a set of effect symbols, the denotation of a closed
// effect formula.
type EffectSet map[EffSym]struct{}

// Sorted returns the members in a stable order.
func (s EffectSet) Sorted() []EffSym {
	out := make([]EffSym, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func (s EffectSet) String() string {
	parts := make([]string, 0, len(s))
	for _, sym := range s.Sorted() {
		parts = append(parts, sym.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EvalEffects evaluates a closed effect formula to the set of symbols it
// denotes within u. The formula must be variable-free and built only from
// the effect constructors; anything else is an invariant violation from
// an earlier phase.
func EvalEffects(t Type, u *Universe) EffectSet {
	t = UnAlias(t)
	switch x := t.(type) {
	case Var:
		ICE("evaluated open effect formula: free variable %s", x)
	case Cst:
		switch c := x.C.(type) {
		case CtorPure:
			return EffectSet{}
		case CtorUniv:
			all := make(EffectSet, len(u.syms))
			for _, sym := range u.syms {
				all[sym] = struct{}{}
			}
			return all
		case CtorEffect:
			if _, ok := u.Index(c.Sym); !ok {
				ICE("effect %s not in universe", c.Sym)
			}
			return EffectSet{c.Sym: {}}
		}
	case *Apply:
		head, args := SplitApply(t)
		cst, ok := head.(Cst)
		if !ok {
			break
		}
		switch cst.C.(type) {
		case CtorUnion:
			a, b := EvalEffects(args[0], u), EvalEffects(args[1], u)
			out := make(EffectSet, len(a)+len(b))
			for s := range a {
				out[s] = struct{}{}
			}
			for s := range b {
				out[s] = struct{}{}
			}
			return out
		case CtorIntersection:
			a, b := EvalEffects(args[0], u), EvalEffects(args[1], u)
			out := make(EffectSet)
			for s := range a {
				if _, ok := b[s]; ok {
					out[s] = struct{}{}
				}
			}
			return out
		case CtorComplement:
			a := EvalEffects(args[0], u)
			out := make(EffectSet)
			for _, sym := range u.syms {
				if _, ok := a[sym]; !ok {
					out[sym] = struct{}{}
				}
			}
			return out
		}
	}
	ICE("malformed effect formula %s", t)
	return nil
}

// Purity is the three-point classification of a closed effect, totally
// ordered Pure below Impure below ControlImpure.
type Purity int

const (
	PurityPure Purity = iota
	PurityImpure
	PurityControlImpure
)

func (p Purity) String() string {
	switch p {
	case PurityPure:
		return "Pure"
	case PurityImpure:
		return "Impure"
	case PurityControlImpure:
		return "ControlImpure"
	default:
		return "Purity(?)"
	}
}

// Classify maps an effect set to its purity: the empty set is Pure, the
// singleton {IO} is Impure, anything else is ControlImpure.
func Classify(set EffectSet) Purity {
	switch {
	case len(set) == 0:
		return PurityPure
	case len(set) == 1:
		if _, ok := set[IOSym]; ok {
			return PurityImpure
		}
		return PurityControlImpure
	default:
		return PurityControlImpure
	}
}

// CombinePurity merges the purities of sibling subexpressions; the result
// is the maximum in the Pure < Impure < ControlImpure order.
func CombinePurity(a, b Purity) Purity {
	if a < b {
		return b
	}
	return a
}
