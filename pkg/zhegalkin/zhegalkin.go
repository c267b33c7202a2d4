package zhegalkin

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Var identifies a Boolean variable by the type-variable id it mirrors.
// Flexible variables are eliminable by SVE; rigid ones are opaque
// symbolic constants that solving may never bind.
type Var struct {
	ID       int64
	Flexible bool
}

func (v Var) String() string {
	if v.Flexible {
		return "?" + strconv.FormatInt(v.ID, 10)
	}
	return "!" + strconv.FormatInt(v.ID, 10)
}

// Term is Cst ∧ v1 ∧ … ∧ vn with distinct variables sorted by id. The
// constant is never empty; an empty constant annihilates the term.
type Term struct {
	Cst  CofiniteSet
	Vars []Var
}

func (t Term) String() string {
	parts := make([]string, 0, len(t.Vars)+1)
	if !t.Cst.IsUniv() || len(t.Vars) == 0 {
		parts = append(parts, t.Cst.String())
	}
	for _, v := range t.Vars {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "*")
}

// Expr is the Zhegalkin polynomial Cst ⊕ t1 ⊕ … ⊕ tn. Terms are sorted
// by their variable lists and no two terms share one, so every Boolean
// function over the open universe has exactly one Expr.
type Expr struct {
	Cst   CofiniteSet
	Terms []Term
}

// Zero and One are the constant polynomials for the empty and universal
// sets.
var (
	Zero = Expr{Cst: EmptySet}
	One  = Expr{Cst: UnivSet}
)

// MkCst lifts a constant set into a polynomial.
func MkCst(s CofiniteSet) Expr {
	return Expr{Cst: s}
}

// MkVar lifts one variable into a polynomial.
func MkVar(v Var) Expr {
	return Expr{Cst: EmptySet, Terms: []Term{{Cst: UnivSet, Vars: []Var{v}}}}
}

// IsZero reports whether the polynomial is the empty set constant. By
// canonicity this is the only representation of the always-empty
// function.
func (e Expr) IsZero() bool {
	return e.Cst.IsEmpty() && len(e.Terms) == 0
}

// IsOne reports whether the polynomial is the universal set constant.
func (e Expr) IsOne() bool {
	return e.Cst.IsUniv() && len(e.Terms) == 0
}

// IsVar reports whether the polynomial is exactly one bare variable.
func (e Expr) IsVar() (Var, bool) {
	if e.Cst.IsEmpty() && len(e.Terms) == 1 &&
		e.Terms[0].Cst.IsUniv() && len(e.Terms[0].Vars) == 1 {
		return e.Terms[0].Vars[0], true
	}
	return Var{}, false
}

// FreeVars returns the distinct variables of e sorted by id. With
// flexibleOnly set, rigid variables are skipped.
func (e Expr) FreeVars(flexibleOnly bool) []Var {
	seen := make(map[int64]Var)
	for _, t := range e.Terms {
		for _, v := range t.Vars {
			if flexibleOnly && !v.Flexible {
				continue
			}
			seen[v.ID] = v
		}
	}
	out := make([]Var, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HasVar reports whether v occurs in any term of e.
func (e Expr) HasVar(v Var) bool {
	for _, t := range e.Terms {
		for _, x := range t.Vars {
			if x.ID == v.ID {
				return true
			}
		}
	}
	return false
}

// Eval evaluates the polynomial under an assignment of sets to variables:
// terms intersect, the polynomial xors.
func (e Expr) Eval(assign func(Var) CofiniteSet) CofiniteSet {
	out := e.Cst
	for _, t := range e.Terms {
		v := t.Cst
		for _, x := range t.Vars {
			v = v.Inter(assign(x))
		}
		out = out.Xor(v)
	}
	return out
}

// Key is the canonical cache key of the polynomial.
func (e Expr) Key() string {
	var b strings.Builder
	b.WriteString(e.Cst.String())
	for _, t := range e.Terms {
		b.WriteString("+")
		b.WriteString(t.Cst.String())
		for _, v := range t.Vars {
			b.WriteString("*")
			b.WriteString(strconv.FormatInt(v.ID, 10))
		}
	}
	return b.String()
}

func (e Expr) String() string {
	if len(e.Terms) == 0 {
		return e.Cst.String()
	}
	parts := make([]string, 0, len(e.Terms)+1)
	if !e.Cst.IsEmpty() {
		parts = append(parts, e.Cst.String())
	}
	for _, t := range e.Terms {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " xor ")
}

// CsetEq reports equality of two constant sets.
func CsetEq(a, b CofiniteSet) bool {
	return a.Compl == b.Compl && slices.Equal(a.Elems, b.Elems)
}

// ExprEq reports structural equality, which by canonicity coincides with
// semantic equality over the open universe.
func ExprEq(a, b Expr) bool {
	if !CsetEq(a.Cst, b.Cst) || len(a.Terms) != len(b.Terms) {
		return false
	}
	for i := range a.Terms {
		if !CsetEq(a.Terms[i].Cst, b.Terms[i].Cst) ||
			!slices.Equal(a.Terms[i].Vars, b.Terms[i].Vars) {
			return false
		}
	}
	return true
}

// accum collects xor-summed terms keyed by their variable lists and
// produces a canonical Expr.
type accum struct {
	cst   CofiniteSet
	terms map[string]Term
}

func newAccum() *accum {
	return &accum{cst: EmptySet, terms: make(map[string]Term)}
}

func (a *accum) addCst(s CofiniteSet) {
	a.cst = a.cst.Xor(s)
}

func (a *accum) addTerm(t Term) {
	if t.Cst.IsEmpty() {
		return
	}
	if len(t.Vars) == 0 {
		a.addCst(t.Cst)
		return
	}
	key := varsKey(t.Vars)
	if prev, ok := a.terms[key]; ok {
		merged := prev.Cst.Xor(t.Cst)
		if merged.IsEmpty() {
			delete(a.terms, key)
		} else {
			a.terms[key] = Term{Cst: merged, Vars: prev.Vars}
		}
		return
	}
	a.terms[key] = t
}

func (a *accum) expr() Expr {
	if len(a.terms) == 0 {
		return Expr{Cst: a.cst}
	}
	terms := make([]Term, 0, len(a.terms))
	for _, t := range a.terms {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		return varsLess(terms[i].Vars, terms[j].Vars)
	})
	return Expr{Cst: a.cst, Terms: terms}
}

func varsKey(vs []Var) string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatInt(v.ID, 10))
	}
	return b.String()
}

func varsLess(a, b []Var) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].ID != b[i].ID {
			return a[i].ID < b[i].ID
		}
	}
	return len(a) < len(b)
}

// unionVars merges two sorted distinct variable lists; shared variables
// appear once, which is what makes the polynomial multilinear.
func unionVars(a, b []Var) []Var {
	out := make([]Var, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID < b[j].ID:
			out = append(out, a[i])
			i++
		case a[i].ID > b[j].ID:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Xor returns a ⊕ b in canonical form.
func Xor(a, b Expr) Expr {
	acc := newAccum()
	acc.addCst(a.Cst)
	acc.addCst(b.Cst)
	for _, t := range a.Terms {
		acc.addTerm(t)
	}
	for _, t := range b.Terms {
		acc.addTerm(t)
	}
	return acc.expr()
}

// And returns a ∧ b in canonical form by full distribution.
func And(a, b Expr) Expr {
	acc := newAccum()
	acc.addCst(a.Cst.Inter(b.Cst))
	for _, s := range b.Terms {
		acc.addTerm(Term{Cst: a.Cst.Inter(s.Cst), Vars: s.Vars})
	}
	for _, t := range a.Terms {
		acc.addTerm(Term{Cst: t.Cst.Inter(b.Cst), Vars: t.Vars})
		for _, s := range b.Terms {
			acc.addTerm(Term{Cst: t.Cst.Inter(s.Cst), Vars: unionVars(t.Vars, s.Vars)})
		}
	}
	return acc.expr()
}

// Or returns a ∨ b as a ⊕ b ⊕ (a ∧ b).
func Or(a, b Expr) Expr {
	return Xor(Xor(a, b), And(a, b))
}

// Not returns the complement 1 ⊕ a.
func Not(a Expr) Expr {
	return Xor(One, a)
}

// MapVars rebuilds e with every variable replaced by f's polynomial.
func (e Expr) MapVars(f func(Var) Expr) Expr {
	out := Expr{Cst: e.Cst}
	for _, t := range e.Terms {
		term := MkCst(t.Cst)
		for _, v := range t.Vars {
			term = And(term, f(v))
		}
		out = Xor(out, term)
	}
	return out
}

// SubstVar replaces one variable with a polynomial.
func (e Expr) SubstVar(x Var, repl Expr) Expr {
	return e.MapVars(func(v Var) Expr {
		if v.ID == x.ID {
			return repl
		}
		return MkVar(v)
	})
}
