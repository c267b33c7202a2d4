package zhegalkin

import (
	"fmt"
	"sort"
	"strings"
)

// Subst maps flexible variable ids to polynomials. Substitutions returned
// by Unify are read-only to callers.
type Subst map[int64]Expr

// Apply rewrites every bound variable in e.
func (s Subst) Apply(e Expr) Expr {
	if len(s) == 0 {
		return e
	}
	return e.MapVars(func(v Var) Expr {
		if repl, ok := s[v.ID]; ok {
			return repl
		}
		return MkVar(v)
	})
}

// Compose returns the substitution applying other first and then s: s is
// applied to other's codomain, and s wins on conflicting bindings.
func (s Subst) Compose(other Subst) Subst {
	if len(s) == 0 {
		return other
	}
	if len(other) == 0 {
		return s
	}
	out := make(Subst, len(s)+len(other))
	for id, e := range other {
		out[id] = s.Apply(e)
	}
	for id, e := range s {
		out[id] = e
	}
	return out
}

func (s Subst) String() string {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("?%d -> %s", id, s[id]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// NoSolutionError reports that the Boolean equation has no solution: after
// eliminating every flexible variable a non-zero residue remains.
type NoSolutionError struct {
	Residual Expr
}

func (e NoSolutionError) Error() string {
	return fmt.Sprintf("boolean equation has no solution: residue %s", e.Residual)
}

// Unify solves e1 = e2 for the flexible variables of both sides and
// returns a most general unifier. Unification is the equation
// e1 ⊕ e2 = 0, solved by successive variable elimination. Re-unifying an
// already unified pair yields the empty substitution.
func Unify(e1, e2 Expr, c *Cache) (Subst, error) {
	// x = t with x not occurring in t is already a solved form.
	if x, ok := e1.IsVar(); ok && x.Flexible && !e2.HasVar(x) {
		return Subst{x.ID: e2}, nil
	}
	if x, ok := e2.IsVar(); ok && x.Flexible && !e1.HasVar(x) {
		return Subst{x.ID: e1}, nil
	}
	query := c.Xor(e1, e2)
	if query.IsZero() {
		return nil, nil
	}
	if cached, ok := c.lookupUnify(query); ok {
		return cached.subst, cached.err
	}
	subst, err := sve(query, query.FreeVars(true), c)
	c.storeUnify(query, unifyResult{subst: subst, err: err})
	return subst, err
}

// sve is successive variable elimination. For the equation f = 0 and a
// variable x, let t0 = f[x:=0] and t1 = f[x:=1]. Boole's condition says
// f = 0 is solvable iff t0 ∧ t1 = 0 is; given a solution se of the
// latter, x ↦ se(t0) ∨ (x ∧ ¬se(t1)) solves the former. With no
// variables left, only the zero polynomial is solvable: rigid variables
// and constants are universally quantified, and by canonicity the only
// polynomial that vanishes everywhere is Zero itself.
func sve(f Expr, fvs []Var, c *Cache) (Subst, error) {
	if f.IsZero() {
		return nil, nil
	}
	if len(fvs) == 0 {
		return nil, NoSolutionError{Residual: f}
	}
	x := fvs[0]
	t0 := f.SubstVar(x, Zero)
	t1 := f.SubstVar(x, One)
	se, err := sve(c.And(t0, t1), fvs[1:], c)
	if err != nil {
		return nil, err
	}
	st0 := se.Apply(t0)
	st1 := se.Apply(t1)
	binding := Or(st0, And(MkVar(x), Not(st1)))
	if v, ok := binding.IsVar(); ok && v.ID == x.ID {
		// x maps to itself; leave it free
		return se, nil
	}
	st := Subst{x.ID: binding}
	return st.Compose(se), nil
}
