package types

import "sort"

// VarSet is a set of type variables keyed by identity.
type VarSet map[VarID]Var

// NewVarSet builds a set from the given variables.
func NewVarSet(vs ...Var) VarSet {
	s := make(VarSet, len(vs))
	for _, v := range vs {
		s[v.ID] = v
	}
	return s
}

// Add inserts v.
func (s VarSet) Add(v Var) { s[v.ID] = v }

// Contains reports membership by id.
func (s VarSet) Contains(id VarID) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding both operands' members.
func (s VarSet) Union(o VarSet) VarSet {
	out := make(VarSet, len(s)+len(o))
	for id, v := range s {
		out[id] = v
	}
	for id, v := range o {
		out[id] = v
	}
	return out
}

// Diff returns the members of s not in o.
func (s VarSet) Diff(o VarSet) VarSet {
	out := make(VarSet)
	for id, v := range s {
		if !o.Contains(id) {
			out[id] = v
		}
	}
	return out
}

// Sorted returns the members in ascending id order, for deterministic
// iteration.
func (s VarSet) Sorted() []Var {
	out := make([]Var, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FreeVars collects the free type variables of t. Aliases contribute the
// variables of their expansion, which is what unification sees.
func FreeVars(t Type) VarSet {
	s := make(VarSet)
	freeVarsInto(t, s)
	return s
}

func freeVarsInto(t Type, s VarSet) {
	switch x := t.(type) {
	case Var:
		s.Add(x)
	case Cst:
	case *Apply:
		freeVarsInto(x.Fn, s)
		freeVarsInto(x.Arg, s)
	case *Alias:
		freeVarsInto(x.Tpe, s)
	case *AssocType:
		freeVarsInto(x.Arg, s)
	default:
		ICE("unknown type node %T", t)
	}
}

// FreeVarsAll collects the free variables of several types at once.
func FreeVarsAll(ts ...Type) VarSet {
	s := make(VarSet)
	for _, t := range ts {
		freeVarsInto(t, s)
	}
	return s
}
