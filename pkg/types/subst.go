package types

import (
	"fmt"
	"sort"
	"strings"
)

// Substitution maps variable ids to types. Application is a single
// structural pass: a well-formed substitution is idempotent, so one pass
// reaches the fixpoint.
type Substitution map[VarID]Type

// NewSubstitution creates an empty substitution.
func NewSubstitution() Substitution {
	return make(Substitution)
}

// Singleton creates a substitution binding exactly one variable.
func Singleton(id VarID, t Type) Substitution {
	return Substitution{id: t}
}

// IsEmpty reports whether the substitution binds nothing.
func (s Substitution) IsEmpty() bool { return len(s) == 0 }

// Apply rewrites every bound variable occurring in t.
func (s Substitution) Apply(t Type) Type {
	if len(s) == 0 {
		return t
	}
	return s.apply(t)
}

func (s Substitution) apply(t Type) Type {
	switch x := t.(type) {
	case Var:
		if bound, ok := s[x.ID]; ok {
			return bound
		}
		return x
	case Cst:
		return x
	case *Apply:
		fn := s.apply(x.Fn)
		arg := s.apply(x.Arg)
		if fn == x.Fn && arg == x.Arg {
			return x
		}
		return MkApply(fn, arg)
	case *Alias:
		args := make([]Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = s.apply(a)
		}
		return &Alias{Sym: x.Sym, Args: args, Tpe: s.apply(x.Tpe)}
	case *AssocType:
		arg := s.apply(x.Arg)
		if arg == x.Arg {
			return x
		}
		return &AssocType{Sym: x.Sym, Arg: arg, K: x.K}
	default:
		ICE("unknown type node %T", t)
		return nil
	}
}

// ApplyAll rewrites a slice of types.
func (s Substitution) ApplyAll(ts []Type) []Type {
	if len(s) == 0 || len(ts) == 0 {
		return ts
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = s.apply(t)
	}
	return out
}

// ApplyClassConstraints rewrites the argument of each constraint.
func (s Substitution) ApplyClassConstraints(cs []ClassConstraint) []ClassConstraint {
	if len(s) == 0 || len(cs) == 0 {
		return cs
	}
	out := make([]ClassConstraint, len(cs))
	for i, c := range cs {
		out[i] = ClassConstraint{Class: c.Class, Arg: s.apply(c.Arg)}
	}
	return out
}

// ApplyEqualityConstraints rewrites both sides of each constraint.
func (s Substitution) ApplyEqualityConstraints(cs []EqualityConstraint) []EqualityConstraint {
	if len(s) == 0 || len(cs) == 0 {
		return cs
	}
	out := make([]EqualityConstraint, len(cs))
	for i, c := range cs {
		out[i] = EqualityConstraint{
			Assoc:  c.Assoc,
			Arg:    s.apply(c.Arg),
			Result: s.apply(c.Result),
		}
	}
	return out
}

// Compose returns the substitution equivalent to applying other first and
// then s, written s @@ other. s is applied to other's codomain so a
// single application of the result suffices, and s wins on conflicting
// bindings.
func (s Substitution) Compose(other Substitution) Substitution {
	if len(s) == 0 {
		return other
	}
	if len(other) == 0 {
		return s
	}
	out := make(Substitution, len(s)+len(other))
	for id, t := range other {
		out[id] = s.Apply(t)
	}
	for id, t := range s {
		out[id] = t
	}
	return out
}

// Bind adds one binding in place and returns the substitution.
func (s Substitution) Bind(id VarID, t Type) Substitution {
	s[id] = t
	return s
}

// Get looks up the binding for id.
func (s Substitution) Get(id VarID) (Type, bool) {
	t, ok := s[id]
	return t, ok
}

func (s Substitution) String() string {
	ids := make([]VarID, 0, len(s))
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
