// Package zhegalkin canonicalizes effect formulas as Zhegalkin
// polynomials (multilinear XOR-of-AND forms over cofinite constant sets)
// and solves Boolean unification over them by successive variable
// elimination. Every Boolean function has exactly one polynomial, so
// semantic equality is structural equality here.
package zhegalkin

import (
	"sort"
	"strconv"
	"strings"
)

// CofiniteSet is a finite or cofinite set of effect-symbol indices over
// an open universe. Elems is sorted and duplicate-free; when Compl is set
// the value denotes the complement of Elems. The representation is
// canonical: two CofiniteSets denote the same set iff they are equal.
type CofiniteSet struct {
	Compl bool
	Elems []int32
}

// Empty and Univ are the bottom and top sets.
var (
	EmptySet = CofiniteSet{}
	UnivSet  = CofiniteSet{Compl: true}
)

// FiniteSet builds the finite set of the given indices.
func FiniteSet(elems ...int32) CofiniteSet {
	return CofiniteSet{Elems: normElems(elems)}
}

func normElems(elems []int32) []int32 {
	if len(elems) == 0 {
		return nil
	}
	out := make([]int32, len(elems))
	copy(out, elems)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	w := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[w-1] {
			out[w] = out[i]
			w++
		}
	}
	return out[:w]
}

// IsEmpty reports whether the set is the empty set.
func (s CofiniteSet) IsEmpty() bool {
	return !s.Compl && len(s.Elems) == 0
}

// IsUniv reports whether the set is the universal set.
func (s CofiniteSet) IsUniv() bool {
	return s.Compl && len(s.Elems) == 0
}

// Contains reports membership of one index.
func (s CofiniteSet) Contains(i int32) bool {
	pos := sort.Search(len(s.Elems), func(k int) bool { return s.Elems[k] >= i })
	in := pos < len(s.Elems) && s.Elems[pos] == i
	if s.Compl {
		return !in
	}
	return in
}

// Complement flips the set.
func (s CofiniteSet) Complement() CofiniteSet {
	return CofiniteSet{Compl: !s.Compl, Elems: s.Elems}
}

// Union returns s ∪ o.
func (s CofiniteSet) Union(o CofiniteSet) CofiniteSet {
	switch {
	case !s.Compl && !o.Compl:
		return CofiniteSet{Elems: mergeUnion(s.Elems, o.Elems)}
	case !s.Compl && o.Compl:
		// fin ∪ co(B) = co(B - fin)
		return CofiniteSet{Compl: true, Elems: mergeDiff(o.Elems, s.Elems)}
	case s.Compl && !o.Compl:
		return CofiniteSet{Compl: true, Elems: mergeDiff(s.Elems, o.Elems)}
	default:
		// co(A) ∪ co(B) = co(A ∩ B)
		return CofiniteSet{Compl: true, Elems: mergeInter(s.Elems, o.Elems)}
	}
}

// Inter returns s ∩ o.
func (s CofiniteSet) Inter(o CofiniteSet) CofiniteSet {
	switch {
	case !s.Compl && !o.Compl:
		return CofiniteSet{Elems: mergeInter(s.Elems, o.Elems)}
	case !s.Compl && o.Compl:
		return CofiniteSet{Elems: mergeDiff(s.Elems, o.Elems)}
	case s.Compl && !o.Compl:
		return CofiniteSet{Elems: mergeDiff(o.Elems, s.Elems)}
	default:
		// co(A) ∩ co(B) = co(A ∪ B)
		return CofiniteSet{Compl: true, Elems: mergeUnion(s.Elems, o.Elems)}
	}
}

// Xor returns the symmetric difference of s and o, the ⊕ of the Boolean
// algebra of sets.
func (s CofiniteSet) Xor(o CofiniteSet) CofiniteSet {
	// (s ∪ o) ∩ ~(s ∩ o)
	return s.Union(o).Inter(s.Inter(o).Complement())
}

func (s CofiniteSet) String() string {
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = strconv.Itoa(int(e))
	}
	body := "{" + strings.Join(parts, ",") + "}"
	if s.Compl {
		return "~" + body
	}
	return body
}

func mergeUnion(a, b []int32) []int32 {
	out := make([]int32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
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
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeInter(a, b []int32) []int32 {
	var out []int32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// mergeDiff returns a - b.
func mergeDiff(a, b []int32) []int32 {
	var out []int32
	i, j := 0, 0
	for i < len(a) {
		switch {
		case j >= len(b) || a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			j++
		default:
			i++
			j++
		}
	}
	return out
}
