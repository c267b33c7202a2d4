package types

import "sync/atomic"

// Fresh mints globally unique variable ids. One Fresh is shared by every
// worker in a checker run; two workers must never mint the same id, or
// unrelated variables would silently conflate.
type Fresh struct {
	counter atomic.Int64
}

// NewFresh creates a generator starting at id 1.
func NewFresh() *Fresh {
	return &Fresh{}
}

// FreshID mints the next variable id.
func (f *Fresh) FreshID() VarID {
	return VarID(f.counter.Add(1))
}

// FreshVar mints a flexible variable of kind k.
func (f *Fresh) FreshVar(k Kind) Var {
	return Var{ID: f.FreshID(), K: k}
}

// FreshRigidVar mints a rigid variable of kind k. Declared quantifiers
// are rigid; resolvers and test fixtures mint them this way.
func (f *Fresh) FreshRigidVar(k Kind) Var {
	return Var{ID: f.FreshID(), K: k, Rigid: true}
}

// Reserve ensures future ids are strictly greater than id, keeping ids
// minted during checking disjoint from those the input already uses.
func (f *Fresh) Reserve(id VarID) {
	for {
		cur := f.counter.Load()
		if cur >= int64(id) {
			return
		}
		if f.counter.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}
