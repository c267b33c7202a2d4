package zhegalkin

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes polynomial operations for one checker run. The same
// sub-formula pairs recur across many call sites, and the polynomials
// are content-addressed by their canonical keys, so results can be
// shared safely between workers. The cache is purely a performance
// layer: a nil *Cache computes everything directly and every method
// returns identical results either way.
type Cache struct {
	xor   *lru.Cache[string, Expr]
	and   *lru.Cache[string, Expr]
	unify *lru.Cache[string, unifyResult]
}

type unifyResult struct {
	subst Subst
	err   error
}

// NewCache creates a cache bounded to size entries per operation. A size
// of zero or less disables caching by returning nil.
func NewCache(size int) *Cache {
	if size <= 0 {
		return nil
	}
	xor, err := lru.New[string, Expr](size)
	if err != nil {
		return nil
	}
	and, err := lru.New[string, Expr](size)
	if err != nil {
		return nil
	}
	unify, err := lru.New[string, unifyResult](size)
	if err != nil {
		return nil
	}
	return &Cache{xor: xor, and: and, unify: unify}
}

// Xor returns a ⊕ b, memoized.
func (c *Cache) Xor(a, b Expr) Expr {
	if c == nil {
		return Xor(a, b)
	}
	key := a.Key() + "^" + b.Key()
	if v, ok := c.xor.Get(key); ok {
		return v
	}
	v := Xor(a, b)
	c.xor.Add(key, v)
	return v
}

// And returns a ∧ b, memoized.
func (c *Cache) And(a, b Expr) Expr {
	if c == nil {
		return And(a, b)
	}
	key := a.Key() + "&" + b.Key()
	if v, ok := c.and.Get(key); ok {
		return v
	}
	v := And(a, b)
	c.and.Add(key, v)
	return v
}

func (c *Cache) lookupUnify(query Expr) (unifyResult, bool) {
	if c == nil {
		return unifyResult{}, false
	}
	return c.unify.Get(query.Key())
}

func (c *Cache) storeUnify(query Expr, res unifyResult) {
	if c == nil {
		return
	}
	c.unify.Add(query.Key(), res)
}
