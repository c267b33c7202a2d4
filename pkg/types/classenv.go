package types

// Instance is one declared instance of a class: the instance type and the
// constraints the instance itself demands. Instance variables are generic
// and freshened before each match.
type Instance struct {
	Tpe      Type
	TConstrs []ClassConstraint
}

// ClassContext carries everything entailment needs to know about one
// class: its direct super classes and its declared instances.
type ClassContext struct {
	Super     []ClassSym
	Instances []Instance
}

// ClassEnv maps each class to its context. Built once per compilation
// from the resolved class and instance declarations; read-only during
// inference.
type ClassEnv map[ClassSym]*ClassContext

// SuperClasses returns the transitive super classes of sym, sym excluded.
func (ce ClassEnv) SuperClasses(sym ClassSym) []ClassSym {
	var out []ClassSym
	seen := map[ClassSym]struct{}{sym: {}}
	work := []ClassSym{sym}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		ctx, ok := ce[cur]
		if !ok {
			continue
		}
		for _, super := range ctx.Super {
			if _, dup := seen[super]; dup {
				continue
			}
			seen[super] = struct{}{}
			out = append(out, super)
			work = append(work, super)
		}
	}
	return out
}
