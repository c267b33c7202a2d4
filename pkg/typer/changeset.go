package typer

import (
	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
)

// ChangeSet picks which top-level definitions a Check call must redo.
// Everything marks all of them; Changes marks an explicit set, and
// definitions absent from the previous result, moved since it, or
// recovered in it are always redone.
type ChangeSet struct {
	All     bool
	Changed map[types.DefSym]struct{}
}

// Everything marks every definition stale.
func Everything() ChangeSet {
	return ChangeSet{All: true}
}

// Changes marks exactly the given definitions stale, plus whatever
// staleness the previous result itself implies.
func Changes(syms ...types.DefSym) ChangeSet {
	m := make(map[types.DefSym]struct{}, len(syms))
	for _, s := range syms {
		m[s] = struct{}{}
	}
	return ChangeSet{Changed: m}
}

func (cs ChangeSet) stale(sym types.DefSym, loc ast.SourceLocation, prev *ast.TypedRoot) bool {
	if cs.All || prev == nil {
		return true
	}
	if _, changed := cs.Changed[sym]; changed {
		return true
	}
	old, ok := prev.Defs[sym]
	if !ok {
		return true
	}
	// a moved definition has a new body even if its name survived
	if old.Loc != loc {
		return true
	}
	return old.Recovered
}
