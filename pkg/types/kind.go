package types

import "fmt"

// Kind classifies type-level terms. Every Type has exactly one Kind,
// computed structurally at construction time, so ill-formed applications
// are caught before unification ever sees them.
type Kind interface {
	isKind()
	fmt.Stringer
}

// KStar is the kind of inhabited value types.
type KStar struct{}

// KBool is the kind of two-valued Boolean formulas.
type KBool struct{}

// KEff is the kind of effect formulas.
type KEff struct{}

// KRecordRow is the kind of record rows.
type KRecordRow struct{}

// KSchemaRow is the kind of schema rows.
type KSchemaRow struct{}

// KPredicate is the kind of Datalog predicate types.
type KPredicate struct{}

// KArrow is the kind of type constructors. Arrows associate to the right.
type KArrow struct {
	L Kind
	R Kind
}

// KVar is a kind variable left unresolved by kind inference.
type KVar struct {
	ID int
}

func (KStar) isKind()      {}
func (KBool) isKind()      {}
func (KEff) isKind()       {}
func (KRecordRow) isKind() {}
func (KSchemaRow) isKind() {}
func (KPredicate) isKind() {}
func (KArrow) isKind()     {}
func (KVar) isKind()       {}

func (KStar) String() string      { return "Type" }
func (KBool) String() string      { return "Bool" }
func (KEff) String() string       { return "Eff" }
func (KRecordRow) String() string { return "RecordRow" }
func (KSchemaRow) String() string { return "SchemaRow" }
func (KPredicate) String() string { return "Predicate" }

func (k KArrow) String() string {
	if _, ok := k.L.(KArrow); ok {
		return fmt.Sprintf("(%s) -> %s", k.L, k.R)
	}
	return fmt.Sprintf("%s -> %s", k.L, k.R)
}

func (k KVar) String() string {
	return fmt.Sprintf("k%d", k.ID)
}

// Singleton kinds. All variants are comparable values, so kinds compare
// with ==.
var (
	Star      Kind = KStar{}
	BoolKind  Kind = KBool{}
	EffKind   Kind = KEff{}
	RecordRow Kind = KRecordRow{}
	SchemaRow Kind = KSchemaRow{}
	Predicate Kind = KPredicate{}
)

// MkKindArrow builds the right-nested arrow kind params... -> ret.
func MkKindArrow(params []Kind, ret Kind) Kind {
	k := ret
	for i := len(params) - 1; i >= 0; i-- {
		k = KArrow{L: params[i], R: k}
	}
	return k
}

// KindArgs splits an arrow kind into its parameter list and final result.
func KindArgs(k Kind) ([]Kind, Kind) {
	var params []Kind
	for {
		ka, ok := k.(KArrow)
		if !ok {
			return params, k
		}
		params = append(params, ka.L)
		k = ka.R
	}
}

// IsEffKind reports whether k is the kind of effect formulas. Bool-kinded
// formulas share the Boolean unifier with effects.
func IsEffKind(k Kind) bool {
	return k == EffKind || k == BoolKind
}

// IsRowKind reports whether k is a record or schema row kind.
func IsRowKind(k Kind) bool {
	return k == RecordRow || k == SchemaRow
}
