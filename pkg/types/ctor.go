package types

import (
	"fmt"
	"strconv"
)

// Ctor is a type constructor constant. The set of constructors is closed:
// unification compares them by tag and static parameters only, and every
// constructor knows its own kind.
type Ctor interface {
	Kind() Kind
	isCtor()
	fmt.Stringer
}

// Primitive constructors, all of kind Star.
type (
	CtorUnit    struct{}
	CtorVoid    struct{}
	CtorBool    struct{}
	CtorChar    struct{}
	CtorFloat64 struct{}
	CtorInt32   struct{}
	CtorInt64   struct{}
	CtorBigInt  struct{}
	CtorStr     struct{}
)

// CtorArrow is the function constructor. Arity counts the parameter types
// plus the result, so the full application is
// Apply(Apply(...Apply(Arrow(n), eff), t1)..., tn).
type CtorArrow struct {
	Arity int
}

// CtorRecordRowEmpty is the empty record row.
type CtorRecordRowEmpty struct{}

// CtorRecordRowExtend extends a record row with one labeled field:
// Apply(Apply(Extend(l), fieldType), restRow).
type CtorRecordRowExtend struct {
	Label Label
}

// CtorRecord wraps a record row into a value type.
type CtorRecord struct{}

// CtorSchemaRowEmpty is the empty schema row.
type CtorSchemaRowEmpty struct{}

// CtorSchemaRowExtend extends a schema row with one labeled predicate.
type CtorSchemaRowExtend struct {
	Label Label
}

// CtorSchema wraps a schema row into a value type.
type CtorSchema struct{}

// CtorRelation and CtorLattice lift a term type into a predicate type.
type (
	CtorRelation struct{}
	CtorLattice  struct{}
)

// CtorTuple is the n-ary tuple constructor.
type CtorTuple struct {
	Arity int
}

// CtorEnum is a declared enum. Its kind comes from the declaration, e.g.
// Star -> Star for List.
type CtorEnum struct {
	Sym EnumSym
	K   Kind
}

// CtorTag is one enum case viewed as a constructor from its payload type
// to the enum type: Apply(Apply(Tag(c), payload), enumType).
type CtorTag struct {
	Case CaseSym
}

// CtorLazy is the lazy thunk constructor.
type CtorLazy struct{}

// CtorEffect is one declared algebraic effect as an atomic effect set.
type CtorEffect struct {
	Sym EffSym
}

// Effect formula constructors. Pure is the empty effect set and Univ the
// universal one; Union, Intersection and Complement are the set algebra.
type (
	CtorPure         struct{}
	CtorUniv         struct{}
	CtorUnion        struct{}
	CtorIntersection struct{}
	CtorComplement   struct{}
)

func (CtorUnit) isCtor()            {}
func (CtorVoid) isCtor()            {}
func (CtorBool) isCtor()            {}
func (CtorChar) isCtor()            {}
func (CtorFloat64) isCtor()         {}
func (CtorInt32) isCtor()           {}
func (CtorInt64) isCtor()           {}
func (CtorBigInt) isCtor()          {}
func (CtorStr) isCtor()             {}
func (CtorArrow) isCtor()           {}
func (CtorRecordRowEmpty) isCtor()  {}
func (CtorRecordRowExtend) isCtor() {}
func (CtorRecord) isCtor()          {}
func (CtorSchemaRowEmpty) isCtor()  {}
func (CtorSchemaRowExtend) isCtor() {}
func (CtorSchema) isCtor()          {}
func (CtorRelation) isCtor()        {}
func (CtorLattice) isCtor()         {}
func (CtorTuple) isCtor()           {}
func (CtorEnum) isCtor()            {}
func (CtorTag) isCtor()             {}
func (CtorLazy) isCtor()            {}
func (CtorEffect) isCtor()          {}
func (CtorPure) isCtor()            {}
func (CtorUniv) isCtor()            {}
func (CtorUnion) isCtor()           {}
func (CtorIntersection) isCtor()    {}
func (CtorComplement) isCtor()      {}

func (CtorUnit) Kind() Kind    { return Star }
func (CtorVoid) Kind() Kind    { return Star }
func (CtorBool) Kind() Kind    { return Star }
func (CtorChar) Kind() Kind    { return Star }
func (CtorFloat64) Kind() Kind { return Star }
func (CtorInt32) Kind() Kind   { return Star }
func (CtorInt64) Kind() Kind   { return Star }
func (CtorBigInt) Kind() Kind  { return Star }
func (CtorStr) Kind() Kind     { return Star }

func (c CtorArrow) Kind() Kind {
	// eff first, then the parameter types, then the result
	params := make([]Kind, c.Arity+1)
	params[0] = EffKind
	for i := 1; i <= c.Arity; i++ {
		params[i] = Star
	}
	return MkKindArrow(params, Star)
}

func (CtorRecordRowEmpty) Kind() Kind { return RecordRow }

func (CtorRecordRowExtend) Kind() Kind {
	return MkKindArrow([]Kind{Star, RecordRow}, RecordRow)
}

func (CtorRecord) Kind() Kind { return MkKindArrow([]Kind{RecordRow}, Star) }

func (CtorSchemaRowEmpty) Kind() Kind { return SchemaRow }

func (CtorSchemaRowExtend) Kind() Kind {
	return MkKindArrow([]Kind{Predicate, SchemaRow}, SchemaRow)
}

func (CtorSchema) Kind() Kind { return MkKindArrow([]Kind{SchemaRow}, Star) }

func (CtorRelation) Kind() Kind { return MkKindArrow([]Kind{Star}, Predicate) }
func (CtorLattice) Kind() Kind  { return MkKindArrow([]Kind{Star}, Predicate) }

func (c CtorTuple) Kind() Kind {
	params := make([]Kind, c.Arity)
	for i := range params {
		params[i] = Star
	}
	return MkKindArrow(params, Star)
}

func (c CtorEnum) Kind() Kind { return c.K }

func (CtorTag) Kind() Kind { return MkKindArrow([]Kind{Star, Star}, Star) }

func (CtorLazy) Kind() Kind { return MkKindArrow([]Kind{Star}, Star) }

func (CtorEffect) Kind() Kind { return EffKind }
func (CtorPure) Kind() Kind   { return EffKind }
func (CtorUniv) Kind() Kind   { return EffKind }

func (CtorUnion) Kind() Kind {
	return MkKindArrow([]Kind{EffKind, EffKind}, EffKind)
}

func (CtorIntersection) Kind() Kind {
	return MkKindArrow([]Kind{EffKind, EffKind}, EffKind)
}

func (CtorComplement) Kind() Kind { return MkKindArrow([]Kind{EffKind}, EffKind) }

func (CtorUnit) String() string    { return "Unit" }
func (CtorVoid) String() string    { return "Void" }
func (CtorBool) String() string    { return "Bool" }
func (CtorChar) String() string    { return "Char" }
func (CtorFloat64) String() string { return "Float64" }
func (CtorInt32) String() string   { return "Int32" }
func (CtorInt64) String() string   { return "Int64" }
func (CtorBigInt) String() string  { return "BigInt" }
func (CtorStr) String() string     { return "String" }

func (c CtorArrow) String() string { return "Arrow" + strconv.Itoa(c.Arity) }

func (CtorRecordRowEmpty) String() string { return "{}" }

func (c CtorRecordRowExtend) String() string {
	return "RecordRowExtend(" + string(c.Label) + ")"
}

func (CtorRecord) String() string { return "Record" }

func (CtorSchemaRowEmpty) String() string { return "#{}" }

func (c CtorSchemaRowExtend) String() string {
	return "SchemaRowExtend(" + string(c.Label) + ")"
}

func (CtorSchema) String() string   { return "Schema" }
func (CtorRelation) String() string { return "Relation" }
func (CtorLattice) String() string  { return "Lattice" }

func (c CtorTuple) String() string { return "Tuple" + strconv.Itoa(c.Arity) }

func (c CtorEnum) String() string { return c.Sym.String() }
func (c CtorTag) String() string  { return c.Case.String() }

func (CtorLazy) String() string { return "Lazy" }

func (c CtorEffect) String() string { return c.Sym.String() }

func (CtorPure) String() string         { return "Pure" }
func (CtorUniv) String() string         { return "Univ" }
func (CtorUnion) String() string        { return "Union" }
func (CtorIntersection) String() string { return "Intersection" }
func (CtorComplement) String() string   { return "Complement" }
