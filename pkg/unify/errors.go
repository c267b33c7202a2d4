package unify

import (
	"fmt"

	"github.com/skeinlang/skein/pkg/types"
)

// The unifier reports failures as a closed set of error types. They carry
// terms only; the driver attaches source locations at the declaration
// boundary. Messages keep the expected/actual ordering of the original
// call even though unification itself is symmetric.

// OccursCheckError reports an infinite type: the variable occurs inside
// the term it would be bound to.
type OccursCheckError struct {
	Var types.Var
	In  types.Type
}

func (e OccursCheckError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("occurs check failed: %s occurs in %s",
		f.FormatType(e.Var), f.FormatType(e.In))
}

// RigidityError reports an attempt to bind a rigid variable to a term
// other than itself.
type RigidityError struct {
	Var types.Var
	To  types.Type
}

func (e RigidityError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("rigid type variable %s cannot be unified with %s",
		f.FormatType(e.Var), f.FormatType(e.To))
}

// MismatchError reports a structural disagreement: different constructors
// or arities. Expected and Actual are the subterms that clashed; the Full
// pair preserves the enclosing types for context.
type MismatchError struct {
	Expected     types.Type
	Actual       types.Type
	ExpectedFull types.Type
	ActualFull   types.Type
}

func (e MismatchError) Error() string {
	f := types.NewFormatter()
	msg := fmt.Sprintf("type mismatch: expected %s but found %s",
		f.FormatType(e.Expected), f.FormatType(e.Actual))
	if e.ExpectedFull != nil && !types.TypeEq(e.ExpectedFull, e.Expected) {
		msg += fmt.Sprintf(" (in %s versus %s)",
			f.FormatType(e.ExpectedFull), f.FormatType(e.ActualFull))
	}
	return msg
}

// RowFieldMissingError reports that a closed row lacks a required label.
type RowFieldMissingError struct {
	Label types.Label
	Row   types.Type
}

func (e RowFieldMissingError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("row %s has no field %s", f.FormatType(e.Row), e.Label)
}

// BoolUnifyError reports that the effect equation F1 = F2 has no
// solution.
type BoolUnifyError struct {
	F1 types.Type
	F2 types.Type
}

func (e BoolUnifyError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("effect %s cannot equal %s for any binding of its variables",
		f.FormatType(e.F1), f.FormatType(e.F2))
}

// IrreducibleAssocTypeError reports that no instance equation matches the
// associated type application.
type IrreducibleAssocTypeError struct {
	Sym types.AssocSym
	Arg types.Type
}

func (e IrreducibleAssocTypeError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("associated type %s[%s] does not reduce: no matching instance",
		e.Sym, f.FormatType(e.Arg))
}

// MissingInstanceError reports a class obligation left unresolved after
// unification: no instance entails it.
type MissingInstanceError struct {
	Constraint types.ClassConstraint
}

func (e MissingInstanceError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("no instance of %s for %s",
		e.Constraint.Class, f.FormatType(e.Constraint.Arg))
}
