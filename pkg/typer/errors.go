package typer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
)

// InferError annotates a checking failure with the definition and source
// location it occurred at. The underlying cause stays reachable through
// Unwrap, so callers can match on the unification error kinds.
type InferError struct {
	Inner    error
	Def      types.DefSym
	Location ast.SourceLocation
	Node     any
}

func (e *InferError) Error() string {
	if e.Location.IsKnown() {
		return fmt.Sprintf("%s: %s: %s", e.Location, e.Def, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Def, e.Inner)
}

func (e *InferError) Unwrap() error {
	return e.Inner
}

// NewInferError wraps inner with the location of the given node.
func NewInferError(inner error, def types.DefSym, node ast.SourceLocatable) *InferError {
	var loc ast.SourceLocation
	if node != nil {
		loc = node.GetSourceLocation()
	}
	return &InferError{Inner: inner, Def: def, Location: loc, Node: node}
}

// WrapInferError attaches location context to err unless it already
// carries some.
func WrapInferError(err error, def types.DefSym, node ast.SourceLocatable) error {
	var inferErr *InferError
	if errors.As(err, &inferErr) {
		return err
	}
	return NewInferError(err, def, node)
}

// GeneralizationError reports that a definition's inferred scheme is not
// as general as its declared one. The precise cause, a missing instance
// or an unprovable equality for example, is the wrapped error.
type GeneralizationError struct {
	Def      types.DefSym
	Declared types.Scheme
	Inferred types.Scheme
	Inner    error
}

func (e *GeneralizationError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("inferred signature %s does not generalize declared signature %s: %s",
		f.FormatScheme(e.Inferred), f.FormatScheme(e.Declared), e.Inner)
}

func (e *GeneralizationError) Unwrap() error { return e.Inner }

// EffectGeneralizationError reports that a definition's inferred effect
// exceeds its declared one. When the declared effect is Pure the wrapped
// error pins down whether the leak is primitive or control impurity.
type EffectGeneralizationError struct {
	Def      types.DefSym
	Declared types.Type
	Inferred types.Type
	Inner    error
}

func (e *EffectGeneralizationError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("inferred effect %s exceeds declared effect %s: %s",
		f.FormatType(e.Inferred), f.FormatType(e.Declared), e.Inner)
}

func (e *EffectGeneralizationError) Unwrap() error { return e.Inner }

// ImpureDeclaredAsPureError reports a definition declared Pure whose body
// performs a primitive effect.
type ImpureDeclaredAsPureError struct {
	Def      types.DefSym
	Inferred types.Type
}

func (e *ImpureDeclaredAsPureError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("%s is declared pure but its body has effect %s",
		e.Def, f.FormatType(e.Inferred))
}

// EffectfulDeclaredAsPureError reports a definition declared Pure whose
// body performs a control effect.
type EffectfulDeclaredAsPureError struct {
	Def      types.DefSym
	Inferred types.Type
}

func (e *EffectfulDeclaredAsPureError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("%s is declared pure but its body performs control effect %s",
		e.Def, f.FormatType(e.Inferred))
}

// MissingHandlerError reports a try-with block that handles an effect
// without implementing one of its operations.
type MissingHandlerError struct {
	Eff types.EffSym
	Op  types.OpSym
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("handler for %s does not implement operation %s", e.Eff, e.Op)
}

// DuplicateHandlerError reports two handler rules for the same operation
// in one try-with block.
type DuplicateHandlerError struct {
	Op types.OpSym
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("operation %s is handled twice", e.Op)
}

// HandlerArityError reports a handler rule whose parameter count differs
// from the operation's declaration.
type HandlerArityError struct {
	Op   types.OpSym
	Want int
	Got  int
}

func (e *HandlerArityError) Error() string {
	return fmt.Sprintf("operation %s takes %d parameters, handler binds %d", e.Op, e.Want, e.Got)
}

// MissingImplementationError reports an instance that implements neither
// a signature nor inherits its default.
type MissingImplementationError struct {
	Sig   types.SigSym
	Class types.ClassSym
	Tpe   types.Type
}

func (e *MissingImplementationError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("instance %s[%s] does not implement %s", e.Class, f.FormatType(e.Tpe), e.Sig)
}

// ExtraneousMemberError reports an instance def that matches no signature
// of the class.
type ExtraneousMemberError struct {
	Def   types.DefSym
	Class types.ClassSym
}

func (e *ExtraneousMemberError) Error() string {
	return fmt.Sprintf("%s is not a signature of class %s", e.Def, e.Class)
}

// SigMismatchError reports an instance member whose scheme is not
// equivalent to the class signature specialized at the instance type.
type SigMismatchError struct {
	Sig      types.SigSym
	Def      types.DefSym
	Expected types.Scheme
	Declared types.Scheme
	Inner    error
}

func (e *SigMismatchError) Error() string {
	f := types.NewFormatter()
	return fmt.Sprintf("%s does not match signature %s: declared %s, expected %s",
		e.Def, e.Sig, f.FormatScheme(e.Declared), f.FormatScheme(e.Expected))
}

func (e *SigMismatchError) Unwrap() error { return e.Inner }

// InferenceErrors aggregates every diagnostic of one checker run. The
// run still produces a typed tree; failed definitions appear in it as
// recovered stubs.
type InferenceErrors struct {
	Errors []error
}

func (e *InferenceErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d type errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual diagnostics to errors.Is and errors.As.
func (e *InferenceErrors) Unwrap() []error { return e.Errors }

// Len returns the number of diagnostics.
func (e *InferenceErrors) Len() int { return len(e.Errors) }

// sortDiagnostics orders diagnostics by location, then by definition, so
// batch output is deterministic regardless of worker interleaving.
func sortDiagnostics(diags []error) {
	key := func(err error) (ast.SourceLocation, string) {
		var inferErr *InferError
		if errors.As(err, &inferErr) {
			return inferErr.Location, inferErr.Def.String()
		}
		return ast.SourceLocation{}, err.Error()
	}
	sort.SliceStable(diags, func(i, j int) bool {
		li, ki := key(diags[i])
		lj, kj := key(diags[j])
		if li.Filename != lj.Filename {
			return li.Filename < lj.Filename
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		if li.Column != lj.Column {
			return li.Column < lj.Column
		}
		return ki < kj
	})
}
