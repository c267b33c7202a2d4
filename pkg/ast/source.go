// Package ast defines the checker's input and output trees: the kinded,
// name-resolved program the caller supplies, and the typed program the
// checker produces, every expression annotated with its type and effect.
package ast

import "fmt"

// SourceLocation identifies a source range for diagnostics. It is a
// comparable value: two runs seeing the same location for a declaration
// treat that declaration as unchanged.
type SourceLocation struct {
	Filename  string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

func (l SourceLocation) String() string {
	if l.Filename == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Column)
}

// IsKnown reports whether the location points at real source.
func (l SourceLocation) IsKnown() bool {
	return l.Filename != ""
}

// Loc builds a single-point location, the common case in tests and
// synthesized programs.
func Loc(filename string, line, column int) SourceLocation {
	return SourceLocation{
		Filename:  filename,
		Line:      line,
		Column:    column,
		EndLine:   line,
		EndColumn: column,
	}
}

// SourceLocatable is anything carrying a source location.
type SourceLocatable interface {
	GetSourceLocation() SourceLocation
}
