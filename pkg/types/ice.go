package types

import "fmt"

// InternalError reports a violated invariant: either an earlier compiler
// phase handed this core malformed input, or the core itself is wrong.
// It travels on the panic channel and is never part of the user-facing
// type error results.
type InternalError struct {
	Msg string
}

func (e InternalError) Error() string {
	return "internal error: " + e.Msg
}

// ICE panics with an InternalError.
func ICE(format string, args ...any) {
	panic(InternalError{Msg: fmt.Sprintf(format, args...)})
}
