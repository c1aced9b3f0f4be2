// Package assert provides the engine's precondition and unreachable checks.
//
// Every check here is fatal: a failing precondition means a client broke an
// IR invariant, and an unreachable hit means a switch over a closed type
// missed a case. Neither is recoverable mid-pass, so both panic with a
// github.com/pkg/errors-wrapped value carrying a stack trace.
package assert

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fatal is the panic value raised by Check and Unreachable.
type Fatal struct {
	err error
}

func (f *Fatal) Error() string { return f.err.Error() }
func (f *Fatal) Unwrap() error { return f.err }

// Check panics with msg (formatted with args) if cond is false.
func Check(cond bool, msg string, args ...interface{}) {
	if cond {
		return
	}
	panic(&Fatal{err: errors.Errorf(msg, args...)})
}

// Unreachable panics unconditionally; call it from the default branch of a
// switch over a value that is supposed to be exhaustively handled.
func Unreachable(msg string, args ...interface{}) {
	panic(&Fatal{err: errors.Wrap(fmt.Errorf(msg, args...), "unreachable")})
}
