package command

import "fmt"

// Error is a declared user-facing command failure. The handler sends
// only its message to the invoker; world state is left unchanged for
// that call. Anything else that comes out of a command is treated as an
// internal error.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError declares a user-facing command failure.
func NewError(message string) *Error {
	return &Error{Message: message}
}

// Errorf declares a user-facing command failure with formatting.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
