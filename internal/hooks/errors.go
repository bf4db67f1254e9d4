package hooks

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHookName is returned when a hook name is empty or contains
	// characters outside letters, digits, '_', '.', '/' and '-'.
	ErrInvalidHookName = errors.New("invalid hook name")

	// ErrNilCallback is returned when a nil callback is registered.
	ErrNilCallback = errors.New("callback cannot be nil")
)

// HandlerError wraps an error returned by a callback during dispatch.
type HandlerError struct {
	// Hook is the hook name being dispatched.
	Hook string

	// Kind is Action or Filter.
	Kind Kind

	// Index is the position of the failing handler in the dispatch order.
	Index int

	// Priority is the failing handler's priority.
	Priority int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s %q handler %d (priority %d): %v", e.Kind, e.Hook, e.Index, e.Priority, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
