package sales

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a store read does not finish within the
// service's store timeout.
var ErrTimeout = errors.New("store timeout")

// ErrTransient marks store errors that are safe to retry. Storage
// implementations wrap it around connection-level failures.
var ErrTransient = errors.New("transient store error")

// ValidationError reports a malformed or out-of-range request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure of the underlying record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
