// Package failure classifies errors surfaced by the project lifecycle operations.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the failure class an error belongs to.
type Kind string

const (
	KindAuth       Kind = "AUTH_FAILURE"
	KindRead       Kind = "READ_FAILURE"
	KindWrite      Kind = "WRITE_FAILURE"
	KindExport     Kind = "EXPORT_FAILURE"
	KindValidation Kind = "VALIDATION_FAILURE"
	KindUnknown    Kind = "UNKNOWN"
)

// ErrValidation is the root of every validation sentinel. It is returned
// before any store I/O is attempted.
var ErrValidation = errors.New("validation failed")

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Read wraps err as a ReadFailure. A nil err stays nil.
func Read(op string, err error) error {
	return wrap(KindRead, op, err)
}

// Write wraps err as a WriteFailure. A nil err stays nil.
func Write(op string, err error) error {
	return wrap(KindWrite, op, err)
}

// Export wraps err as an ExportFailure. A nil err stays nil.
func Export(op string, err error) error {
	return wrap(KindExport, op, err)
}

// Auth wraps err as an AuthFailure. A nil err stays nil.
func Auth(op string, err error) error {
	return wrap(KindAuth, op, err)
}

// Validation returns a validation error for the named field.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// KindOf reports the failure class of err.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrValidation) {
		return KindValidation
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
