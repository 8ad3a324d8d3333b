// Package domainerrors carries typed domain errors across service boundaries.
//
// Every error produced by the domain and service layers is an *Error holding a
// Code that names its category. Callers branch on the category with HasCode and
// on the precise failure with errors.Is against the wrapped kind. Mapping a
// Code to a transport status is the caller's job.
package domainerrors

import "errors"

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks input rejected before any write.
	CodeValidation Code = "validation_error"
	// CodeNotFound marks a lookup of an unknown identifier.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a request that collides with existing state.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a structural invariant that does not hold.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout marks an operation aborted by its context.
	CodeTimeout Code = "timeout"
	// CodeInternal marks an infrastructure failure.
	CodeInternal Code = "internal_error"
)

// Error is a domain error. Its message is meant for end users; the wrapped
// error, when present, keeps the technical cause available to errors.Is/As.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a domain error without an underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a domain error around err.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err, or any error it wraps, is a domain error with code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the code of the outermost domain error in err's chain, or
// CodeInternal when err is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
