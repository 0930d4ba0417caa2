package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures reported by the booking core
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindInvalidOperation  ErrorKind = "INVALID_OPERATION"
	KindUnavailable       ErrorKind = "UNAVAILABLE"
	KindDateConflict      ErrorKind = "DATE_CONFLICT"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindConflict          ErrorKind = "CONFLICT"
	KindValidation        ErrorKind = "VALIDATION_ERROR"
)

// Error is a tagged domain failure. Two errors match under errors.Is when their kinds match;
// a target without a message acts as a wildcard for the kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is implements the errors.Is interface for Error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is checks
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrInvalidOperation  = &Error{Kind: KindInvalidOperation}
	ErrUnavailable       = &Error{Kind: KindUnavailable}
	ErrDateConflict      = &Error{Kind: KindDateConflict}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrValidation        = &Error{Kind: KindValidation}
)

// NewError builds a tagged error with a formatted message
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidationErrorf is shorthand for the most common kind
func ValidationErrorf(format string, args ...interface{}) *Error {
	return NewError(KindValidation, format, args...)
}

// KindOf extracts the kind of the first tagged error in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}
