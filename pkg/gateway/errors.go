package gateway

import (
	"errors"
	"fmt"
)

// ErrorType categorizes different classes of failure surfaced by the gateways
// and the synchronization store.
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypePermissionDenied ErrorType = "permission_denied"
	ErrorTypeGateway          ErrorType = "gateway"
	ErrorTypeExpired          ErrorType = "expired"
)

// Error is a structured error carrying its class, a message, and an optional
// underlying cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message
func (e *Error) UserMessage() string {
	switch e.Type {
	case ErrorTypeValidation:
		return e.Message
	case ErrorTypeNotFound:
		return fmt.Sprintf("Not found: %s", e.Message)
	case ErrorTypePermissionDenied:
		return "You don't have permission to do that."
	case ErrorTypeExpired:
		return "This invitation or link is no longer valid."
	case ErrorTypeGateway:
		if e.Message != "" {
			return e.Message
		}
		return "The server could not be reached. Please try again."
	default:
		return e.Message
	}
}

func NewValidationError(format string, v ...interface{}) *Error {
	return &Error{Type: ErrorTypeValidation, Message: fmt.Sprintf(format, v...)}
}

func NewNotFoundError(what string) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: what}
}

func NewPermissionDeniedError(what string) *Error {
	return &Error{Type: ErrorTypePermissionDenied, Message: what}
}

func NewGatewayError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeGateway, Message: message, Cause: cause}
}

func NewExpiredError(what string) *Error {
	return &Error{Type: ErrorTypeExpired, Message: what}
}

func typeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return "", false
}

// IsValidation reports whether err is a client-side constraint violation.
func IsValidation(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeValidation
}

// IsNotFound reports whether err means the referenced record is absent.
func IsNotFound(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeNotFound
}

// IsPermissionDenied reports whether err is an advisory permission failure.
func IsPermissionDenied(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypePermissionDenied
}

// IsExpired reports whether err means an invitation or share link is past its
// validity window.
func IsExpired(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeExpired
}
