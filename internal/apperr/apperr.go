package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error type tags returned to clients. Callers branch on the tag, never on
// the message text.
const (
	TypeValidation  = "VALIDATION_ERROR"
	TypeNotFound    = "NOT_FOUND"
	TypeDatabase    = "DATABASE_ERROR"
	TypeSave        = "SAVE_ERROR"
	TypeCalculation = "CALCULATION_ERROR"
	TypeConflict    = "CONFLICT"
	TypeUnexpected  = "UNEXPECTED_ERROR"
)

// Error is a tagged application error. Expected failure modes are returned
// as *Error values so callers never need panic recovery for normal control
// flow; anything else is converted to UNEXPECTED_ERROR at the transport
// boundary.
type Error struct {
	Type    string   `json:"error_type"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Details string   `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a VALIDATION_ERROR with a single message.
func Validation(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

// ValidationList creates a VALIDATION_ERROR carrying the full list of
// individual violations plus a human-joined details string.
func ValidationList(message string, violations []string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Errors:  violations,
		Details: strings.Join(violations, "; "),
	}
}

// NotFound creates a NOT_FOUND error for the named resource.
func NotFound(resource string) *Error {
	return &Error{Type: TypeNotFound, Message: resource + " not found"}
}

// Database creates a DATABASE_ERROR: the store was unreachable or a read
// failed before any write was attempted.
func Database(message string, err error) *Error {
	return &Error{Type: TypeDatabase, Message: message, Err: err}
}

// Save creates a SAVE_ERROR: a write was attempted and rejected by the store.
func Save(message string, err error) *Error {
	return &Error{Type: TypeSave, Message: message, Err: err}
}

// Calculation creates a CALCULATION_ERROR: an internal post-condition failed.
// This signals a defect, not a caller mistake, and is logged distinctly.
func Calculation(message string) *Error {
	return &Error{Type: TypeCalculation, Message: message}
}

// Conflict creates a CONFLICT error for concurrent-modification failures.
func Conflict(message string) *Error {
	return &Error{Type: TypeConflict, Message: message}
}

// Unexpected wraps an arbitrary error as UNEXPECTED_ERROR.
func Unexpected(err error) *Error {
	message := "an unexpected error occurred"
	if err != nil {
		message = err.Error()
	}
	return &Error{Type: TypeUnexpected, Message: message, Err: err}
}

// From returns err as a tagged *Error, converting unknown errors to
// UNEXPECTED_ERROR so the transport layer always has a tag to serialize.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}

// TypeOf returns the tag for err, or UNEXPECTED_ERROR for untagged errors.
func TypeOf(err error) string {
	return From(err).Type
}

// HTTPStatus maps a tagged error to its HTTP status code.
func HTTPStatus(err error) int {
	switch From(err).Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeDatabase:
		return http.StatusServiceUnavailable
	case TypeSave:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
