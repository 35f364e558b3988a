package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. A CustomError wraps exactly one of these so callers can use errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
	ErrUnavailable       = errors.New("unavailable")
)

var kindStatus = map[error]int{
	ErrUnauthorized:      http.StatusUnauthorized,
	ErrForbidden:         http.StatusForbidden,
	ErrNotFound:          http.StatusNotFound,
	ErrInvalidInput:      http.StatusBadRequest,
	ErrInvalidTransition: http.StatusBadRequest,
	ErrConflict:          http.StatusBadRequest,
	ErrInternal:          http.StatusInternalServerError,
	ErrUnavailable:       http.StatusServiceUnavailable,
}

var kindType = map[error]string{
	ErrUnauthorized:      "unauthorized",
	ErrForbidden:         "forbidden",
	ErrNotFound:          "not_found",
	ErrInvalidInput:      "invalid_input",
	ErrInvalidTransition: "invalid_transition",
	ErrConflict:          "conflict",
	ErrInternal:          "internal",
	ErrUnavailable:       "unavailable",
}

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`

	kind  error
	cause error
}

func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.cause)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *CustomError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// Kind returns the kind sentinel this error was built from.
func (e *CustomError) Kind() error {
	return e.kind
}

// Cause returns the wrapped low-level error, if any.
func (e *CustomError) Cause() error {
	return e.cause
}

func newError(kind error, message string, cause error) *CustomError {
	return &CustomError{
		Code:    kindStatus[kind],
		Message: message,
		Type:    kindType[kind],
		kind:    kind,
		cause:   cause,
	}
}

func Unauthorized(message string) *CustomError { return newError(ErrUnauthorized, message, nil) }

func Forbidden(message string) *CustomError { return newError(ErrForbidden, message, nil) }

func NotFound(message string) *CustomError { return newError(ErrNotFound, message, nil) }

func InvalidInput(message string) *CustomError { return newError(ErrInvalidInput, message, nil) }

func InvalidTransition(message string) *CustomError {
	return newError(ErrInvalidTransition, message, nil)
}

func Conflict(message string) *CustomError { return newError(ErrConflict, message, nil) }

func Unavailable(message string) *CustomError { return newError(ErrUnavailable, message, nil) }

// Internal wraps an unexpected store or provider failure. The message is what callers
// see; the cause is only ever logged.
func Internal(message string, cause error) *CustomError {
	return newError(ErrInternal, message, cause)
}

// StatusOf maps any error to an HTTP status. Errors outside the taxonomy are 500.
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return http.StatusInternalServerError
}
