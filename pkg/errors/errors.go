package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Retryable bool   `json:"retryable,omitempty"`
	Err       error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so that clones and wraps
// of a predefined error still match it under errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WrapAs attaches a cause to a copy of a predefined error, keeping its code,
// status and retryability.
func WrapAs(kind *Error, err error, message string) *Error {
	clone := Clone(kind, message)
	if clone == nil {
		return nil
	}
	clone.Err = err
	return clone
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss  = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrMissingImage      = New("MISSING_IMAGE", http.StatusBadRequest, "image file is required")
	ErrUploadFailed      = &Error{Code: "UPLOAD_FAILED", Status: http.StatusBadGateway, Message: "image upload failed", Retryable: true}
	ErrInvalidDateFormat = New("INVALID_DATE_FORMAT", http.StatusBadRequest, "invalid date format")
	ErrInvalidTimeFormat = New("INVALID_TIME_FORMAT", http.StatusBadRequest, "invalid time format")
	ErrPersistence       = &Error{Code: "PERSISTENCE_FAILED", Status: http.StatusInternalServerError, Message: "failed to persist event", Retryable: true}
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
