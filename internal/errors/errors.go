package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Bestiary error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrValidation     ErrorCode = "VALIDATION"      // 422
	ErrAborted        ErrorCode = "ABORTED"         // 499 (client closed request)
	ErrPersistence    ErrorCode = "PERSISTENCE"     // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrTransport      ErrorCode = "TRANSPORT"       // 502
)

// StatusClientClosedRequest is the non-standard status used for aborted requests.
const StatusClientClosedRequest = 499

// BestiaryError represents a structured error with code, status, and details.
type BestiaryError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *BestiaryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *BestiaryError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BestiaryError {
	return &BestiaryError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an identifier with no record.
// The message is fixed so HTTP bodies read {"error":"Not found"}.
func NewNotFound(identifier string) *BestiaryError {
	return &BestiaryError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "Not found",
		Details: map[string]any{"identifier": identifier},
	}
}

// NewValidation creates a 422 error for a rejected field value.
func NewValidation(field, msg string) *BestiaryError {
	return &BestiaryError{
		Code:    ErrValidation,
		Status:  422,
		Message: msg,
		Details: map[string]any{"field": field},
	}
}

// NewTransport creates a 502 error for a failed fetch.
// status is the upstream HTTP status, or 0 when no response was received.
func NewTransport(status int, err error) *BestiaryError {
	msg := "failed to fetch data"
	if status != 0 {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}
	e := &BestiaryError{
		Code:    ErrTransport,
		Status:  502,
		Message: msg,
		cause:   err,
	}
	if status != 0 {
		e.Details = map[string]any{"upstream_status": status}
	}
	return e
}

// NewAborted creates an error for a fetch that was cancelled before it completed.
func NewAborted(err error) *BestiaryError {
	return &BestiaryError{
		Code:    ErrAborted,
		Status:  StatusClientClosedRequest,
		Message: "request was cancelled",
		cause:   err,
	}
}

// NewPersistence creates a 500 error for a durable storage read or write failure.
func NewPersistence(key string, err error) *BestiaryError {
	msg := "storage failure"
	if err != nil {
		msg = err.Error()
	}
	return &BestiaryError{
		Code:    ErrPersistence,
		Status:  500,
		Message: msg,
		Details: map[string]any{"key": key},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BestiaryError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BestiaryError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a BestiaryError with the given code.
func Is(err error, code ErrorCode) bool {
	var bErr *BestiaryError
	if stderrors.As(err, &bErr) {
		return bErr.Code == code
	}
	return false
}

// As extracts a BestiaryError from err, converting unknown errors to INTERNAL.
func As(err error) *BestiaryError {
	var bErr *BestiaryError
	if stderrors.As(err, &bErr) {
		return bErr
	}
	return NewInternal(err)
}
