package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Client side: every failed API call carries this code
	ErrCodeRequestFailed ErrorCode = "REQUEST_FAILED"

	// Request body
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	// Status is the HTTP status received from the backend, 0 when none was.
	Status int `json:"-"`
	cause  error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// RequestFailed reports a transport or decode failure for the named operation.
func RequestFailed(operation string, cause error) *AppError {
	return Wrap(ErrCodeRequestFailed, fmt.Sprintf("%s request failed", operation), cause)
}

// UnexpectedStatus reports a non-2xx response. body is the (truncated)
// response text, kept as details for the caller to inspect.
func UnexpectedStatus(operation string, status int, body string) *AppError {
	err := New(ErrCodeRequestFailed, fmt.Sprintf("%s request failed with status %d", operation, status))
	err.Status = status
	if body != "" {
		err.Details = body
	}
	return err
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// PayloadTooLarge reports a request body larger than limit bytes.
func PayloadTooLarge(limit int64) *AppError {
	return New(ErrCodePayloadTooLarge, fmt.Sprintf("Request body exceeds %d bytes", limit))
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Status
	}
	return 0
}

// IsRequestFailed reports whether err came from a failed API call.
func IsRequestFailed(err error) bool {
	return GetCode(err) == ErrCodeRequestFailed
}
