package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeTooLarge   ErrorType = "TOO_LARGE"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type and message, so sentinel
// values still compare equal after being copied with WithCause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause returns a copy of e wrapping cause. The receiver is left
// untouched so package-level sentinels stay immutable.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{
		Type:    e.Type,
		Message: e.Message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewExportError creates an error for a failed workbook or CSV render
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewTooLargeError creates an error for input over a size limit
func NewTooLargeError(message string) *AppError {
	return NewAppError(ErrTypeTooLarge, message, nil)
}

// NewRateLimitError reports a rejected request; retry_after is exposed to
// the client in seconds.
func NewRateLimitError(retryAfterSeconds int) *AppError {
	return NewAppError(ErrTypeRateLimit,
		fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfterSeconds), nil).
		WithContext("retry_after", retryAfterSeconds)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
