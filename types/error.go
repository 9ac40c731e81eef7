package types

import "fmt"

// ErrorCode represents a unified error code across the service.
type ErrorCode string

// Request and ingestion error codes
const (
	ErrValidation    ErrorCode = "VALIDATION"
	ErrEmptyDocument ErrorCode = "EMPTY_DOCUMENT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// Adapter error codes
const (
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrUpstreamError       ErrorCode = "UPSTREAM_ERROR"
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrRateLimited         ErrorCode = "RATE_LIMITED"
)

// Tool error codes
const (
	ErrToolNotFound  ErrorCode = "TOOL_NOT_FOUND"
	ErrToolParameter ErrorCode = "TOOL_PARAMETER"
	ErrToolExecution ErrorCode = "TOOL_EXECUTION"
	ErrDomain        ErrorCode = "DOMAIN"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidationError creates a VALIDATION error.
func NewValidationError(message string) *Error {
	return &Error{Code: ErrValidation, Message: message, HTTPStatus: 400}
}

// NewEmptyDocumentError creates an EMPTY_DOCUMENT error.
func NewEmptyDocumentError(message string) *Error {
	return &Error{Code: ErrEmptyDocument, Message: message, HTTPStatus: 400}
}

// NewDomainError creates a DOMAIN error for out-of-domain tool inputs.
func NewDomainError(message string) *Error {
	return &Error{Code: ErrDomain, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error, or "" if it is not
// a *types.Error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}
