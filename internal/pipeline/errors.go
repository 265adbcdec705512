package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a request failure. Every error that reaches the client
// carries exactly one kind; the kind alone determines the HTTP status code.
type Kind string

// The closed set of error kinds the API can return.
const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindTokenExpired  Kind = "TOKEN_EXPIRED"
	KindTokenInvalid  Kind = "TOKEN_INVALID"
	KindNotFound      Kind = "RESOURCE_NOT_FOUND"
	KindAlreadyExists Kind = "RESOURCE_ALREADY_EXISTS"
	KindRateLimited   Kind = "RATE_LIMIT_EXCEEDED"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// HTTPStatus returns the status code for the kind. This is the single
// place where kinds map onto status codes.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized, KindTokenExpired, KindTokenInvalid:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// internalErrorMessage is the only detail ever shown to clients for
// internal failures. The original error stays in the server logs.
const internalErrorMessage = "An unexpected error occurred"

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the pipeline's error type. Guards and handlers return it (or a
// wrapped version of it) to control the terminal response.
type Error struct {
	Kind       Kind
	Message    string
	Fields     []FieldError  // populated for KindValidation
	RetryAfter time.Duration // populated for KindRateLimited
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return e.Kind.HTTPStatus()
}

// SafeMessage returns the message that may be shown to clients. Internal
// errors always yield the generic message regardless of their cause.
func (e *Error) SafeMessage() string {
	if e.Kind == KindInternal {
		return internalErrorMessage
	}
	return e.Message
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a KindValidation error carrying all field failures.
func Validation(fields []FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "request validation failed",
		Fields:  fields,
	}
}

// Unauthorized creates a KindUnauthorized error. An empty message defaults
// to a generic one.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NotFound creates a KindNotFound error for the named resource.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// AlreadyExists creates a KindAlreadyExists error for the named resource.
func AlreadyExists(resource string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf("%s already exists", resource)}
}

// RateLimited creates a KindRateLimited error advising the client to retry
// after the given duration.
func RateLimited(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Message:    "rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

// Internal wraps an unexpected failure. The cause is kept for logging but
// never exposed to clients.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// Coerce converts any error into a pipeline *Error. Errors that are not
// already pipeline errors become internal errors, so unrecognized failures
// can never leak their details to clients.
func Coerce(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
