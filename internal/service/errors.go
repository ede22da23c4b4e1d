package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These represent expected conditions callers check for with errors.Is();
// the API layer maps them to HTTP status codes.
var (
	// ErrContentNotFound indicates the content does not exist for the
	// requesting owner. Lookups scoped to the wrong owner return this same
	// error, so existence never leaks across accounts.
	// API layer should map this to HTTP 404 Not Found.
	ErrContentNotFound = errors.New("content not found")

	// ErrContentTooLarge indicates a submitted body exceeds the configured
	// maximum input length.
	// API layer should map this to HTTP 400 Bad Request.
	ErrContentTooLarge = errors.New("content body exceeds maximum length")

	// ErrEmailTaken indicates the signup email is already registered.
	// API layer should map this to HTTP 409 Conflict.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrInvalidCredentials indicates login failed. The same error covers an
	// unknown email and a wrong password so the response cannot be used to
	// probe which accounts exist.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ServiceError wraps unexpected errors from a service with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_content")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
