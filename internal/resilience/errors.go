package resilience

import (
	"fmt"
	"net/http"
	"time"
)

// ServiceError wraps a failure from an outbound service call, carrying the
// service name and retryability so the manager and callers can branch on it
// with errors.As.
type ServiceError struct {
	Service    string
	StatusCode int
	Retryable  bool
	cause      error
}

func NewServiceError(service string, cause error, retryable bool) *ServiceError {
	return &ServiceError{Service: service, Retryable: retryable, cause: cause}
}

// NewHTTPServiceError derives retryability from the response status code.
// Server errors and throttling retry; other client errors do not.
func NewHTTPServiceError(service string, statusCode int, cause error) *ServiceError {
	retryable := statusCode >= 500 || statusCode == http.StatusTooManyRequests
	return &ServiceError{Service: service, StatusCode: statusCode, Retryable: retryable, cause: cause}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("service %s failed with status %d: %v", e.Service, e.StatusCode, e.cause)
	}
	return fmt.Sprintf("service %s failed: %v", e.Service, e.cause)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// AuthenticationError marks a credential failure. Never retried.
type AuthenticationError struct {
	Service string
	cause   error
}

func NewAuthenticationError(service string, cause error) *AuthenticationError {
	return &AuthenticationError{Service: service, cause: cause}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication with %s failed: %v", e.Service, e.cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.cause
}

// NotFoundError marks a missing remote resource. Never retried.
type NotFoundError struct {
	Service  string
	Resource string
}

func NewNotFoundError(service, resource string) *NotFoundError {
	return &NotFoundError{Service: service, Resource: resource}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found on %s", e.Resource, e.Service)
}

// CircuitOpenError is returned without attempting the call while a service's
// circuit breaker is open.
type CircuitOpenError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s, retry after %s", e.Service, e.RetryAfter.Round(time.Second))
}
