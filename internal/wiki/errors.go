package wiki

import (
	"fmt"
	"time"
)

// Error represents a transport-level failure talking to the wiki.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("wiki error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("wiki error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// APIError is a non-2xx API response. It exposes the status code and any
// Retry-After directive to the retry policy.
type APIError struct {
	Resource string
	Status   int
	Message  string

	retryAfter    time.Duration
	hasRetryAfter bool
}

// NewAPIError builds an APIError, mainly for fakes in tests.
func NewAPIError(resource string, status int, retryAfter time.Duration) *APIError {
	return &APIError{
		Resource:      resource,
		Status:        status,
		Message:       fmt.Sprintf("HTTP %d", status),
		retryAfter:    retryAfter,
		hasRetryAfter: retryAfter > 0,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wiki API error for %s: status %d: %s", e.Resource, e.Status, e.Message)
}

// StatusCode returns the HTTP status.
func (e *APIError) StatusCode() int {
	return e.Status
}

// RetryAfter returns the server-requested delay, if any.
func (e *APIError) RetryAfter() (time.Duration, bool) {
	return e.retryAfter, e.hasRetryAfter
}
