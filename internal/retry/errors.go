package retry

import "fmt"

// AuthError reports a rejected credential (401). It is a configuration
// problem and is never retried.
type AuthError struct {
	Label string
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: check the access token: %v", e.Label, e.Cause)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// ExhaustedError reports that every attempt failed.
type ExhaustedError struct {
	Label    string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s: giving up after %d attempts", e.Label, e.Attempts)
	}
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Label, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
