package fetch

import "fmt"

// CacheError represents a local cache read/write failure.
type CacheError struct {
	Path    string
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error for %s: %s", e.Path, e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}
