package validation

import (
	"fmt"
	"strings"
)

// FailedError is returned when validation found at least one critical issue.
type FailedError struct {
	Issues   []Issue
	Warnings int
}

func (e *FailedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "validation failed: %d critical issue(s), %d warning(s)", len(e.Issues), e.Warnings)
	for _, issue := range e.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}
