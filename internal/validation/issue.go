// Package validation applies domain rules to the synchronized datasets: the
// expected entity counts and WCAG contrast between faction colors. Schema
// violations are folded into the same Result so that one pass reports
// everything.
package validation

import (
	"errors"
	"fmt"

	"github.com/slurpgg/bloom-wikisync/internal/schemas"
)

// Severity classifies an issue. Only critical issues fail validation.
type Severity string

// Issue severities.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Issue types.
const (
	TypeSchema        = "SCHEMA"
	TypeFactionCount  = "FACTION_COUNT"
	TypeBiomeCount    = "BIOME_COUNT"
	TypeContrastRatio = "CONTRAST_RATIO"
)

// Issue is one finding of a validation run.
type Issue struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Entity   string   `json:"entity,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty"`
}

func (i Issue) String() string {
	switch {
	case i.Entity != "" && i.Field != "":
		return fmt.Sprintf("%s - %s: %s", i.Entity, i.Field, i.Message)
	case i.Field != "":
		return fmt.Sprintf("%s: %s", i.Field, i.Message)
	default:
		return i.Message
	}
}

// Result collects the issues of a validation run.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether no critical issue was found.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Add files each issue under Errors or Warnings by severity.
func (r *Result) Add(issues ...Issue) {
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			r.Errors = append(r.Errors, issue)
		} else {
			r.Warnings = append(r.Warnings, issue)
		}
	}
}

// Err returns a *FailedError when the result is not valid.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &FailedError{Issues: r.Errors, Warnings: len(r.Warnings)}
}

// SchemaIssues converts a *schemas.ValidationError into critical issues. Any
// other non-nil error is returned unchanged, since it means the check itself
// could not run.
func SchemaIssues(err error) ([]Issue, error) {
	if err == nil {
		return nil, nil
	}
	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	issues := make([]Issue, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		issues = append(issues, Issue{
			Type:     TypeSchema,
			Severity: SeverityCritical,
			Field:    fe.Field,
			Message:  fe.Message,
		})
	}
	return issues, nil
}
