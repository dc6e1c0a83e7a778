// Package audit compares the freshly transformed datasets against the
// pre-sync backup and reports every difference by severity.
//
// Naming follows the sync direction: the wiki value comes from the current
// (wiki-transformed) dataset, the website value from the backup the site was
// last built from.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Severity of a discrepancy.
type Severity string

// Severities, most severe first.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityMinor    Severity = "minor"
)

// Severities lists every severity in report order.
var Severities = []Severity{SeverityCritical, SeverityWarning, SeverityMinor}

// Discrepancy is one difference between the two snapshots.
type Discrepancy struct {
	Severity     Severity `json:"severity"`
	Field        string   `json:"field"`
	WikiValue    any      `json:"wikiValue"`
	WebsiteValue any      `json:"websiteValue"`
	Description  string   `json:"description"`
}

// Summary counts discrepancies per severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Minor    int `json:"minor"`
}

// Count returns the number of discrepancies of severity s.
func (s Summary) Count(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return s.Critical
	case SeverityWarning:
		return s.Warning
	case SeverityMinor:
		return s.Minor
	}
	return 0
}

// Report is the result of one audit.
type Report struct {
	RunID         string        `json:"runId,omitempty"`
	Timestamp     string        `json:"timestamp"`
	Summary       Summary       `json:"summary"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// NewReport returns an empty report stamped with now.
func NewReport(now time.Time) *Report {
	return &Report{
		Timestamp:     types.FormatTimestamp(now),
		Discrepancies: []Discrepancy{},
	}
}

// Add records a discrepancy and updates the summary.
func (r *Report) Add(sev Severity, field string, wikiValue, websiteValue any, description string) {
	r.Discrepancies = append(r.Discrepancies, Discrepancy{
		Severity:     sev,
		Field:        field,
		WikiValue:    wikiValue,
		WebsiteValue: websiteValue,
		Description:  description,
	})
	r.Summary.Total++
	switch sev {
	case SeverityCritical:
		r.Summary.Critical++
	case SeverityWarning:
		r.Summary.Warning++
	case SeverityMinor:
		r.Summary.Minor++
	}
}

// BySeverity returns the discrepancies of severity s in report order.
func (r *Report) BySeverity(sev Severity) []Discrepancy {
	var out []Discrepancy
	for _, d := range r.Discrepancies {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Err returns a *CriticalError when the report has critical discrepancies.
func (r *Report) Err() error {
	if r.Summary.Critical == 0 {
		return nil
	}
	return &CriticalError{Count: r.Summary.Critical, Discrepancies: r.BySeverity(SeverityCritical)}
}

// CriticalError fails the audit stage.
type CriticalError struct {
	Count         int
	Discrepancies []Discrepancy
}

func (e *CriticalError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "audit failed: %d critical issue(s) found", e.Count)
	for _, d := range e.Discrepancies {
		fmt.Fprintf(&sb, "\n  - %s: %s", d.Field, d.Description)
	}
	return sb.String()
}
