// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/slurpgg/bloom-wikisync/internal/audit"
	"github.com/slurpgg/bloom-wikisync/internal/fetch"
	"github.com/slurpgg/bloom-wikisync/internal/transform"
	"github.com/slurpgg/bloom-wikisync/internal/types"
	"github.com/slurpgg/bloom-wikisync/internal/validation"
)

const (
	// maxLineWidth bounds a single content line inside a box
	maxLineWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#7F8C8D")
)

type styles struct {
	box     lipgloss.Style
	title   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	error   lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1),
		title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		error:   r.NewStyle().Foreground(colorError),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out    io.Writer
	styles styles
}

// NewPrinter creates a new Printer that writes to the given writer.
// Colors are only emitted when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, styles: newStyles(lipgloss.NewRenderer(out))}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for i, line := range lines {
		if r := []rune(line); len(r) > maxLineWidth {
			lines[i] = string(r[:maxLineWidth-3]) + "..."
		}
	}
	body := p.styles.title.Render(title) + "\n\n" + strings.Join(lines, "\n")
	fmt.Fprintln(p.out, p.styles.box.Render(body))
}

// PrintFetchSummary outputs the per-page outcomes of a fetch run.
func (p *Printer) PrintFetchSummary(summary *fetch.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	for _, r := range summary.Results {
		sb.WriteString(fmt.Sprintf("%s %-28s %s", p.outcomeIcon(r.Outcome), r.Slug, r.Outcome))
		switch r.Outcome {
		case fetch.OutcomeCached:
			sb.WriteString(p.styles.muted.Render(fmt.Sprintf(" (age %s)", r.Age.Round(time.Second))))
		case fetch.OutcomeFetched:
			sb.WriteString(p.styles.muted.Render(fmt.Sprintf(" (%d bytes)", r.Bytes)))
		case fetch.OutcomeFailed:
			if r.Err != nil {
				sb.WriteString(": " + r.Err.Error())
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\nFetched: %d  Cached: %d  Skipped: %d  Failed: %d",
		summary.Fetched, summary.Cached, summary.Skipped, summary.Failed))

	p.printBox("WIKI FETCH", sb.String())
}

func (p *Printer) outcomeIcon(o fetch.Outcome) string {
	switch o {
	case fetch.OutcomeFetched, fetch.OutcomeCached:
		return p.styles.success.Render("✓")
	case fetch.OutcomeSkipped:
		return p.styles.warning.Render("○")
	default:
		return p.styles.error.Render("✗")
	}
}

// PrintTransform outputs what the transform stage read and wrote.
func (p *Printer) PrintTransform(result *transform.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	writeStats := func(name string, s transform.Stats) {
		sb.WriteString(fmt.Sprintf("%s: %d entities, %d tables (%d rows), %d front matter fields\n",
			name, s.Entities, s.Tables, s.TableRows, s.FrontMatterFields))
	}
	writeStats("Factions", result.Factions)
	if result.Biomes != nil {
		writeStats("Biomes", *result.Biomes)
	}
	sb.WriteString(fmt.Sprintf("Last sync: %s\n", result.Metadata.LastSynced))

	if len(result.Written) > 0 {
		sb.WriteString("\nWritten:\n")
		for _, path := range result.Written {
			sb.WriteString(fmt.Sprintf("  • %s\n", path))
		}
	}

	p.printBox("TRANSFORM", sb.String())
}

// PrintTokens outputs the extracted design tokens in name order.
func (p *Printer) PrintTokens(tokens types.DesignTokens) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tokens: %d\n", tokens.Count()))

	writeMap := func(label string, m types.TokenMap) {
		if len(m) == 0 {
			return
		}
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)

		sb.WriteString(fmt.Sprintf("\n%s:\n", label))
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("  • %s = %s\n", name, m[name].Value))
		}
	}
	writeMap("Colors", tokens.Color)
	writeMap("Typography", tokens.Typography)

	p.printBox("DESIGN TOKENS", sb.String())
}

// PrintValidation outputs validation errors and warnings.
func (p *Printer) PrintValidation(result *validation.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Valid() {
		sb.WriteString(p.styles.success.Render("✓ All checks passed") + "\n")
	} else {
		sb.WriteString(p.styles.error.Render(fmt.Sprintf("✗ %d error(s)", len(result.Errors))) + "\n")
		for _, issue := range result.Errors {
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", issue.Type, issue))
		}
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("\n" + p.styles.warning.Render(fmt.Sprintf("⚠ %d warning(s)", len(result.Warnings))) + "\n")
		count := min(len(result.Warnings), maxItemsToShow)
		for i := 0; i < count; i++ {
			issue := result.Warnings[i]
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", issue.Type, issue))
		}
		if len(result.Warnings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Warnings)-maxItemsToShow))
		}
	}

	p.printBox("VALIDATION", sb.String())
}

// PrintAudit outputs the audit summary with critical and warning discrepancies.
func (p *Printer) PrintAudit(report *audit.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated: %s\n", report.Timestamp))
	sb.WriteString(fmt.Sprintf("Total: %d  %s  %s  %s\n",
		report.Summary.Total,
		p.styles.error.Render(fmt.Sprintf("Critical: %d", report.Summary.Critical)),
		p.styles.warning.Render(fmt.Sprintf("Warning: %d", report.Summary.Warning)),
		p.styles.muted.Render(fmt.Sprintf("Minor: %d", report.Summary.Minor)),
	))

	for _, sev := range []audit.Severity{audit.SeverityCritical, audit.SeverityWarning} {
		items := report.BySeverity(sev)
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", strings.ToUpper(string(sev))))
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i].Description))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}

	p.printBox("CONTENT AUDIT", sb.String())
}
