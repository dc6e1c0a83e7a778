package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/slurpgg/bloom-wikisync/internal/dataset"
)

// Report file names written by WriteAll.
const (
	JSONFile     = "audit-report.json"
	MarkdownFile = "audit-report.md"
	HTMLFile     = "audit-report.html"
)

// RenderJSON renders r as indented JSON.
func RenderJSON(r *Report) ([]byte, error) {
	return dataset.Encode(r)
}

var markdownHeadings = map[Severity]string{
	SeverityCritical: "🔴 Critical Issues",
	SeverityWarning:  "🟡 Warnings",
	SeverityMinor:    "🟢 Minor Differences",
}

// RenderMarkdown renders r as a markdown document with one section per
// severity that has discrepancies.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	sb.WriteString("# Content Audit Report\n\n")
	fmt.Fprintf(&sb, "**Generated**: %s\n\n", r.Timestamp)
	if r.RunID != "" {
		fmt.Fprintf(&sb, "**Run**: %s\n\n", codeSpan(r.RunID))
	}
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total Discrepancies**: %d\n", r.Summary.Total)
	fmt.Fprintf(&sb, "- 🔴 **Critical**: %d\n", r.Summary.Critical)
	fmt.Fprintf(&sb, "- 🟡 **Warning**: %d\n", r.Summary.Warning)
	fmt.Fprintf(&sb, "- 🟢 **Minor**: %d\n\n", r.Summary.Minor)

	for _, sev := range Severities {
		items := r.BySeverity(sev)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", markdownHeadings[sev])
		for i, d := range items {
			fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, d.Field)
			fmt.Fprintf(&sb, "**Description**: %s\n\n", d.Description)
			fmt.Fprintf(&sb, "- **Wiki Value**: %s\n", codeSpan(jsonValue(d.WikiValue)))
			fmt.Fprintf(&sb, "- **Website Value**: %s\n\n", codeSpan(jsonValue(d.WebsiteValue)))
		}
	}
	return sb.String()
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"json": jsonValue,
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Content Audit Report</title>
  <style>
    body { font-family: system-ui; max-width: 1200px; margin: 0 auto; padding: 2rem; }
    h1 { color: #1a202c; }
    .summary { display: flex; gap: 1rem; margin: 2rem 0; }
    .stat { padding: 1rem; border-radius: 8px; flex: 1; }
    .stat.critical { background: #fee; color: #c00; }
    .stat.warning { background: #ffa; color: #880; }
    .stat.minor { background: #efe; color: #080; }
    .discrepancy { padding: 1rem; margin: 1rem 0; border-left: 4px solid #ccc; }
    .discrepancy.critical { border-left-color: #c00; background: #fee; }
    .discrepancy.warning { border-left-color: #880; background: #ffa; }
    .discrepancy.minor { border-left-color: #080; background: #efe; }
    code { background: #f5f5f5; padding: 2px 6px; border-radius: 3px; }
  </style>
</head>
<body>
  <h1>Content Audit Report</h1>
  <p><strong>Generated</strong>: {{.Timestamp}}</p>
  {{if .RunID}}<p><strong>Run</strong>: <code>{{.RunID}}</code></p>{{end}}

  <div class="summary">
    <div class="stat critical">
      <h3>{{.Summary.Critical}}</h3>
      <p>Critical</p>
    </div>
    <div class="stat warning">
      <h3>{{.Summary.Warning}}</h3>
      <p>Warnings</p>
    </div>
    <div class="stat minor">
      <h3>{{.Summary.Minor}}</h3>
      <p>Minor</p>
    </div>
  </div>

  <h2>Discrepancies ({{.Summary.Total}})</h2>
{{- range $i, $d := .Discrepancies}}
  <div class="discrepancy {{$d.Severity}}">
    <h3>{{inc $i}}. {{$d.Field}}</h3>
    <p>{{$d.Description}}</p>
    <p><strong>Wiki</strong>: <code>{{json $d.WikiValue}}</code></p>
    <p><strong>Website</strong>: <code>{{json $d.WebsiteValue}}</code></p>
  </div>
{{- end}}
</body>
</html>
`))

// RenderHTML renders r as a standalone HTML page.
func RenderHTML(r *Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.String(), nil
}

// WriteAll renders r in every format into dir, replacing earlier reports.
// It returns the written paths.
func WriteAll(dir string, r *Report) ([]string, error) {
	jsonOut, err := RenderJSON(r)
	if err != nil {
		return nil, &dataset.IOError{Op: "encode", Path: filepath.Join(dir, JSONFile), Cause: err}
	}
	htmlOut, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		name    string
		content []byte
	}{
		{JSONFile, jsonOut},
		{MarkdownFile, []byte(RenderMarkdown(r))},
		{HTMLFile, []byte(htmlOut)},
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &dataset.IOError{Op: "mkdir", Path: dir, Cause: err}
	}
	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := os.WriteFile(path, o.content, 0o644); err != nil {
			return paths, &dataset.IOError{Op: "write", Path: path, Cause: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// jsonValue renders v the way it appears in the JSON report.
func jsonValue(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// codeSpan wraps s in an inline code span. When s contains backticks the
// fence is one longer than its longest backtick run and the content is
// padded with a space on each side.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	if longest == 0 {
		return "`" + s + "`"
	}
	fence := strings.Repeat("`", longest+1)
	return fence + " " + s + " " + fence
}
