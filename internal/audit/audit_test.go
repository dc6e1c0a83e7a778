package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/dataset"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

var auditTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func tenFactions() *types.FactionsData {
	data := &types.FactionsData{}
	for i := 0; i < 10; i++ {
		data.Factions = append(data.Factions, types.Faction{
			ID:     fmt.Sprintf("faction-%d", i),
			Name:   fmt.Sprintf("Faction %d", i),
			Lore:   "The covenant rose from the ashes of the old kingdoms.",
			Colors: &types.FactionColors{Primary: "#1E3A8A", Secondary: "#F59E0B", Accent: "#FFFFFF"},
		})
	}
	return data
}

func clone(d *types.FactionsData) *types.FactionsData {
	out := &types.FactionsData{Factions: make([]types.Faction, len(d.Factions))}
	for i, f := range d.Factions {
		c := *f.Colors
		f.Colors = &c
		out.Factions[i] = f
	}
	return out
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"same", "same", 1},
		{"a b c", "abc", 1},
		{"a", "b", 0},
		{"night", "nacht", 0.25},
		{"abcdefghijk", "abcdefghiXY", 0.8},
		{"aaaa", "aa", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCompareFactions_CountRegression(t *testing.T) {
	previous := tenFactions()
	current := clone(previous)
	current.Factions = current.Factions[:9]

	r := NewReport(auditTime)
	r.CompareFactions(previous, current, DefaultOptions())

	assert.GreaterOrEqual(t, r.Summary.Critical, 1)
	require.Error(t, r.Err())
	assert.Equal(t, "factionCount", r.Discrepancies[0].Field)
	assert.Equal(t, 9, r.Discrepancies[0].WikiValue)
	assert.Equal(t, 10, r.Discrepancies[0].WebsiteValue)

	last := r.Discrepancies[len(r.Discrepancies)-1]
	assert.Equal(t, "factions[9].missing", last.Field)
	assert.Nil(t, last.WikiValue)
	assert.Equal(t, "Faction 9", last.WebsiteValue)
}

func TestCompareFactions_NewFactionIsMissingFromWebsite(t *testing.T) {
	previous := tenFactions()
	current := clone(previous)
	current.Factions[3].ID = "renamed"

	r := NewReport(auditTime)
	r.CompareFactions(previous, current, DefaultOptions())

	require.Equal(t, 2, r.Summary.Critical)
	assert.Equal(t, "factions[3].missing", r.Discrepancies[0].Field)
	assert.Contains(t, r.Discrepancies[0].Description, "exists in wiki but not on website")
	assert.Contains(t, r.Discrepancies[1].Description, "exists on website but not in wiki")
}

func TestCompareFactions_ColorCaseIsIgnored(t *testing.T) {
	previous := tenFactions()
	current := clone(previous)
	current.Factions[0].Colors.Primary = "#1e3a8a"

	r := NewReport(auditTime)
	r.CompareFactions(previous, current, DefaultOptions())

	assert.Equal(t, 0, r.Summary.Total)
	assert.NoError(t, r.Err())
}

func TestCompareFactions_ColorMismatchIsCritical(t *testing.T) {
	previous := tenFactions()
	current := clone(previous)
	current.Factions[2].Colors.Accent = "#fefefe"

	r := NewReport(auditTime)
	r.CompareFactions(previous, current, DefaultOptions())

	require.Equal(t, 1, r.Summary.Total)
	d := r.Discrepancies[0]
	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Equal(t, "factions[2].colors.accent", d.Field)
	assert.Equal(t, "#FEFEFE", d.WikiValue)
	assert.Equal(t, "#FFFFFF", d.WebsiteValue)
	assert.Equal(t, "Faction 2: accent color mismatch", d.Description)
}

func TestCompareFactions_TextDriftBelowThresholdWarns(t *testing.T) {
	previous := tenFactions()
	previous.Factions[4].Lore = "abcdefghijk"
	current := clone(previous)
	current.Factions[4].Lore = "abcdefghiXY"

	r := NewReport(auditTime)
	r.CompareFactions(previous, current, DefaultOptions())

	require.Equal(t, 1, r.Summary.Total)
	assert.Equal(t, 1, r.Summary.Warning)
	assert.Equal(t, 0, r.Summary.Critical)
	assert.NoError(t, r.Err())

	d := r.Discrepancies[0]
	assert.Equal(t, "factions[4].lore", d.Field)
	assert.Equal(t, "abcdefghiXY...", d.WikiValue)
	assert.Equal(t, "Faction 4: lore text similarity 80.0% (threshold: 85%)", d.Description)
}

func TestCompareFactions_WhitespaceOnlyIsMinor(t *testing.T) {
	previous := tenFactions()
	current := clone(previous)
	current.Factions[1].Lore = "  The covenant rose from the ashes\nof the old kingdoms. "

	r := NewReport(auditTime)
	r.CompareFactions(previous, current, DefaultOptions())

	require.Equal(t, 1, r.Summary.Total)
	assert.Equal(t, SeverityMinor, r.Discrepancies[0].Severity)
	assert.NoError(t, r.Err())
}

func TestCompareBiomes(t *testing.T) {
	previous := &types.BiomesData{Biomes: []types.Biome{
		{ID: "ashfall", Name: "Ashfall", Description: "Endless grey dunes."},
		{ID: "tidewrack", Name: "Tidewrack", Description: "Drowned coast."},
	}}
	current := &types.BiomesData{Biomes: []types.Biome{
		{ID: "ashfall", Name: "Ashfall", Description: "Completely different words here now."},
	}}

	r := NewReport(auditTime)
	r.CompareBiomes(previous, current, DefaultOptions())

	assert.Equal(t, 2, r.Summary.Critical)
	assert.Equal(t, 1, r.Summary.Warning)
	var fields []string
	for _, d := range r.Discrepancies {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"biomeCount", "biomes[0].description", "biomes[1].missing"}, fields)
}

func sampleReport() *Report {
	r := NewReport(auditTime)
	r.Add(SeverityCritical, "factionCount", 9, 10, "Faction count mismatch: wiki has 9, website has 10")
	r.Add(SeverityWarning, "factions[0].lore", "a...", "b...", "Faction 0: lore text similarity 10.0% (threshold: 85%)")
	r.Add(SeverityMinor, "factions[1].lore", "x  y", "x y", "Faction 1: lore differs only in whitespace")
	r.Add(SeverityCritical, "factions[3].missing", "<b>Bold</b> & Co", nil, `Faction "<b>Bold</b> & Co" exists in wiki but not on website`)
	return r
}

func TestReport_Summary(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, Summary{Total: 4, Critical: 2, Warning: 1, Minor: 1}, r.Summary)
	assert.Equal(t, "2026-05-01T12:00:00.000Z", r.Timestamp)
	assert.Len(t, r.BySeverity(SeverityCritical), 2)
	assert.Equal(t, 1, r.Summary.Count(SeverityMinor))
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleReport())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "2026-05-01T12:00:00.000Z", decoded["timestamp"])
	assert.Equal(t, map[string]any{"total": 4.0, "critical": 2.0, "warning": 1.0, "minor": 1.0}, decoded["summary"])

	discrepancies := decoded["discrepancies"].([]any)
	require.Len(t, discrepancies, 4)
	missing := discrepancies[3].(map[string]any)
	assert.Nil(t, missing["websiteValue"])
	assert.Contains(t, string(out), `"wikiValue": "<b>Bold</b> & Co"`)
}

func TestRenderJSON_EmptyReportHasEmptyList(t *testing.T) {
	out, err := RenderJSON(NewReport(auditTime))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"discrepancies": []`)
}

func TestRenderMarkdown_GroupsBySeverity(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	assert.True(t, strings.HasPrefix(md, "# Content Audit Report\n\n**Generated**: 2026-05-01T12:00:00.000Z\n"))
	assert.Contains(t, md, "- **Total Discrepancies**: 4\n")

	critical := strings.Index(md, "## 🔴 Critical Issues")
	warning := strings.Index(md, "## 🟡 Warnings")
	minor := strings.Index(md, "## 🟢 Minor Differences")
	require.True(t, critical >= 0 && warning > critical && minor > warning)

	assert.Contains(t, md, "### 2. factions[3].missing")
	assert.Contains(t, md, "- **Wiki Value**: `9`\n- **Website Value**: `10`")
	assert.Contains(t, md, "- **Website Value**: `null`")
}

func TestRenderMarkdown_BackticksInValues(t *testing.T) {
	r := NewReport(auditTime)
	r.Add(SeverityMinor, "factions[0].lore", "use `ember` runes", "``x``", "Lore differs")
	md := RenderMarkdown(r)

	assert.Contains(t, md, "- **Wiki Value**: `` \"use `ember` runes\" ``\n")
	assert.Contains(t, md, "- **Website Value**: ``` \"``x``\" ```\n")
}

func TestCodeSpan(t *testing.T) {
	assert.Equal(t, "`plain`", codeSpan("plain"))
	assert.Equal(t, "`` a`b ``", codeSpan("a`b"))
	assert.Equal(t, "``` `` ```", codeSpan("``"))
}

func TestRenderMarkdown_OmitsEmptySections(t *testing.T) {
	md := RenderMarkdown(NewReport(auditTime))
	assert.NotContains(t, md, "Critical Issues")
	assert.NotContains(t, md, "Warnings\n")
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, out, "<h3>2</h3>\n      <p>Critical</p>")
	assert.Contains(t, out, `<div class="discrepancy critical">`)
	assert.Contains(t, out, `<div class="discrepancy minor">`)
	assert.Contains(t, out, "&lt;b&gt;Bold&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Bold</b>")
}

func TestRenderers_AreDeterministic(t *testing.T) {
	r := sampleReport()
	a, _ := RenderHTML(r)
	b, _ := RenderHTML(r)
	assert.Equal(t, a, b)
	assert.Equal(t, RenderMarkdown(r), RenderMarkdown(r))
	assert.Equal(t, 4, r.Summary.Total)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := WriteAll(dir, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, JSONFile),
		filepath.Join(dir, MarkdownFile),
		filepath.Join(dir, HTMLFile),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, dataset.WriteJSON(path, v, false))
}

func TestRun_ComparesAgainstBackup(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.ReportDir = t.TempDir()

	previous := tenFactions()
	current := clone(previous)
	current.Factions = current.Factions[:9]
	writeJSON(t, dataset.BackupPath(cfg.FactionsPath()), previous)
	writeJSON(t, cfg.FactionsPath(), current)

	result, err := Run(&cfg, "run-123", auditTime, nil)
	require.NoError(t, err)
	assert.Equal(t, "run-123", result.Report.RunID)
	assert.Empty(t, result.MissingBaselines)
	assert.Error(t, result.Report.Err())
	assert.Len(t, result.Paths, 3)
	assert.True(t, dataset.Exists(filepath.Join(cfg.ReportDir, HTMLFile)))

	md, err := os.ReadFile(filepath.Join(cfg.ReportDir, MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "**Run**: `run-123`")
}

func TestRun_MissingBackupUsesCurrentAsBaseline(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.ReportDir = t.TempDir()
	writeJSON(t, cfg.FactionsPath(), tenFactions())

	result, err := Run(&cfg, "", auditTime, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{cfg.FactionsPath()}, result.MissingBaselines)
	assert.Equal(t, 0, result.Report.Summary.Total)
	assert.NoError(t, result.Report.Err())
}

func TestRun_MissingCurrentDatasetIsFatal(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.ReportDir = t.TempDir()

	_, err := Run(&cfg, "", auditTime, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
