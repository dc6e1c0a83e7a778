// Package tokens extracts design tokens from a parsed brand guidelines page.
package tokens

import (
	"regexp"
	"strings"

	"github.com/slurpgg/bloom-wikisync/internal/colors"
	"github.com/slurpgg/bloom-wikisync/internal/markdown"
	"github.com/slurpgg/bloom-wikisync/internal/types"
)

// Token names for typography declarations.
const (
	FontPrimary  = "font-primary"
	FontSizeBase = "font-size-base"
)

// StyleLanguages are the code block languages scanned for declarations.
var StyleLanguages = []string{"css", "scss"}

var (
	customPropRe = regexp.MustCompile(`--([a-z-]+):\s*(#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3}))\b`)
	hexInTextRe  = regexp.MustCompile(`#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`)
	fontFamilyRe = regexp.MustCompile(`font-family:\s*([^;]+)`)
	fontSizeRe   = regexp.MustCompile(`font-size:\s*([^;]+)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Extract returns all color and typography tokens found in doc.
func Extract(doc *markdown.Document) types.DesignTokens {
	return types.DesignTokens{
		Color:      ExtractColors(doc),
		Typography: ExtractTypography(doc),
	}
}

// ExtractColors collects color tokens from css/scss custom properties and
// from tables that have a "token" or "color" header. Table entries are read
// after code blocks and win on name collisions.
func ExtractColors(doc *markdown.Document) types.TokenMap {
	out := types.TokenMap{}

	for _, block := range markdown.ExtractCodeBlocks(doc, StyleLanguages...) {
		for _, line := range strings.Split(block, "\n") {
			m := customPropRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out[m[1]] = types.TokenValue{Value: colors.NormalizeHex(m[2]), Type: types.TokenTypeColor}
		}
	}

	for _, table := range tokenTables(doc) {
		for _, row := range table.Rows[1:] {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = markdown.TextOf(c)
			}
			if len(cells) == 0 {
				continue
			}
			hex := hexInTextRe.FindString(strings.Join(cells, " "))
			if hex == "" {
				continue
			}
			name := whitespaceRe.ReplaceAllString(strings.ToLower(cells[0]), "-")
			out[name] = types.TokenValue{Value: colors.NormalizeHex(hex), Type: types.TokenTypeColor}
		}
	}
	return out
}

// tokenTables returns tables with at least one data row whose header row
// has a cell reading "token" or "color".
func tokenTables(doc *markdown.Document) []*markdown.Table {
	var tables []*markdown.Table
	markdown.Walk(doc, func(n markdown.Node) bool {
		table, ok := n.(*markdown.Table)
		if !ok {
			return true
		}
		if len(table.Rows) >= 2 && isTokenHeader(table.Rows[0]) {
			tables = append(tables, table)
		}
		return false
	})
	return tables
}

func isTokenHeader(row *markdown.TableRow) bool {
	for _, c := range row.Cells {
		switch strings.ToLower(strings.TrimSpace(markdown.TextOf(c))) {
		case "token", "color":
			return true
		}
	}
	return false
}

// ExtractTypography reads font-family and font-size declarations from
// css/scss blocks. The last declaration of each kind wins.
func ExtractTypography(doc *markdown.Document) types.TokenMap {
	out := types.TokenMap{}
	for _, block := range markdown.ExtractCodeBlocks(doc, StyleLanguages...) {
		for _, line := range strings.Split(block, "\n") {
			if m := fontFamilyRe.FindStringSubmatch(line); m != nil {
				value := strings.NewReplacer(`"`, "", `'`, "").Replace(strings.TrimSpace(m[1]))
				out[FontPrimary] = types.TokenValue{Value: value, Type: types.TokenTypeFontFamily}
			}
			if m := fontSizeRe.FindStringSubmatch(line); m != nil {
				out[FontSizeBase] = types.TokenValue{Value: strings.TrimSpace(m[1]), Type: types.TokenTypeFontSize}
			}
		}
	}
	return out
}
