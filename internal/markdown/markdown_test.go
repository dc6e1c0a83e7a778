package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brandPage = `# Brand Guidelines

Colors follow the ` + "`--color-*`" + ` naming scheme.

| Token | Hex | Usage |
|-------|-----|-------|
| Primary Blue | #1E3A8A | Headers |
| Accent Gold | #f59e0b | Buttons |

` + "```css" + `
:root {
  --color-primary: #1e3a8a;
  font-family: Inter, sans-serif;
}
` + "```" + `

` + "```js" + `
const x = 1;
` + "```" + `
`

func TestParse_Tables(t *testing.T) {
	doc := Parse(brandPage)

	tables := ExtractTables(doc)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Token", "Hex", "Usage"}, tables[0].Headers)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "Primary Blue", tables[0].Rows[0]["Token"])
	assert.Equal(t, "#1E3A8A", tables[0].Rows[0]["Hex"])
	assert.Equal(t, "Buttons", tables[0].Rows[1]["Usage"])
}

func TestParse_CodeBlocksFilteredByLanguage(t *testing.T) {
	doc := Parse(brandPage)

	css := ExtractCodeBlocks(doc, "css", "scss")
	require.Len(t, css, 1)
	assert.Contains(t, css[0], "--color-primary: #1e3a8a;")

	assert.Len(t, ExtractCodeBlocks(doc), 2)
	assert.Len(t, ExtractCodeBlocks(doc, "CSS"), 1)
	assert.Empty(t, ExtractCodeBlocks(doc, "go"))
}

func TestParse_InlineCodeContributesText(t *testing.T) {
	doc := Parse("Use `--color-primary` for headings.\n")
	assert.Equal(t, "Use --color-primary for headings.", TextOf(doc))
}

func TestParse_HTMLTable(t *testing.T) {
	raw := "<table>\n<tr><th>Color</th><th>Value</th></tr>\n<tr><td>Ember</td><td>#DC2626</td></tr>\n</table>\n"
	tables := ExtractTables(Parse(raw))
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Color", "Value"}, tables[0].Headers)
	require.Len(t, tables[0].Rows, 1)
	assert.Equal(t, "#DC2626", tables[0].Rows[0]["Value"])
}

func TestParse_EmptyInput(t *testing.T) {
	doc := Parse("")
	require.NotNil(t, doc)
	assert.Empty(t, doc.Children)
	assert.Empty(t, ExtractTables(doc))
}

func cell(text string) *TableCell {
	return &TableCell{Children: []Node{&Text{Value: text}}}
}

func TestExtractTables_ShortRowsHaveMissingKeys(t *testing.T) {
	doc := &Document{Children: []Node{&Table{Rows: []*TableRow{
		{Cells: []*TableCell{cell("Name"), cell("Hex"), cell("Notes")}},
		{Cells: []*TableCell{cell("Void"), cell("#000000")}},
		{Cells: []*TableCell{cell("Dawn"), cell("#FFFFFF"), cell("bright"), cell("extra")}},
	}}}}

	tables := ExtractTables(doc)
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Rows, 2)

	short := tables[0].Rows[0]
	assert.Equal(t, "Void", short["Name"])
	_, ok := short["Notes"]
	assert.False(t, ok)

	assert.Len(t, tables[0].Rows[1], 3)
}

func TestExtractTables_HeaderOnlyAndEmptyTables(t *testing.T) {
	doc := &Document{Children: []Node{
		&Table{},
		&Table{Rows: []*TableRow{{Cells: []*TableCell{cell("Only")}}}},
	}}
	tables := ExtractTables(doc)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Only"}, tables[0].Headers)
	assert.Empty(t, tables[0].Rows)
}

func TestTextOf(t *testing.T) {
	tree := &Container{Kind: "p", Children: []Node{
		&Text{Value: "a"},
		&InlineCode{Value: "b"},
		&Container{Kind: "strong", Children: []Node{&Text{Value: "c"}}},
		&CodeBlock{Lang: "css", Value: "d"},
		&Table{Rows: []*TableRow{{Cells: []*TableCell{cell("e"), cell("f")}}}},
	}}
	assert.Equal(t, "abcdef", TextOf(tree))
	assert.Equal(t, "", TextOf(nil))
	assert.Equal(t, "", TextOf(&Container{Kind: "img"}))
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantMeta map[string]any
		wantBody string
	}{
		{
			name:     "with front matter",
			raw:      "---\ntitle: Factions\nversion: 2\n---\n\n# Body\n",
			wantMeta: map[string]any{"title": "Factions", "version": 2},
			wantBody: "# Body\n",
		},
		{
			name:     "no front matter",
			raw:      "# Just a body\n",
			wantBody: "# Just a body\n",
		},
		{
			name:     "unterminated block",
			raw:      "---\ntitle: x\n# Body\n",
			wantBody: "---\ntitle: x\n# Body\n",
		},
		{
			name:     "invalid yaml",
			raw:      "---\n: [unclosed\n---\nbody\n",
			wantBody: "---\n: [unclosed\n---\nbody\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := SplitFrontMatter(tt.raw)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
