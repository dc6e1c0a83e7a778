package markdown

import "strings"

// TableData is a table flattened into header-keyed records.
type TableData struct {
	Headers []string
	Rows    []map[string]string
}

// ExtractTables returns every table of doc in document order. The first row
// of a table is always the header row. A row with fewer cells than headers
// has no entry for the missing columns; extra cells are dropped.
func ExtractTables(doc *Document) []TableData {
	var tables []TableData
	Walk(doc, func(n Node) bool {
		table, ok := n.(*Table)
		if !ok {
			return true
		}
		if len(table.Rows) > 0 {
			tables = append(tables, flatten(table))
		}
		return false
	})
	return tables
}

func flatten(table *Table) TableData {
	header := table.Rows[0]
	data := TableData{Headers: make([]string, len(header.Cells))}
	for i, cell := range header.Cells {
		data.Headers[i] = strings.TrimSpace(TextOf(cell))
	}
	for _, row := range table.Rows[1:] {
		record := make(map[string]string, len(data.Headers))
		for i, cell := range row.Cells {
			if i >= len(data.Headers) {
				break
			}
			record[data.Headers[i]] = strings.TrimSpace(TextOf(cell))
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

// ExtractCodeBlocks returns the contents of code blocks whose language is one
// of langs, compared case-insensitively. With no langs every block matches.
func ExtractCodeBlocks(doc *Document, langs ...string) []string {
	var blocks []string
	Walk(doc, func(n Node) bool {
		block, ok := n.(*CodeBlock)
		if !ok {
			return true
		}
		if matchesLang(block.Lang, langs) {
			blocks = append(blocks, block.Value)
		}
		return false
	})
	return blocks
}

func matchesLang(lang string, langs []string) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if strings.EqualFold(lang, l) {
			return true
		}
	}
	return false
}
