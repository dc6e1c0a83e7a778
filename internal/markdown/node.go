// Package markdown parses wiki markdown into a closed tree of typed nodes and
// extracts tables and fenced code blocks from it.
package markdown

import "strings"

// Node is one element of a parsed document. The set of implementations is
// closed: Text, InlineCode, CodeBlock, Table, TableRow, TableCell, Container
// and Document.
type Node interface {
	isNode()
}

// Text is a run of plain text.
type Text struct {
	Value string
}

// InlineCode is a backtick code span.
type InlineCode struct {
	Value string
}

// CodeBlock is a fenced or indented code block. Lang is the first word of the
// fence info string and is empty for indented blocks.
type CodeBlock struct {
	Lang  string
	Value string
}

// Table is a table whose first row holds the headers.
type Table struct {
	Rows []*TableRow
}

// TableRow is one row of a table.
type TableRow struct {
	Cells []*TableCell
}

// TableCell is one cell of a row.
type TableCell struct {
	Children []Node
}

// Container groups children under a block or inline element such as a
// paragraph, heading, list item, emphasis or link. Kind is the HTML tag name
// of the element.
type Container struct {
	Kind     string
	Children []Node
}

// Document is the root of a parsed markdown text.
type Document struct {
	Children []Node
}

func (*Text) isNode()       {}
func (*InlineCode) isNode() {}
func (*CodeBlock) isNode()  {}
func (*Table) isNode()      {}
func (*TableRow) isNode()   {}
func (*TableCell) isNode()  {}
func (*Container) isNode()  {}
func (*Document) isNode()   {}

// TextOf returns the concatenated leaf values below n. Text, inline code and
// code blocks contribute their values; every other node contributes the text
// of its children. A nil node yields the empty string.
func TextOf(n Node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Text:
		b.WriteString(n.Value)
	case *InlineCode:
		b.WriteString(n.Value)
	case *CodeBlock:
		b.WriteString(n.Value)
	case *Table:
		for _, row := range n.Rows {
			writeText(b, row)
		}
	case *TableRow:
		for _, cell := range n.Cells {
			writeText(b, cell)
		}
	case *TableCell:
		for _, child := range n.Children {
			writeText(b, child)
		}
	case *Container:
		for _, child := range n.Children {
			writeText(b, child)
		}
	case *Document:
		for _, child := range n.Children {
			writeText(b, child)
		}
	}
}

// Walk visits n and its descendants depth-first in document order. Children
// of a node are skipped when fn returns false for it.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Table:
		for _, row := range n.Rows {
			Walk(row, fn)
		}
	case *TableRow:
		for _, cell := range n.Cells {
			Walk(cell, fn)
		}
	case *TableCell:
		for _, child := range n.Children {
			Walk(child, fn)
		}
	case *Container:
		for _, child := range n.Children {
			Walk(child, fn)
		}
	case *Document:
		for _, child := range n.Children {
			Walk(child, fn)
		}
	}
}
