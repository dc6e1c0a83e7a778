package markdown

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	md "gitlab.com/golang-commonmark/markdown"
)

var parser = md.New(
	md.HTML(true),
	md.Tables(true),
	md.Linkify(false),
	md.Typographer(false),
)

// Parse converts raw markdown into a Document. Parsing never fails: input
// the parser does not understand ends up as plain text.
func Parse(raw string) *Document {
	b := newBuilder()
	for _, tok := range parser.Parse([]byte(raw)) {
		b.block(tok)
	}
	return b.doc
}

// builder assembles the node tree from the flat token stream.
type builder struct {
	doc   *Document
	stack []Node
}

func newBuilder() *builder {
	doc := &Document{}
	return &builder{doc: doc, stack: []Node{doc}}
}

func (b *builder) top() Node {
	return b.stack[len(b.stack)-1]
}

func (b *builder) push(n Node) {
	b.append(n)
	b.stack = append(b.stack, n)
}

func (b *builder) pop() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// append attaches n to the innermost open node. Rows only attach to tables
// and cells only to rows; anything else attaches as a child.
func (b *builder) append(n Node) {
	switch parent := b.top().(type) {
	case *Document:
		parent.Children = append(parent.Children, n)
	case *Container:
		parent.Children = append(parent.Children, n)
	case *TableCell:
		parent.Children = append(parent.Children, n)
	case *Table:
		if row, ok := n.(*TableRow); ok {
			parent.Rows = append(parent.Rows, row)
		}
	case *TableRow:
		if cell, ok := n.(*TableCell); ok {
			parent.Cells = append(parent.Cells, cell)
		}
	}
}

func (b *builder) block(tok md.Token) {
	switch tok := tok.(type) {
	case *md.TableOpen:
		b.push(&Table{})
	case *md.TrOpen:
		b.push(&TableRow{})
	case *md.ThOpen, *md.TdOpen:
		b.push(&TableCell{})
	case *md.TheadOpen, *md.TheadClose, *md.TbodyOpen, *md.TbodyClose:
		// rows attach directly to the table
	case *md.Fence:
		b.append(&CodeBlock{Lang: fenceLang(tok.Params), Value: tok.Content})
	case *md.CodeBlock:
		b.append(&CodeBlock{Value: tok.Content})
	case *md.HTMLBlock:
		b.htmlBlock(tok.Content)
	case *md.Inline:
		for _, child := range tok.Children {
			b.inline(child)
		}
	default:
		b.generic(tok)
	}
}

func (b *builder) inline(tok md.Token) {
	switch tok := tok.(type) {
	case *md.Text:
		b.append(&Text{Value: tok.Content})
	case *md.CodeInline:
		b.append(&InlineCode{Value: tok.Content})
	case *md.Softbreak, *md.Hardbreak:
		b.append(&Text{Value: "\n"})
	case *md.Image:
		b.append(&Container{Kind: "img"})
	case *md.HTMLInline:
		// raw inline markup carries no text
	default:
		b.generic(tok)
	}
}

// generic handles paired open/close tokens that only group children.
func (b *builder) generic(tok md.Token) {
	switch {
	case tok.Opening():
		b.push(&Container{Kind: tok.Tag()})
	case tok.Closing():
		b.pop()
	}
}

// htmlBlock turns embedded HTML tables into Table nodes. Other raw HTML is
// kept as text.
func (b *builder) htmlBlock(content string) {
	if !strings.Contains(strings.ToLower(content), "<table") {
		b.append(&Text{Value: content})
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		b.append(&Text{Value: content})
		return
	}
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		b.append(htmlTable(sel))
	})
}

func htmlTable(sel *goquery.Selection) *Table {
	table := &Table{}
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		row := &TableRow{}
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row.Cells = append(row.Cells, &TableCell{
				Children: []Node{&Text{Value: strings.TrimSpace(cell.Text())}},
			})
		})
		table.Rows = append(table.Rows, row)
	})
	return table
}

func fenceLang(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
