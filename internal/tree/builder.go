package tree

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// paragraphBreak is a blank line, optionally followed by more whitespace.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

// BuildFunc populates the content of a node through a child builder.
type BuildFunc func(b *Builder) error

// arena is the byte source shared by every builder of one document. Text
// leaves are appended once and referenced by segment.
type arena struct {
	buf []byte
}

func (a *arena) add(s string) text.Segment {
	start := len(a.buf)
	a.buf = append(a.buf, s...)
	return text.NewSegment(start, len(a.buf))
}

// Builder constructs a Document node by node. A root builder comes from
// New; constructors that take content hand a child builder to their
// BuildFunc and return whatever error it returns.
type Builder struct {
	arena  *arena
	parent ast.Node
	// para is the implicit paragraph collecting inline content inside
	// block containers
	para ast.Node
}

// New returns a builder for an empty document
func New() *Builder {
	return &Builder{
		arena:  &arena{},
		parent: ast.NewDocument(),
	}
}

// Build finalizes the root builder into a Document
func (b *Builder) Build() *Document {
	b.closeParagraph()
	root, ok := b.parent.(*ast.Document)
	if !ok {
		panic("tree: Build called on a child builder")
	}
	return &Document{Root: root, Source: b.arena.buf}
}

func (b *Builder) child(parent ast.Node) *Builder {
	return &Builder{arena: b.arena, parent: parent}
}

// nest runs build against a child builder for n, then closes its paragraph.
func (b *Builder) nest(n ast.Node, build BuildFunc) error {
	if build == nil {
		return nil
	}
	c := b.child(n)
	if err := build(c); err != nil {
		return err
	}
	c.closeParagraph()
	return nil
}

// wrapsInline reports whether inline content added to the current parent
// needs an implicit paragraph.
func (b *Builder) wrapsInline() bool {
	switch b.parent.Kind() {
	case ast.KindDocument, ast.KindBlockquote, ast.KindListItem:
		return true
	case KindElement:
		el := b.parent.(*Element)
		return el.Block && !phrasing[el.Tag]
	}
	return false
}

// phrasing block elements hold inline content directly
var phrasing = map[string]bool{
	"summary":    true,
	"p":          true,
	"figcaption": true,
	"caption":    true,
	"dt":         true,
}

func (b *Builder) tightItem() bool {
	if b.parent.Kind() != ast.KindListItem {
		return false
	}
	list, ok := b.parent.Parent().(*ast.List)
	return ok && list.IsTight
}

func (b *Builder) appendInline(n ast.Node) {
	if !b.wrapsInline() {
		b.parent.AppendChild(b.parent, n)
		return
	}
	if b.para == nil {
		if b.tightItem() {
			b.para = ast.NewTextBlock()
		} else {
			b.para = ast.NewParagraph()
		}
		b.parent.AppendChild(b.parent, b.para)
	}
	b.para.AppendChild(b.para, n)
}

func (b *Builder) appendBlock(n ast.Node) {
	b.closeParagraph()
	b.parent.AppendChild(b.parent, n)
}

// closeParagraph ends the implicit paragraph. Trailing whitespace and a
// trailing line break are dropped; a paragraph left empty is removed.
func (b *Builder) closeParagraph() {
	p := b.para
	if p == nil {
		return
	}
	b.para = nil
	for last := p.LastChild(); last != nil; last = p.LastChild() {
		t, ok := last.(*ast.Text)
		if !ok {
			break
		}
		t.SetHardLineBreak(false)
		t.Segment = t.Segment.TrimRightSpace(b.arena.buf)
		if !t.Segment.IsEmpty() {
			break
		}
		p.RemoveChild(p, t)
	}
	if p.ChildCount() == 0 {
		b.parent.RemoveChild(b.parent, p)
	}
}

// Paragraph appends an explicit paragraph
func (b *Builder) Paragraph(build BuildFunc) error {
	p := ast.NewParagraph()
	b.appendBlock(p)
	return b.nest(p, build)
}

// Heading appends a heading of the given depth (1-6)
func (b *Builder) Heading(depth int, build BuildFunc) error {
	if depth < 1 || depth > 6 {
		return fmt.Errorf("heading depth %d out of range 1-6", depth)
	}
	h := ast.NewHeading(depth)
	b.appendBlock(h)
	return b.nest(h, build)
}

// BlockQuote appends a block quote
func (b *Builder) BlockQuote(build BuildFunc) error {
	q := ast.NewBlockquote()
	b.appendBlock(q)
	return b.nest(q, build)
}

// ListBuilder adds items to a list
type ListBuilder struct {
	b    *Builder
	list *ast.List
}

// Item appends one list item
func (l *ListBuilder) Item(build BuildFunc) error {
	offset := 2
	if l.list.IsOrdered() {
		offset = len(fmt.Sprint(l.list.Start+l.list.ChildCount())) + 2
	}
	item := ast.NewListItem(offset)
	l.list.AppendChild(l.list, item)
	return l.b.nest(item, build)
}

// List appends a list. Ordered lists count from start; spread lists
// separate their items with blank lines.
func (b *Builder) List(ordered bool, start int, spread bool, build func(l *ListBuilder) error) error {
	marker := byte('-')
	if ordered {
		marker = '.'
	} else {
		start = 0
	}
	list := ast.NewList(marker)
	list.Start = start
	list.IsTight = !spread
	b.appendBlock(list)
	if build == nil {
		return nil
	}
	return build(&ListBuilder{b: b.child(list), list: list})
}

// TableBuilder adds rows to a table
type TableBuilder struct {
	b      *Builder
	table  *east.Table
	header bool
}

// RowBuilder adds cells to a table row
type RowBuilder struct {
	b   *Builder
	row ast.Node
}

// Row appends a row. A header row is only honored as the first row;
// later header rows become ordinary rows.
func (t *TableBuilder) Row(header bool, build func(r *RowBuilder) error) error {
	var row ast.Node
	if header && t.table.ChildCount() == 0 {
		row = east.NewTableHeader(east.NewTableRow(nil))
		t.header = true
	} else {
		row = east.NewTableRow(nil)
	}
	t.table.AppendChild(t.table, row)
	if build == nil {
		return nil
	}
	return build(&RowBuilder{b: t.b.child(row), row: row})
}

// Cell appends one cell
func (r *RowBuilder) Cell(build BuildFunc) error {
	cell := east.NewTableCell()
	cell.Alignment = east.AlignNone
	r.row.AppendChild(r.row, cell)
	return r.b.nest(cell, build)
}

// Table appends a table. Markdown tables always have a header row, so a
// table built without one gets an empty header as wide as its widest row.
func (b *Builder) Table(build func(t *TableBuilder) error) error {
	table := east.NewTable()
	b.appendBlock(table)
	tb := &TableBuilder{b: b.child(table), table: table}
	if build != nil {
		if err := build(tb); err != nil {
			return err
		}
	}

	columns := 0
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		columns = max(columns, row.ChildCount())
	}
	if !tb.header && columns > 0 {
		head := east.NewTableHeader(east.NewTableRow(nil))
		for range columns {
			cell := east.NewTableCell()
			cell.Alignment = east.AlignNone
			head.AppendChild(head, cell)
		}
		table.InsertBefore(table, table.FirstChild(), head)
	}
	table.Alignments = make([]east.Alignment, columns)
	for i := range table.Alignments {
		table.Alignments[i] = east.AlignNone
	}
	return nil
}

// Code appends a fenced code block holding value verbatim
func (b *Builder) Code(value, lang string) error {
	var info *ast.Text
	if lang != "" {
		info = ast.NewTextSegment(b.arena.add(lang))
	}
	code := ast.NewFencedCodeBlock(info)
	b.addLines(code, value)
	b.appendBlock(code)
	return nil
}

// HTML appends a raw HTML block
func (b *Builder) HTML(value string) error {
	block := ast.NewHTMLBlock(ast.HTMLBlockType7)
	b.addLines(block, value)
	b.appendBlock(block)
	return nil
}

func (b *Builder) addLines(n ast.Node, value string) {
	if value == "" {
		return
	}
	if !strings.HasSuffix(value, "\n") {
		value += "\n"
	}
	lines := n.Lines()
	for _, line := range strings.SplitAfter(value, "\n") {
		if line != "" {
			lines.Append(b.arena.add(line))
		}
	}
}

// ThematicBreak appends a horizontal rule
func (b *Builder) ThematicBreak() error {
	b.appendBlock(ast.NewThematicBreak())
	return nil
}

// LineBreak appends a hard line break
func (b *Builder) LineBreak() error {
	t := ast.NewTextSegment(b.arena.add(""))
	t.SetHardLineBreak(true)
	b.appendInline(t)
	return nil
}

// Strong appends strongly emphasized content
func (b *Builder) Strong(build BuildFunc) error {
	return b.inline(ast.NewEmphasis(2), build)
}

// Emphasis appends emphasized content
func (b *Builder) Emphasis(build BuildFunc) error {
	return b.inline(ast.NewEmphasis(1), build)
}

// Delete appends struck-through content
func (b *Builder) Delete(build BuildFunc) error {
	return b.inline(east.NewStrikethrough(), build)
}

func (b *Builder) inline(n ast.Node, build BuildFunc) error {
	b.appendInline(n)
	return b.nest(n, build)
}

// InlineCode appends a code span holding value verbatim
func (b *Builder) InlineCode(value string) error {
	span := ast.NewCodeSpan()
	span.AppendChild(span, ast.NewRawTextSegment(b.arena.add(value)))
	b.appendInline(span)
	return nil
}

// Link appends a link whose content is built by build
func (b *Builder) Link(url, title string, build BuildFunc) error {
	link := ast.NewLink()
	link.Destination = []byte(url)
	if title != "" {
		link.Title = []byte(title)
	}
	return b.inline(link, build)
}

// Image appends an image. alt is stored as text and must already be escaped.
func (b *Builder) Image(url, alt, title string) error {
	link := ast.NewLink()
	link.Destination = []byte(url)
	if title != "" {
		link.Title = []byte(title)
	}
	img := ast.NewImage(link)
	if alt != "" {
		img.AppendChild(img, ast.NewTextSegment(b.arena.add(alt)))
	}
	b.appendInline(img)
	return nil
}

// Element appends an inline raw HTML element
func (b *Builder) Element(tag string, attrs []html.Attribute, build BuildFunc) error {
	return b.inline(NewElement(tag, attrs, false), build)
}

// BlockElement appends a raw HTML element between blocks
func (b *Builder) BlockElement(tag string, attrs []html.Attribute, build BuildFunc) error {
	el := NewElement(tag, attrs, true)
	b.appendBlock(el)
	return b.nest(el, build)
}

// VoidElement appends an inline element without content, like img
func (b *Builder) VoidElement(tag string, attrs []html.Attribute) error {
	el := NewElement(tag, attrs, false)
	el.Void = true
	b.appendInline(el)
	return nil
}

// Text appends a text leaf. The value is stored as is, so callers escape it
// first. Inside block containers a blank line starts a new paragraph;
// elsewhere, and for single newlines, line breaks become hard breaks.
func (b *Builder) Text(value string) error {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	if !b.wrapsInline() {
		b.lines(value)
		return nil
	}
	for i, chunk := range paragraphBreak.Split(value, -1) {
		if i > 0 {
			b.closeParagraph()
		}
		if b.para == nil {
			chunk = strings.TrimLeft(chunk, " \t\n")
		}
		if chunk == "" {
			continue
		}
		b.lines(chunk)
	}
	return nil
}

func (b *Builder) lines(value string) {
	if value == "" {
		return
	}
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		last := i == len(lines)-1
		if last && line == "" && i > 0 {
			break
		}
		t := ast.NewTextSegment(b.arena.add(line))
		t.SetHardLineBreak(!last)
		b.appendInline(t)
	}
}
