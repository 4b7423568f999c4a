package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	emoji "github.com/yuin/goldmark-emoji/ast"
	"gopkg.in/yaml.v3"
)

// Markdown serializes the document as CommonMark with GFM tables,
// strikethrough and task items. Elements are written as inline HTML, or as
// HTML blocks separated by blank lines when they are block elements.
func (d *Document) Markdown() string {
	w := &mdWriter{source: d.Source}
	var sb strings.Builder
	if len(d.Meta) > 0 {
		if data, err := yaml.Marshal(d.Meta); err == nil {
			sb.WriteString("---\n")
			sb.Write(data)
			sb.WriteString("---\n\n")
		}
	}
	body := w.container(d.Root)
	if body != "" {
		sb.WriteString(body)
		sb.WriteByte('\n')
	}
	return sb.String()
}

type mdWriter struct {
	source []byte
	// inCell replaces line breaks with <br>, which is all a table cell can hold
	inCell bool
	// inHeading flattens line breaks into spaces
	inHeading bool
}

// container renders mixed children: runs of inline nodes become one
// paragraph, blocks stand alone, and chunks are separated by blank lines.
func (w *mdWriter) container(n ast.Node) string {
	var chunks []string
	var run strings.Builder
	flush := func() {
		if s := strings.TrimSpace(run.String()); s != "" {
			chunks = append(chunks, s)
		}
		run.Reset()
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeInline {
			run.WriteString(w.inline(c, c.NextSibling() == nil))
			continue
		}
		flush()
		if s := w.block(c); s != "" {
			chunks = append(chunks, s)
		}
	}
	flush()
	return strings.Join(chunks, "\n\n")
}

func (w *mdWriter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return w.inlines(n)
	case *ast.Heading:
		w.inHeading = true
		defer func() { w.inHeading = false }()
		return strings.Repeat("#", n.Level) + " " + w.inlines(n)
	case *ast.ThematicBreak:
		return "---"
	case *ast.FencedCodeBlock:
		lang := ""
		if n.Info != nil {
			lang = string(n.Info.Segment.Value(w.source))
		}
		return fence(string(n.Lines().Value(w.source)), lang)
	case *ast.CodeBlock:
		return fence(string(n.Lines().Value(w.source)), "")
	case *ast.HTMLBlock:
		var sb strings.Builder
		sb.Write(n.Lines().Value(w.source))
		if n.HasClosure() {
			sb.Write(n.ClosureLine.Value(w.source))
		}
		return strings.TrimRight(sb.String(), "\n")
	case *ast.Blockquote:
		return prefixLines(w.container(n), "> ", ">")
	case *ast.List:
		return w.list(n)
	case *east.Table:
		return w.table(n)
	case *Element:
		return w.element(n)
	}
	return w.container(n)
}

func (w *mdWriter) list(n *ast.List) string {
	var items []string
	number := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if n.IsOrdered() {
			marker = strconv.Itoa(number) + string(n.Marker)
			number++
		}
		body := w.container(item)
		indent := strings.Repeat(" ", len(marker)+1)
		body = prefixLines(body, indent, "")
		items = append(items, marker+" "+strings.TrimPrefix(body, indent))
	}
	if n.IsTight {
		return strings.Join(items, "\n")
	}
	return strings.Join(items, "\n\n")
}

func (w *mdWriter) table(n *east.Table) string {
	w.inCell = true
	defer func() { w.inCell = false }()

	columns := len(n.Alignments)
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.ReplaceAll(w.inlines(cell), "|", `\|`))
		}
		columns = max(columns, len(cells))
		rows = append(rows, cells)
	}
	if len(rows) == 0 || columns == 0 {
		return ""
	}

	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for i := range columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" " + cell + " |")
		}
		return sb.String()
	}
	delim := make([]string, columns)
	for i := range delim {
		align := east.AlignNone
		if i < len(n.Alignments) {
			align = n.Alignments[i]
		}
		switch align {
		case east.AlignLeft:
			delim[i] = ":---"
		case east.AlignRight:
			delim[i] = "---:"
		case east.AlignCenter:
			delim[i] = ":---:"
		default:
			delim[i] = "---"
		}
	}

	out := []string{line(rows[0]), line(delim)}
	for _, cells := range rows[1:] {
		out = append(out, line(cells))
	}
	return strings.Join(out, "\n")
}

func (w *mdWriter) element(n *Element) string {
	if n.Void {
		return n.OpenTag()
	}
	if !n.Block {
		return n.OpenTag() + w.inlines(n) + n.CloseTag()
	}
	allInline := true
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeInline {
			allInline = false
			break
		}
	}
	if allInline {
		return n.OpenTag() + strings.TrimSpace(w.inlines(n)) + n.CloseTag()
	}
	return n.OpenTag() + "\n\n" + w.container(n) + "\n\n" + n.CloseTag()
}

// inlines renders the children of n. A line break after the last child is
// dropped because Markdown has no way to express it.
func (w *mdWriter) inlines(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeInline {
			sb.WriteString("\n\n" + w.block(c) + "\n\n")
			continue
		}
		sb.WriteString(w.inline(c, c.NextSibling() == nil))
	}
	return sb.String()
}

func (w *mdWriter) inline(n ast.Node, last bool) string {
	switch n := n.(type) {
	case *ast.Text:
		value := string(n.Segment.Value(w.source))
		if last {
			return value
		}
		switch {
		case n.HardLineBreak():
			return value + w.hardBreak()
		case n.SoftLineBreak():
			return value + w.softBreak()
		}
		return value
	case *ast.String:
		return string(n.Value)
	case *ast.CodeSpan:
		var sb strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(w.source))
			}
		}
		return codeSpan(sb.String())
	case *ast.Emphasis:
		return delimit(strings.Repeat("*", n.Level), w.inlines(n))
	case *east.Strikethrough:
		return delimit("~~", w.inlines(n))
	case *ast.Link:
		return "[" + w.inlines(n) + "](" + destination(n.Destination, n.Title) + ")"
	case *ast.Image:
		return "![" + w.inlines(n) + "](" + destination(n.Destination, n.Title) + ")"
	case *ast.AutoLink:
		return "<" + string(n.Label(w.source)) + ">"
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(w.source))
		}
		return sb.String()
	case *east.TaskCheckBox:
		if n.IsChecked {
			return "[x] "
		}
		return "[ ] "
	case *emoji.Emoji:
		return ":" + string(n.ShortName) + ":"
	case *Element:
		return w.element(n)
	}
	return w.inlines(n)
}

func (w *mdWriter) hardBreak() string {
	switch {
	case w.inCell:
		return "<br>"
	case w.inHeading:
		return " "
	}
	return "\\\n"
}

func (w *mdWriter) softBreak() string {
	if w.inCell || w.inHeading {
		return " "
	}
	return "\n"
}

// fence wraps code in a backtick fence longer than any backtick run inside it.
func fence(code, lang string) string {
	marker := strings.Repeat("`", max(3, longestRun(code, '`')+1))
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return marker + lang + "\n" + code + marker
}

func codeSpan(code string) string {
	marker := strings.Repeat("`", longestRun(code, '`')+1)
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") ||
		(strings.HasPrefix(code, " ") && strings.HasSuffix(code, " ") && strings.TrimSpace(code) != "") {
		code = " " + code + " "
	}
	return marker + code + marker
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

func destination(url, title []byte) string {
	dest := string(url)
	if dest == "" || strings.ContainsAny(dest, " ()<>") {
		dest = "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(dest) + ">"
	}
	if len(title) > 0 {
		dest += fmt.Sprintf(` "%s"`, strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(string(title)))
	}
	return dest
}

// prefixLines prefixes every line of s, using blank for empty lines.
func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blank
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// delimit wraps inner in mark. Delimiters must touch the text to count as
// emphasis, so surrounding whitespace moves outside them, and an inner
// run of only whitespace gets no delimiters at all.
func delimit(mark, inner string) string {
	core := strings.TrimSpace(inner)
	if core == "" {
		return inner
	}
	at := strings.Index(inner, core)
	return inner[:at] + mark + core + mark + inner[at+len(core):]
}
