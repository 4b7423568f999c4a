package render

import (
	"strconv"
	"strings"

	"github.com/gerunddev/markbridge/internal/mdtext"
	"github.com/gerunddev/markbridge/internal/tree"
	emoji "github.com/yuin/goldmark-emoji/ast"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// Text renders doc as plain text: markup is dropped, blocks are separated
// by blank lines, list items keep a marker and table cells are separated
// by tabs.
func Text(doc *tree.Document) string {
	w := &textWriter{source: doc.Source}
	out := w.container(doc.Root)
	if out == "" {
		return ""
	}
	return out + "\n"
}

type textWriter struct {
	source []byte
}

func (w *textWriter) container(n ast.Node) string {
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
			run.WriteString(w.inline(c))
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

func (w *textWriter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return strings.TrimSpace(w.inlines(n))
	case *ast.ThematicBreak:
		return "---"
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return strings.TrimRight(string(n.Lines().Value(w.source)), "\n")
	case *ast.HTMLBlock:
		return ""
	case *ast.Blockquote:
		return prefixLines(w.container(n), "  ")
	case *ast.List:
		var items []string
		number := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "-"
			if n.IsOrdered() {
				marker = strconv.Itoa(number) + "."
				number++
			}
			indent := strings.Repeat(" ", len(marker)+1)
			body := strings.TrimPrefix(prefixLines(w.container(item), indent), indent)
			items = append(items, marker+" "+body)
		}
		return strings.Join(items, "\n")
	case *east.Table:
		var rows []string
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			empty := true
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				s := strings.TrimSpace(w.inlines(cell))
				empty = empty && s == ""
				cells = append(cells, s)
			}
			if !empty {
				rows = append(rows, strings.Join(cells, "\t"))
			}
		}
		return strings.Join(rows, "\n")
	}
	return w.container(n)
}

func (w *textWriter) inlines(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeInline {
			sb.WriteString("\n\n" + w.block(c) + "\n\n")
			continue
		}
		sb.WriteString(w.inline(c))
	}
	return sb.String()
}

func (w *textWriter) inline(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Text:
		value := mdtext.Unescape(string(n.Segment.Value(w.source)))
		if n.HardLineBreak() || n.SoftLineBreak() {
			value += "\n"
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
		return sb.String()
	case *ast.Link:
		label := w.inlines(n)
		dest := string(n.Destination)
		if label == "" || label == dest || "mailto:"+label == dest {
			return dest
		}
		return label + " (" + dest + ")"
	case *ast.Image:
		return w.inlines(n)
	case *ast.AutoLink:
		return string(n.Label(w.source))
	case *ast.RawHTML:
		return ""
	case *east.TaskCheckBox:
		if n.IsChecked {
			return "[x] "
		}
		return "[ ] "
	case *emoji.Emoji:
		if n.Value != nil && n.Value.IsUnicode() {
			return string(n.Value.Unicode)
		}
		return ":" + string(n.ShortName) + ":"
	case *tree.Element:
		if n.Void {
			alt, _ := n.Attr("alt")
			return alt
		}
	}
	return w.inlines(n)
}

// prefixLines prefixes every non-empty line of s
func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
