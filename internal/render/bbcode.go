package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gerunddev/markbridge/internal/mdtext"
	"github.com/gerunddev/markbridge/internal/tree"
	emoji "github.com/yuin/goldmark-emoji/ast"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// BBCode renders doc as BBCode using the tags the BBCode parser reads, so
// its output parses back into an equivalent tree. Raw HTML blocks have no
// BBCode form and are dropped.
func BBCode(doc *tree.Document) string {
	w := &bbWriter{source: doc.Source}
	out := w.container(doc.Root)
	if out == "" {
		return ""
	}
	return out + "\n"
}

type bbWriter struct {
	source []byte
}

func wrapTag(name, param, content string) string {
	open := name
	if param != "" {
		open += "=" + param
	}
	return "[" + open + "]" + content + "[/" + name + "]"
}

// quoteParam quotes a parameter value when it would end the tag early
func quoteParam(v string) string {
	if strings.ContainsAny(v, " \t\n]") {
		return `"` + strings.ReplaceAll(v, `"`, "'") + `"`
	}
	return v
}

func (w *bbWriter) container(n ast.Node) string {
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

func (w *bbWriter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return strings.TrimSpace(w.inlines(n))
	case *ast.Heading:
		return wrapTag("h"+strconv.Itoa(n.Level), "", strings.TrimSpace(w.inlines(n)))
	case *ast.ThematicBreak:
		return "[hr]"
	case *ast.FencedCodeBlock:
		return wrapTag("code", quoteParam(string(n.Language(w.source))), "\n"+string(n.Lines().Value(w.source)))
	case *ast.CodeBlock:
		return wrapTag("code", "", "\n"+string(n.Lines().Value(w.source)))
	case *ast.HTMLBlock:
		return ""
	case *ast.Blockquote:
		return wrapTag("quote", "", "\n"+w.container(n)+"\n")
	case *ast.List:
		return w.list(n)
	case *east.Table:
		return w.table(n)
	case *tree.Element:
		return w.element(n)
	}
	return w.container(n)
}

func (w *bbWriter) list(n *ast.List) string {
	var sb strings.Builder
	switch {
	case !n.IsOrdered():
		sb.WriteString("[list]")
	case n.Start > 1:
		fmt.Fprintf(&sb, "[list=%d]", n.Start)
	default:
		sb.WriteString("[list=1]")
	}
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		sb.WriteString("\n[*]" + w.container(item))
	}
	sb.WriteString("\n[/list]")
	return sb.String()
}

func (w *bbWriter) table(n *east.Table) string {
	var sb strings.Builder
	sb.WriteString("[table]")
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		cell := "td"
		if row.Kind() == east.KindTableHeader {
			cell = "th"
		}
		var cells strings.Builder
		empty := true
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			s := strings.TrimSpace(w.inlines(c))
			empty = empty && s == ""
			cells.WriteString(wrapTag(cell, "", s))
		}
		// the empty header Markdown tables require has no BBCode counterpart
		if empty && cell == "th" {
			continue
		}
		sb.WriteString("\n" + wrapTag("tr", "", cells.String()))
	}
	sb.WriteString("\n[/table]")
	return sb.String()
}

// element maps raw HTML elements back to the tags that produce them.
func (w *bbWriter) element(n *tree.Element) string {
	switch n.Tag {
	case "img":
		src, _ := n.Attr("src")
		width, _ := n.Attr("width")
		height, _ := n.Attr("height")
		switch {
		case width != "" && height != "":
			return wrapTag("img", width+"x"+height, src)
		case width != "":
			return `[img width="` + width + `"]` + src + "[/img]"
		case height != "":
			return `[img height="` + height + `"]` + src + "[/img]"
		}
		return wrapTag("img", "", src)
	case "u":
		return wrapTag("u", "", w.inlines(n))
	case "details":
		var summary string
		var body []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if el, ok := c.(*tree.Element); ok && el.Tag == "summary" {
				summary = strings.TrimSpace(mdtext.Unescape(w.inlines(el)))
				continue
			}
			if c.Type() == ast.TypeInline {
				body = append(body, w.inline(c))
			} else {
				body = append(body, w.block(c))
			}
		}
		return wrapTag("spoiler", quoteParam(summary), strings.Join(body, "\n\n"))
	case "span":
		content := w.inlines(n)
		for _, decl := range n.Styles() {
			content = styleTag(decl[0], decl[1], content)
		}
		return content
	}
	if n.Block {
		return w.container(n)
	}
	return w.inlines(n)
}

func styleTag(prop, value, content string) string {
	switch prop {
	case "color":
		return wrapTag("color", quoteParam(value), content)
	case "font-size":
		return wrapTag("size", strings.TrimSuffix(value, "px"), content)
	case "font-family":
		return wrapTag("font", quoteParam(value), content)
	case "text-align":
		switch value {
		case "center", "left", "right", "justify":
			return wrapTag(value, "", content)
		}
	}
	return content
}

func (w *bbWriter) inlines(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeInline {
			sb.WriteString("\n" + w.block(c) + "\n")
			continue
		}
		sb.WriteString(w.inline(c))
	}
	return sb.String()
}

func (w *bbWriter) inline(n ast.Node) string {
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
		return wrapTag("pre", "", sb.String())
	case *ast.Emphasis:
		if n.Level >= 2 {
			return wrapTag("b", "", w.inlines(n))
		}
		return wrapTag("i", "", w.inlines(n))
	case *east.Strikethrough:
		return wrapTag("s", "", w.inlines(n))
	case *ast.Link:
		// a sized image is an img element linking to itself
		if el, ok := n.FirstChild().(*tree.Element); ok && n.ChildCount() == 1 && el.Tag == "img" {
			if src, _ := el.Attr("src"); src == string(n.Destination) {
				return w.element(el)
			}
		}
		return w.link(string(n.Destination), w.inlines(n))
	case *ast.AutoLink:
		label := string(n.Label(w.source))
		return w.link(string(n.URL(w.source)), label)
	case *ast.Image:
		alt := strings.TrimSpace(mdtext.Unescape(w.inlines(n)))
		if alt != "" {
			return "[img alt=\"" + strings.ReplaceAll(alt, `"`, "'") + "\"]" + string(n.Destination) + "[/img]"
		}
		return wrapTag("img", "", string(n.Destination))
	case *ast.RawHTML:
		return ""
	case *east.TaskCheckBox:
		if n.IsChecked {
			return "☑ "
		}
		return "☐ "
	case *emoji.Emoji:
		if n.Value != nil && n.Value.IsUnicode() {
			return string(n.Value.Unicode)
		}
		return ":" + string(n.ShortName) + ":"
	case *tree.Element:
		return w.element(n)
	}
	return w.inlines(n)
}

func (w *bbWriter) link(dest, label string) string {
	if email, ok := strings.CutPrefix(dest, "mailto:"); ok {
		if label == email || label == "" {
			return wrapTag("email", "", email)
		}
		return wrapTag("email", quoteParam(email), label)
	}
	if label == dest || label == "" {
		return wrapTag("url", "", dest)
	}
	return wrapTag("url", quoteParam(dest), label)
}
