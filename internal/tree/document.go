// Package tree holds the shared markup tree every format is parsed into and
// rendered from. The tree is a goldmark AST plus the byte source its text
// segments point into, so any goldmark renderer can consume it directly.
package tree

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/net/html"
)

// Document is a finished markup tree
type Document struct {
	Root   *ast.Document
	Source []byte
	// Meta is the decoded front matter, nil when the input had none
	Meta map[string]any
}

// NewDocument wraps an already parsed goldmark tree
func NewDocument(root *ast.Document, source []byte) *Document {
	return &Document{Root: root, Source: source}
}

// KindElement is the node kind of raw HTML elements generated by parsers
// for constructs Markdown has no node for (underline, styled spans, spoilers).
var KindElement = ast.NewNodeKind("Element")

// Element is a raw HTML element wrapping child nodes.
type Element struct {
	ast.BaseBlock

	Tag   string
	Attrs []html.Attribute
	// Void elements (img, br) never have children or a closing tag
	Void bool
	// Block elements sit between blocks; others flow inside paragraphs
	Block bool
}

// NewElement returns a new Element node
func NewElement(tag string, attrs []html.Attribute, block bool) *Element {
	return &Element{Tag: tag, Attrs: attrs, Block: block}
}

// Kind implements ast.Node.Kind.
func (n *Element) Kind() ast.NodeKind {
	return KindElement
}

// Type implements ast.Node.Type.
func (n *Element) Type() ast.NodeType {
	if n.Block {
		return ast.TypeBlock
	}
	return ast.TypeInline
}

// Dump implements ast.Node.Dump.
func (n *Element) Dump(source []byte, level int) {
	m := map[string]string{
		"Tag":   n.Tag,
		"Block": fmt.Sprintf("%v", n.Block),
	}
	for _, a := range n.Attrs {
		m["Attr."+a.Key] = a.Val
	}
	ast.DumpHelper(n, source, level, m, nil)
}

// Attr returns the value of the named attribute
func (n *Element) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// OpenTag renders the start tag with escaped attribute values.
func (n *Element) OpenTag() string {
	return html.Token{Type: html.StartTagToken, Data: n.Tag, Attr: n.Attrs}.String()
}

// CloseTag renders the end tag, or nothing for void elements.
func (n *Element) CloseTag() string {
	if n.Void {
		return ""
	}
	return html.Token{Type: html.EndTagToken, Data: n.Tag}.String()
}

// Styles splits the style attribute into property/value pairs in order.
func (n *Element) Styles() [][2]string {
	style, ok := n.Attr("style")
	if !ok {
		return nil
	}
	var out [][2]string
	for _, decl := range strings.Split(style, ";") {
		prop, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(prop), strings.TrimSpace(value)})
	}
	return out
}
