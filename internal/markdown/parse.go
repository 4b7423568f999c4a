// Package markdown reads Markdown into the shared markup tree.
package markdown

import (
	"fmt"

	"github.com/gerunddev/markbridge/internal/tree"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Flavor selects the Markdown dialect
type Flavor string

const (
	// CommonMark is the core syntax only
	CommonMark Flavor = "commonmark"
	// GFM adds tables, strikethrough, autolinks and task lists
	GFM Flavor = "gfm"
)

// Flavors lists the supported dialects
var Flavors = []Flavor{CommonMark, GFM}

// Options configure the parser
type Options struct {
	Flavor Flavor
	// Emoji turns :shortcode: into emoji nodes
	Emoji bool
}

// Extensions returns the goldmark extensions for the options. Renderers
// use the same set so every parsed node has a renderer.
func (o Options) Extensions() []goldmark.Extender {
	var exts []goldmark.Extender
	if o.Flavor != CommonMark {
		exts = append(exts, extension.GFM)
	}
	if o.Emoji {
		exts = append(exts, emoji.Emoji)
	}
	return exts
}

// Parse reads Markdown input. A YAML front matter block is decoded into
// Document.Meta and removed from the body.
func Parse(input []byte, opts Options) (*tree.Document, error) {
	switch opts.Flavor {
	case "", CommonMark, GFM:
	default:
		return nil, fmt.Errorf("unknown markdown flavor %q", opts.Flavor)
	}

	meta, body, err := splitFrontMatter(string(input))
	if err != nil {
		return nil, err
	}

	source := []byte(body)
	md := goldmark.New(goldmark.WithExtensions(opts.Extensions()...))
	root := md.Parser().Parse(text.NewReader(source))

	doc := tree.NewDocument(root.(*ast.Document), source)
	doc.Meta = meta
	return doc, nil
}
