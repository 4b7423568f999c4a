// Package render writes the shared markup tree out as HTML, plain text,
// BBCode or styled terminal output. Markdown output lives on the tree
// itself.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gerunddev/markbridge/internal/tree"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// HTMLOptions configure HTML output
type HTMLOptions struct {
	// Sanitize filters the output through a user generated content policy
	Sanitize bool
	// HighlightStyle names a chroma style for fenced code; empty disables
	// highlighting
	HighlightStyle string
}

// HTML renders doc as an HTML fragment.
func HTML(doc *tree.Document, opts HTMLOptions) (string, error) {
	nodeRenderers := []util.PrioritizedValue{
		util.Prioritized(&elementRenderer{}, 500),
	}
	if opts.HighlightStyle != "" {
		nodeRenderers = append(nodeRenderers, util.Prioritized(newCodeRenderer(opts.HighlightStyle), 100))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, emoji.Emoji),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(nodeRenderers...),
		),
	)

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, doc.Source, doc.Root); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	if opts.Sanitize {
		return policy().Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

var cssValue = regexp.MustCompile(`^[\w\s#%(),.'-]+$`)

// policy allows what the parsers generate on top of the UGC policy
func policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "span", "details", "summary")
	p.AllowStyles(
		"color", "background-color",
		"font-size", "font-family", "font-weight", "font-style",
		"text-align", "text-decoration",
	).Matching(cssValue).OnElements("span", "pre", "code")
	p.AllowAttrs("width", "height").Matching(bluemonday.Number).OnElements("img")
	return p
}

// elementRenderer writes Element nodes as the raw tags they stand for
type elementRenderer struct{}

func (r *elementRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(tree.KindElement, r.render)
}

func (r *elementRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	el := node.(*tree.Element)
	if entering {
		_, _ = w.WriteString(el.OpenTag())
		if el.Void {
			if el.Block {
				_ = w.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		}
		if el.Block && el.FirstChild() != nil && el.FirstChild().Type() == ast.TypeBlock {
			_ = w.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(el.CloseTag())
	if el.Block {
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

// codeRenderer highlights fenced code blocks with chroma
type codeRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newCodeRenderer(style string) *codeRenderer {
	return &codeRenderer{
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.WithClasses(false)),
	}
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lexer := lexers.Fallback
	if lang := string(n.Language(source)); lang != "" {
		if l := lexers.Get(lang); l != nil {
			lexer = l
		}
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, fmt.Errorf("failed to tokenise code: %w", err)
	}
	if err := r.formatter.Format(w, r.style, it); err != nil {
		return ast.WalkStop, fmt.Errorf("failed to highlight code: %w", err)
	}
	return ast.WalkSkipChildren, nil
}
