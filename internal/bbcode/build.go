package bbcode

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gerunddev/markbridge/internal/mdtext"
	"github.com/gerunddev/markbridge/internal/tree"
	"golang.org/x/net/html"
)

var (
	colorPattern = regexp.MustCompile(`^(?:#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\(\s*[\d.%\s,]+\))$`)
	fontPattern  = regexp.MustCompile(`^[\w\s,'-]+$`)

	errNoDimensionDelimiter = errors.New("no dimension delimiter 'x' found")
	errColor                = errors.New("not a CSS color")
	errFont                 = errors.New("not a font family")
	errScheme               = errors.New("link scheme not allowed")
)

// linkSchemes are the schemes a link target may carry; targets without
// a scheme are relative and always allowed.
var linkSchemes = []string{"http", "https", "mailto"}

func (n *Node) build(b *tree.Builder) error {
	if n.Tag == nil {
		return n.buildContent(b)
	}
	return n.Tag.spec.build(n, b)
}

// buildContent builds the content of n without its tag. Text is escaped
// here, once, as it enters the tree.
func (n *Node) buildContent(b *tree.Builder) error {
	switch n.Inner.kind {
	case innerText:
		return b.Text(mdtext.Escape(n.Inner.text))
	case innerTree:
		for _, c := range n.Inner.nodes {
			if err := c.build(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildContent(n *Node, b *tree.Builder) error {
	return n.buildContent(b)
}

func (n *Node) content() tree.BuildFunc {
	return n.buildContent
}

// innerText returns the content of a tag that only takes text.
func (n *Node) innerText() (string, error) {
	switch n.Inner.kind {
	case innerText:
		return n.Inner.text, nil
	case innerTree:
		var sb strings.Builder
		for _, c := range n.Inner.nodes {
			if c.Tag != nil {
				return "", unexpectedTag(n.Tag, c.Tag)
			}
			sb.WriteString(c.Inner.text)
		}
		return sb.String(), nil
	}
	return "", nil
}

// requiredText is innerText trimmed, failing when nothing is left.
func (n *Node) requiredText() (string, error) {
	text, err := n.innerText()
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", missingInner(n.Tag)
	}
	return text, nil
}

func escaped(s string) tree.BuildFunc {
	return func(b *tree.Builder) error {
		return b.Text(mdtext.Escape(s))
	}
}

func wrap(add func(b *tree.Builder, build tree.BuildFunc) error) func(*Node, *tree.Builder) error {
	return func(n *Node, b *tree.Builder) error {
		if n.blank() {
			return n.buildContent(b)
		}
		return add(b, n.content())
	}
}

func buildUnderline(n *Node, b *tree.Builder) error {
	return b.Element("u", nil, n.content())
}

func styled(n *Node, b *tree.Builder, style string) error {
	return b.Element("span", []html.Attribute{{Key: "style", Val: style}}, n.content())
}

func buildAlign(n *Node, b *tree.Builder) error {
	return styled(n, b, "text-align:"+n.Tag.Name+";")
}

func buildColor(n *Node, b *tree.Builder) error {
	value, ok := n.Tag.Params.Value()
	if !ok {
		return n.buildContent(b)
	}
	style, err := colorStyle(n.Tag, "", value)
	if err != nil {
		return err
	}
	return styled(n, b, style)
}

func buildSize(n *Node, b *tree.Builder) error {
	value, ok := n.Tag.Params.Value()
	if !ok {
		return n.buildContent(b)
	}
	style, err := sizeStyle(n.Tag, "", value)
	if err != nil {
		return err
	}
	return styled(n, b, style)
}

// buildStyle combines the color and size parameters into one span.
func buildStyle(n *Node, b *tree.Builder) error {
	var style strings.Builder
	if value, ok := n.Tag.Params.Get("color"); ok {
		s, err := colorStyle(n.Tag, "color", value)
		if err != nil {
			return err
		}
		style.WriteString(s)
	}
	if value, ok := n.Tag.Params.Get("size"); ok {
		s, err := sizeStyle(n.Tag, "size", value)
		if err != nil {
			return err
		}
		style.WriteString(s)
	}
	if style.Len() == 0 {
		return n.buildContent(b)
	}
	return styled(n, b, style.String())
}

func buildFont(n *Node, b *tree.Builder) error {
	family, ok := n.Tag.Params.Value()
	if !ok || strings.TrimSpace(family) == "" {
		return missingParam(n.Tag, "")
	}
	if !fontPattern.MatchString(family) {
		return paramError(ErrParamInvalid, n.Tag, "", family, errFont)
	}
	return styled(n, b, "font-family:"+family+";")
}

func colorStyle(t *NodeTag, key, value string) (string, error) {
	if !colorPattern.MatchString(value) {
		return "", paramError(ErrParamInvalid, t, key, value, errColor)
	}
	return "color:" + value + ";", nil
}

func sizeStyle(t *NodeTag, key, value string) (string, error) {
	size, err := number(t, key, value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("font-size:%dpx;", size), nil
}

func number(t *NodeTag, key, value string) (uint64, error) {
	return numberAt(t, key, value, t.Params.Range(key))
}

// numberAt is number for a value that is only part of a parameter, with r
// its own range.
func numberAt(t *NodeTag, key, value string, r Span) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		e := paramError(ErrParamParse, t, key, value, err)
		e.Range = r
		return 0, e
	}
	return n, nil
}

func buildCode(n *Node, b *tree.Builder) error {
	text, err := n.innerText()
	if err != nil {
		return err
	}
	lang, _ := n.Tag.Params.Value()
	// the newlines right after [code] and before [/code] are layout
	text = strings.TrimPrefix(text, "\r")
	text = strings.TrimPrefix(text, "\n")
	text = strings.TrimRight(text, "\r\n")
	return b.Code(text, lang)
}

func buildPre(n *Node, b *tree.Builder) error {
	text, err := n.innerText()
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return b.InlineCode(text)
}

// buildURL links to the url parameter when given, showing the content;
// otherwise the content is the target and is shown as is.
func buildURL(n *Node, b *tree.Builder) error {
	return buildLink(n, b, "")
}

func buildEmail(n *Node, b *tree.Builder) error {
	return buildLink(n, b, "mailto:")
}

func buildLink(n *Node, b *tree.Builder, scheme string) error {
	title, _ := n.Tag.Params.Get("title")
	if key, target, ok := n.Tag.Params.First("", "url"); ok {
		target = strings.TrimSpace(target)
		if target == "" {
			return missingParam(n.Tag, "url")
		}
		if !allowedTarget(target) {
			return paramError(ErrParamInvalid, n.Tag, key, target, errScheme)
		}
		display := n.content()
		if n.blank() {
			display = escaped(target)
		}
		return b.Link(withScheme(scheme, target), title, display)
	}

	target, err := n.requiredText()
	if err != nil {
		return err
	}
	if !allowedTarget(target) {
		return b.Text(mdtext.Escape(target))
	}
	return b.Link(withScheme(scheme, target), title, escaped(target))
}

// allowedTarget reports whether target is relative or uses one of
// linkSchemes.
func allowedTarget(target string) bool {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return false
	}
	return u.Scheme == "" || slices.Contains(linkSchemes, strings.ToLower(u.Scheme))
}

func withScheme(scheme, target string) string {
	if scheme == "" || strings.HasPrefix(strings.ToLower(target), scheme) {
		return target
	}
	return scheme + target
}

func buildYouTube(n *Node, b *tree.Builder) error {
	id, err := n.requiredText()
	if err != nil {
		return err
	}
	target := "https://youtube.com/watch?v=" + url.QueryEscape(id)
	return b.Link(target, "", escaped(target))
}

// buildImage emits a plain image, or an <img> element wrapped in a link
// when a width or height has to be carried along.
func buildImage(n *Node, b *tree.Builder) error {
	src, err := n.requiredText()
	if err != nil {
		return err
	}
	width, height, err := dimensions(n.Tag)
	if err != nil {
		return err
	}
	alt, _ := n.Tag.Params.Get("alt")
	title, _ := n.Tag.Params.Get("title")

	if width == "" && height == "" {
		return b.Image(src, mdtext.Escape(alt), title)
	}

	attrs := []html.Attribute{{Key: "src", Val: src}}
	if alt != "" {
		attrs = append(attrs, html.Attribute{Key: "alt", Val: alt})
	}
	if title != "" {
		attrs = append(attrs, html.Attribute{Key: "title", Val: title})
	}
	if width != "" {
		attrs = append(attrs, html.Attribute{Key: "width", Val: width})
	}
	if height != "" {
		attrs = append(attrs, html.Attribute{Key: "height", Val: height})
	}
	return b.Link(src, "", func(b *tree.Builder) error {
		return b.VoidElement("img", attrs)
	})
}

// dimensions reads [img=WxH] or the width and height parameters.
func dimensions(t *NodeTag) (string, string, error) {
	if value, ok := t.Params.Value(); ok {
		at := strings.IndexAny(value, "xX")
		if at < 0 {
			return "", "", paramError(ErrParamInvalid, t, "", value, errNoDimensionDelimiter)
		}
		r := t.Params.Range("")
		w, h := value[:at], value[at+1:]
		width, err := numberAt(t, "", w, Span{r.Start, r.Start + at})
		if err != nil {
			return "", "", err
		}
		height, err := numberAt(t, "", h, Span{r.Start + at + 1, r.End})
		if err != nil {
			return "", "", err
		}
		return strconv.FormatUint(width, 10), strconv.FormatUint(height, 10), nil
	}

	var width, height string
	for _, key := range []string{"width", "height"} {
		value, ok := t.Params.Get(key)
		if !ok {
			continue
		}
		v, err := number(t, key, value)
		if err != nil {
			return "", "", err
		}
		if key == "width" {
			width = strconv.FormatUint(v, 10)
		} else {
			height = strconv.FormatUint(v, 10)
		}
	}
	return width, height, nil
}

// buildQuote appends the author, when named, as a last paragraph.
func buildQuote(n *Node, b *tree.Builder) error {
	_, author, named := n.Tag.Params.First("", "author")
	return b.BlockQuote(func(q *tree.Builder) error {
		if err := n.buildContent(q); err != nil {
			return err
		}
		if !named || strings.TrimSpace(author) == "" {
			return nil
		}
		return q.Paragraph(escaped("—" + author))
	})
}

func buildSpoiler(n *Node, b *tree.Builder) error {
	label, _ := n.Tag.Params.Value()
	return b.BlockElement("details", nil, func(d *tree.Builder) error {
		if strings.TrimSpace(label) != "" {
			if err := d.BlockElement("summary", nil, escaped(label)); err != nil {
				return err
			}
		}
		return n.buildContent(d)
	})
}

func buildHeading(n *Node, b *tree.Builder) error {
	return b.Heading(int(n.Tag.Name[1]-'0'), n.content())
}

func buildRule(_ *Node, b *tree.Builder) error {
	return b.ThematicBreak()
}

func buildBreak(_ *Node, b *tree.Builder) error {
	return b.LineBreak()
}
