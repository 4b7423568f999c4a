package render

import (
	"testing"

	"github.com/gerunddev/markbridge/internal/bbcode"
	"github.com/gerunddev/markbridge/internal/markdown"
	"github.com/gerunddev/markbridge/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromBBCode(t *testing.T, input string) *tree.Document {
	t.Helper()
	doc, err := bbcode.Parse(input)
	require.NoError(t, err)
	return doc
}

func fromMarkdown(t *testing.T, input string) *tree.Document {
	t.Helper()
	doc, err := markdown.Parse([]byte(input), markdown.Options{Flavor: markdown.GFM})
	require.NoError(t, err)
	return doc
}

func TestHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strong", "[b]x[/b]", "<p><strong>x</strong></p>\n"},
		{"underline", "[u]x[/u]", "<p><u>x</u></p>\n"},
		{"escaped text", "*x*", "<p>*x*</p>\n"},
		{"color", "[color=red]x[/color]", "<p><span style=\"color:red;\">x</span></p>\n"},
		{"spoiler", "[spoiler=Title]hidden[/spoiler]", "<details>\n<summary>Title</summary>\n<p>hidden</p>\n</details>\n"},
		{"heading", "[h3]T[/h3]", "<h3>T</h3>\n"},
		{"line break", "a[br]b", "<p>a<br>\nb</p>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := HTML(fromBBCode(t, tt.input), HTMLOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestHTMLTable(t *testing.T) {
	doc := fromBBCode(t, "[table][tr][th]A[/th][/tr][tr][td]1[/td][/tr][/table]")
	out, err := HTML(doc, HTMLOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "<th>A</th>")
	assert.Contains(t, out, "<td>1</td>")
	assert.Contains(t, out, "</tbody>")
}

func TestHTMLSanitize(t *testing.T) {
	doc := fromMarkdown(t, "<script>alert(1)</script>\n\nok <span style=\"color:red\">x</span>")

	raw, err := HTML(doc, HTMLOptions{})
	require.NoError(t, err)
	assert.Contains(t, raw, "<script>")

	clean, err := HTML(doc, HTMLOptions{Sanitize: true})
	require.NoError(t, err)
	assert.NotContains(t, clean, "<script>")
	assert.Contains(t, clean, "ok")
	assert.Contains(t, clean, "<span")
	assert.Contains(t, clean, "color")
}

func TestHTMLHighlight(t *testing.T) {
	doc := fromMarkdown(t, "```go\nx := 1\n```")

	plain, err := HTML(doc, HTMLOptions{})
	require.NoError(t, err)
	assert.Contains(t, plain, `<code class="language-go">`)

	highlighted, err := HTML(doc, HTMLOptions{HighlightStyle: "monokai"})
	require.NoError(t, err)
	assert.Contains(t, highlighted, "<pre")
	assert.Contains(t, highlighted, "style=")
	assert.NotContains(t, highlighted, "language-go")
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"markup dropped", "[b]bold[/b] and [url=https://x.org]site[/url]", "bold and site (https://x.org)\n"},
		{"escapes removed", "*x* # y", "*x* # y\n"},
		{"paragraphs", "a\n\nb", "a\n\nb\n"},
		{"list", "[list=1][*]a[*]b[/list]", "1. a\n2. b\n"},
		{"table", "[table][tr][td]a[/td][td]b[/td][/tr][/table]", "a\tb\n"},
		{"quote", "[quote]q[/quote]", "  q\n"},
		{"image", `[img alt="pic"]a.png[/img]`, "pic\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(fromBBCode(t, tt.input)))
		})
	}
}

func TestBBCodeFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"emphasis", "**b** and *i*", "[b]b[/b] and [i]i[/i]\n"},
		{"link", "[site](https://x.org)", "[url=https://x.org]site[/url]\n"},
		{"autolink", "<https://x.org>", "[url]https://x.org[/url]\n"},
		{"image", "![pic](a.png)", "[img alt=\"pic\"]a.png[/img]\n"},
		{"heading", "## T", "[h2]T[/h2]\n"},
		{"strikethrough", "~~x~~", "[s]x[/s]\n"},
		{"code span", "`x`", "[pre]x[/pre]\n"},
		{"list", "- a\n- b", "[list]\n[*]a\n[*]b\n[/list]\n"},
		{"task", "- [x] done", "[list]\n[*]☑ done\n[/list]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BBCode(fromMarkdown(t, tt.input)))
		})
	}
}

// BBCode output parses back into a tree with the same Markdown form.
func TestBBCodeRoundTrip(t *testing.T) {
	inputs := []string{
		"[b]x[/b] and [i]y[/i]",
		"[u]x[/u]",
		"*not bold*",
		"a[br]b",
		"a[hr]b",
		"[h2]Title[/h2]",
		"[code=go]\nx := 1\n[/code]",
		"[pre]a*b[/pre]",
		"[url=https://x.org]site[/url]",
		"[url]https://x.org[/url]",
		"[email]me@x.org[/email]",
		"[img]http://a/b.png[/img]",
		"[img=100x50]http://a/b.png[/img]",
		"[quote]Hi[/quote]",
		"[spoiler=Title]hidden[/spoiler]",
		"[color=red]x[/color]",
		"[size=12]x[/size]",
		"[center]x[/center]",
		"[list][*]one[*]two[/list]",
		"[list=3][*]one[*]two[/list]",
		"[table][tr][th]A[/th][/tr][tr][td]1[/td][/tr][/table]",
		"[table][tr][td]1[/td][td]2[/td][/tr][/table]",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			doc := fromBBCode(t, input)
			again := fromBBCode(t, BBCode(doc))
			assert.Equal(t, doc.Markdown(), again.Markdown())
		})
	}
}

func TestTerminalMarkdown(t *testing.T) {
	out, err := TerminalMarkdown("# Hello", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
}
