package mdtext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeSyntaxSample(t *testing.T) {
	input, err := os.ReadFile(filepath.Join("testdata", "syntax.md"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "syntax.escaped.md"))
	require.NoError(t, err)

	assert.Equal(t, string(want), Escape(string(input)))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "just words, nothing else", "just words, nothing else"},
		{"heading", "# Title", `\# Title`},
		{"emphasis run", "**bold**", `\**bold\**`},
		{"dot after digit", "1. one", `1\. one`},
		{"dot after letter", "end.", "end."},
		{"line-leading dash", "a\n- b", "a\n\\- b"},
		{"inner dash", "well-known", "well-known"},
		{"strikethrough", "~~gone~~", `\~~gone\~~`},
		{"single tilde", "~5", "~5"},
		{"image bracket", "![alt](src)", `\![alt](src)`},
		{"html tag", "<b>x</b>", `\<b>x</b>`},
		{"code fence", "```go", "\\```go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.input))
		})
	}
}

func TestEscapeIsNotIdempotent(t *testing.T) {
	once := Escape("*x*")
	require.Equal(t, `\*x\*`, once)
	assert.NotEqual(t, once, Escape(once))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "# Title **bold** 1. one", Unescape(Escape("# Title **bold** 1. one")))
	assert.Equal(t, `C:\path`, Unescape(`C:\path`))
}
