package bbcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParams(t *testing.T) {
	t.Run("unkeyed value", func(t *testing.T) {
		p := ParseParams("img=100x50", Span{1, 11})
		v, ok := p.Value()
		assert.True(t, ok)
		assert.Equal(t, "100x50", v)
		assert.Equal(t, Span{5, 11}, p.Range(""))
		assert.Equal(t, 1, p.Len())
	})

	t.Run("quoted unkeyed value", func(t *testing.T) {
		p := ParseParams(`quote="Jane Doe"`, Span{1, 17})
		v, _ := p.Value()
		assert.Equal(t, "Jane Doe", v)
		assert.Equal(t, Span{8, 16}, p.Range(""))
	})

	t.Run("keyed values", func(t *testing.T) {
		p := ParseParams(`img width="100" Height="50"`, Span{0, 27})
		_, ok := p.Value()
		assert.False(t, ok)
		w, _ := p.Get("width")
		h, _ := p.Get("height")
		assert.Equal(t, "100", w)
		assert.Equal(t, "50", h)
		assert.Equal(t, Span{11, 14}, p.Range("width"))
	})

	t.Run("unkeyed then keyed", func(t *testing.T) {
		p := ParseParams(`url=https://x.org title="X"`, Span{0, 27})
		key, v, ok := p.First("", "url")
		assert.True(t, ok)
		assert.Equal(t, "", key)
		assert.Equal(t, "https://x.org", v)
		title, _ := p.Get("title")
		assert.Equal(t, "X", title)
	})

	t.Run("last repeated key wins", func(t *testing.T) {
		p := ParseParams(`style color="red" color="blue"`, Span{0, 30})
		v, _ := p.Get("color")
		assert.Equal(t, "blue", v)
	})

	t.Run("missing key falls back to whole range", func(t *testing.T) {
		p := ParseParams("font", Span{1, 5})
		assert.Equal(t, 0, p.Len())
		assert.Equal(t, Span{1, 5}, p.Range("family"))
		_, _, ok := p.First("a", "b")
		assert.False(t, ok)
	})
}
