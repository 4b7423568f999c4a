package bbcode

import (
	"regexp"
	"strings"
)

var (
	unkeyedPattern = regexp.MustCompile(`^=(?:"([^"]*)"|([^\]\s"]+))`)
	keyedPattern   = regexp.MustCompile(`(?i)([a-z][\w-]*)="([^"]*)"`)
)

// Params are the parameters of a start tag. The unkeyed value of
// [tag=value] is stored under the empty key. Keys are lower case; when a
// key repeats, the last value wins.
type Params struct {
	values map[string]string
	ranges map[string]Span
	whole  Span
}

// ParseParams splits the raw parameter string of a start tag, as found in
// Fragment.Params, whose first byte sits at offset at.Start of the input.
// The leading tag name is skipped.
func ParseParams(raw string, at Span) Params {
	p := Params{whole: at}

	i := 0
	for i < len(raw) && isWordByte(raw[i]) {
		i++
	}

	if m := unkeyedPattern.FindStringSubmatchIndex(raw[i:]); m != nil {
		g := 2
		if m[g] < 0 {
			g = 4
		}
		p.set("", raw[i+m[g]:i+m[g+1]], Span{at.Start + i + m[g], at.Start + i + m[g+1]})
		i += m[1]
	}

	for _, m := range keyedPattern.FindAllStringSubmatchIndex(raw[i:], -1) {
		key := strings.ToLower(raw[i+m[2] : i+m[3]])
		p.set(key, raw[i+m[4]:i+m[5]], Span{at.Start + i + m[4], at.Start + i + m[5]})
	}
	return p
}

func (p *Params) set(key, value string, r Span) {
	if p.values == nil {
		p.values = make(map[string]string)
		p.ranges = make(map[string]Span)
	}
	p.values[key] = value
	p.ranges[key] = r
}

// Get returns the value stored under key
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the unkeyed value
func (p Params) Value() (string, bool) {
	return p.Get("")
}

// First returns the value of the first of keys that is present.
func (p Params) First(keys ...string) (string, string, bool) {
	for _, k := range keys {
		if v, ok := p.values[k]; ok {
			return k, v, true
		}
	}
	return "", "", false
}

// Range returns the source range of the value under key, or the range of
// the whole parameter string when the key is absent.
func (p Params) Range(key string) Span {
	if r, ok := p.ranges[key]; ok {
		return r
	}
	return p.whole
}

// Len returns the number of parameters
func (p Params) Len() int {
	return len(p.values)
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
