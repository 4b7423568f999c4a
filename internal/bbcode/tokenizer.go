// Package bbcode parses BBCode into the shared markup tree.
//
// Parsing happens in three steps: the tokenizer splits the input into text
// and tag fragments, the parser nests those fragments into a tree of
// intermediate nodes, and each node is then translated into calls against
// a tree.Builder by the handler registered for its tag name.
package bbcode

import (
	"iter"
	"regexp"
)

// Span is a half-open byte range [Start, End) of the input.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered
func (s Span) Len() int {
	return s.End - s.Start
}

// FragmentKind tells text runs and tags apart
type FragmentKind int

const (
	TextFragment FragmentKind = iota
	StartTagFragment
	EndTagFragment
)

func (k FragmentKind) String() string {
	switch k {
	case TextFragment:
		return "text"
	case StartTagFragment:
		return "start tag"
	case EndTagFragment:
		return "end tag"
	}
	return "unknown"
}

// Fragment is one lexical piece of the input. Strings are substrings of
// the input, so fragments cost no copies.
type Fragment struct {
	Kind FragmentKind
	// Value is the text of a text run, or the name of a tag
	Value string
	// Range covers Value
	Range Span
	// Params is everything between the brackets of a start tag: the name
	// followed by its parameters
	Params     string
	ParamRange Span
	// Outer covers the whole fragment including brackets
	Outer Span
}

// tagPattern matches [name], [name=value], [name key="value" ...] with an
// optional leading unkeyed value, and [/name].
var tagPattern = regexp.MustCompile(`(?i)\[(?:` +
	`(?P<param>(?P<tag>\w+)` +
	`(?:=(?:"[^"]*"|[^\]\s"]+))?` +
	`(?:\s+[a-z][\w-]*="[^"]*")*)` +
	`|/(?P<end>\w+))\]`)

var (
	paramGroup = tagPattern.SubexpIndex("param")
	tagGroup   = tagPattern.SubexpIndex("tag")
	endGroup   = tagPattern.SubexpIndex("end")
)

// FragmentStream yields the fragments of an input lazily, one regex match
// at a time. It is single pass: fragments taken from it are gone.
type FragmentStream struct {
	input string
	pos   int
	// pending holds the absolute submatch indexes of a tag whose preceding
	// text was emitted but which was not emitted itself yet
	pending []int
}

// Tokenize returns a stream over the fragments of input
func Tokenize(input string) *FragmentStream {
	return &FragmentStream{input: input}
}

// Next returns the next fragment, or false once the input is exhausted.
func (s *FragmentStream) Next() (Fragment, bool) {
	if f, ok := s.nextText(); ok {
		return f, true
	}
	return s.nextTag()
}

// All returns an iterator over the remaining fragments.
func (s *FragmentStream) All() iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		for {
			f, ok := s.Next()
			if !ok || !yield(f) {
				return
			}
		}
	}
}

// nextText emits the text up to the next tag, remembering the tag as
// pending. Empty text runs are swallowed.
func (s *FragmentStream) nextText() (Fragment, bool) {
	if s.pending != nil || s.pos >= len(s.input) {
		return Fragment{}, false
	}

	start, end := s.pos, len(s.input)
	if m := tagPattern.FindStringSubmatchIndex(s.input[start:]); m != nil {
		for i := range m {
			if m[i] >= 0 {
				m[i] += start
			}
		}
		s.pending = m
		end = m[0]
		s.pos = m[1]
	} else {
		s.pos = end
	}

	if start == end {
		return Fragment{}, false
	}
	r := Span{start, end}
	return Fragment{Kind: TextFragment, Value: s.input[start:end], Range: r, Outer: r}, true
}

func (s *FragmentStream) nextTag() (Fragment, bool) {
	m := s.pending
	if m == nil {
		return Fragment{}, false
	}
	s.pending = nil

	outer := Span{m[0], m[1]}
	if m[2*endGroup] >= 0 {
		name := group(m, endGroup)
		return Fragment{
			Kind:  EndTagFragment,
			Value: s.input[name.Start:name.End],
			Range: name,
			Outer: outer,
		}, true
	}

	name, params := group(m, tagGroup), group(m, paramGroup)
	return Fragment{
		Kind:       StartTagFragment,
		Value:      s.input[name.Start:name.End],
		Range:      name,
		Params:     s.input[params.Start:params.End],
		ParamRange: params,
		Outer:      outer,
	}, true
}

func group(m []int, i int) Span {
	return Span{m[2*i], m[2*i+1]}
}
