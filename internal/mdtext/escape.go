// Package mdtext escapes plain text for insertion into Markdown and strips
// those escapes again for plain output formats.
package mdtext

import (
	"regexp"

	"github.com/dlclark/regexp2"
)

// syntax matches every run that Markdown would read as markup: headings,
// setext underlines, emphasis, ordered list dots, line-leading list and
// quote markers, strikethrough, code fences, link and image brackets, and
// HTML tags.
var syntax = regexp2.MustCompile("#{1,6}|[=-]{2,}|[*_]+|(?<=\\d)\\.|(?<=^|\\s)[-+>]|~{2}|`{1,3}|!?\\[|</?.*>", regexp2.None)

var escaped = regexp.MustCompile("\\\\([!-/:-@\\[-`{-~])")

// Escape backslash-escapes Markdown syntax in s. It is not idempotent:
// escaping an escaped string escapes it again.
func Escape(s string) string {
	out, err := syntax.ReplaceFunc(s, func(m regexp2.Match) string {
		return `\` + m.String()
	}, -1, -1)
	if err != nil {
		// only reachable through a match timeout, which is never set
		return s
	}
	return out
}

// Unescape removes backslash escapes in front of ASCII punctuation.
func Unescape(s string) string {
	return escaped.ReplaceAllString(s, "$1")
}
