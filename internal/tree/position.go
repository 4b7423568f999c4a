package tree

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a point in source text. Line and Column are 1-based and the
// column counts runes.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionAt maps a byte offset in source to its line and column. Offsets
// past the end are clamped to the end of the source.
func PositionAt(source string, offset int) Position {
	offset = min(max(offset, 0), len(source))
	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
		Offset: offset,
	}
}
