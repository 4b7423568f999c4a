package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a markup language
type Format string

const (
	Markdown Format = "markdown"
	BBCode   Format = "bbcode"
	HTML     Format = "html"
	Text     Format = "text"
)

// Formats lists every format in display order
var Formats = []Format{Markdown, BBCode, HTML, Text}

var (
	// ErrUnknownFormat is returned for format names and extensions that
	// match no Format
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnsupportedSource is returned when a format can be written but
	// not read
	ErrUnsupportedSource = errors.New("format is not supported as a source")
)

var aliases = map[string]Format{
	"markdown": Markdown,
	"md":       Markdown,
	"bbcode":   BBCode,
	"bb":       BBCode,
	"html":     HTML,
	"htm":      HTML,
	"text":     Text,
	"txt":      Text,
	"plain":    Text,
}

var extensions = map[string]Format{
	".md":       Markdown,
	".markdown": Markdown,
	".bbcode":   BBCode,
	".bb":       BBCode,
	".html":     HTML,
	".htm":      HTML,
	".txt":      Text,
}

// ParseFormat resolves a format name or alias, ignoring case
func ParseFormat(name string) (Format, error) {
	f, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// FormatFromPath detects the format of a file from its extension
func FormatFromPath(path string) (Format, error) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: no format for %q", ErrUnknownFormat, filepath.Base(path))
	}
	return f, nil
}

// Extension returns the file extension written for the format
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case BBCode:
		return ".bbcode"
	case HTML:
		return ".html"
	default:
		return ".txt"
	}
}

// Readable reports whether the format can be parsed
func (f Format) Readable() bool {
	return f == Markdown || f == BBCode || f == Text
}

// MatchesPath reports whether path carries one of the format's extensions
func (f Format) MatchesPath(path string) bool {
	got, err := FormatFromPath(path)
	return err == nil && got == f
}

func (f Format) String() string {
	return string(f)
}
