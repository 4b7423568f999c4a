package convert

import (
	"errors"
	"fmt"
	"time"

	"github.com/gerunddev/markbridge/internal/bbcode"
	"github.com/gerunddev/markbridge/internal/logger"
	"github.com/gerunddev/markbridge/internal/markdown"
	"github.com/gerunddev/markbridge/internal/mdtext"
	"github.com/gerunddev/markbridge/internal/render"
	"github.com/gerunddev/markbridge/internal/tree"
)

// Options configure both ends of a conversion
type Options struct {
	Markdown markdown.Options
	HTML     render.HTMLOptions
}

// Converter parses any readable format into the markup tree and renders
// the tree into any format
type Converter struct {
	opts   Options
	logger *logger.Logger
}

// NewConverter creates a converter. A nil logger discards output.
func NewConverter(opts Options, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{
		opts:   opts,
		logger: log,
	}
}

// Options returns the converter's options
func (c *Converter) Options() Options {
	return c.opts
}

// Parse reads input in the given format
func (c *Converter) Parse(from Format, input []byte) (*tree.Document, error) {
	switch from {
	case Markdown:
		doc, err := markdown.Parse(input, c.opts.Markdown)
		if err != nil {
			return nil, fmt.Errorf("failed to parse markdown: %w", err)
		}
		return doc, nil
	case BBCode:
		doc, err := bbcode.Parse(string(input))
		if err != nil {
			return nil, fmt.Errorf("failed to parse bbcode: %w", err)
		}
		return doc, nil
	case Text:
		return parseText(string(input))
	case HTML:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, from)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(from))
	}
}

// parseText keeps plain text literal in every output format
func parseText(input string) (*tree.Document, error) {
	b := tree.New()
	if err := b.Text(mdtext.Escape(input)); err != nil {
		return nil, fmt.Errorf("failed to build text: %w", err)
	}
	return b.Build(), nil
}

// Render writes doc in the given format
func (c *Converter) Render(doc *tree.Document, to Format) (string, error) {
	switch to {
	case Markdown:
		return doc.Markdown(), nil
	case BBCode:
		return render.BBCode(doc), nil
	case HTML:
		out, err := render.HTML(doc, c.opts.HTML)
		if err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
		return out, nil
	case Text:
		return render.Text(doc), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(to))
	}
}

// Convert parses input and renders it in another format
func (c *Converter) Convert(from, to Format, input []byte) (string, error) {
	start := time.Now()

	doc, err := c.Parse(from, input)
	if err != nil {
		return "", err
	}
	out, err := c.Render(doc, to)
	if err != nil {
		return "", err
	}

	c.logger.ConversionCompleted(from.String(), to.String(), len(input), time.Since(start))
	return out, nil
}

// Location is where a parse error happened in the input
type Location struct {
	Err *bbcode.Error
	tree.Position
}

// Locate finds the BBCode parse error wrapped in err and resolves its
// start offset against input
func Locate(err error, input []byte) (Location, bool) {
	var perr *bbcode.Error
	if !errors.As(err, &perr) {
		return Location{}, false
	}
	return Location{Err: perr, Position: perr.Position(string(input))}, true
}
