package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/gerunddev/markbridge/internal/tree"
)

// Terminal renders doc for display in a terminal, as glamour renders its
// Markdown form.
func Terminal(doc *tree.Document, width int) (string, error) {
	return TerminalMarkdown(doc.Markdown(), width)
}

// TerminalMarkdown renders Markdown text for a terminal. A width of zero
// or less wraps at 120 columns.
func TerminalMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 120
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render for terminal: %w", err)
	}
	return rendered, nil
}
