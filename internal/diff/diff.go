// Package diff shows how a fresh conversion differs from an existing
// output file.
package diff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Generate converts srcPath into the format of dstPath and diffs the
// result against dstPath, with the existing file as the old side. It
// returns an empty string when they are identical. A missing destination
// diffs against empty content.
func Generate(srcPath, dstPath string, conv *convert.Converter) (string, error) {
	from, err := convert.FormatFromPath(srcPath)
	if err != nil {
		return "", err
	}
	to, err := convert.FormatFromPath(dstPath)
	if err != nil {
		return "", err
	}

	srcContent, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}

	dstContent, err := os.ReadFile(dstPath)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read destination file: %w", err)
	}

	converted, err := conv.Convert(from, to, srcContent)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", filepath.Base(srcPath), err)
	}

	unified := Unified(filepath.Base(dstPath), filepath.Base(srcPath), string(dstContent), converted)
	if unified == "" {
		return "", nil
	}
	return Render(unified), nil
}

// Unified returns the unified diff from before to after, or an empty string
// when there are no edits
func Unified(oldName, newName, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(oldName), before, after)
	if len(edits) == 0 {
		return ""
	}
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, before, edits))
}

// Render wraps a unified diff in a diff code fence and renders it for
// the terminal, falling back to the plain fence
func Render(unified string) string {
	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown
	}

	return rendered
}
