package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/diff"
	"github.com/gerunddev/markbridge/internal/render"
	"github.com/gerunddev/markbridge/internal/styles"
	"github.com/gerunddev/markbridge/internal/tui"
)

// previewWidth is the word wrap of Markdown rendered in the preview
const previewWidth = 100

// Convert converts one file, or stdin, and writes the result to stdout or
// the -o file
func Convert(raw []string) {
	a, err := parseArgs(raw, []string{"--from", "--to", "-o", "--output"}, nil)
	if err != nil {
		fail(err.Error())
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	inPath := a.arg(0, "-")
	outPath := a.flags["-o"]
	if outPath == "" {
		outPath = a.flags["--output"]
	}

	from, to, err := resolveFormats(cfg, a.flags["--from"], a.flags["--to"], inPath, outPath)
	if err != nil {
		fail(err.Error())
	}

	input, err := readInput(inPath)
	if err != nil {
		fail("Failed to read input: " + err.Error())
	}

	conv := convert.NewConverter(cfg.ConverterOptions(), log)
	output, err := conv.Convert(from, to, input)
	if err != nil {
		if loc, ok := convert.Locate(err, input); ok {
			log.ParseError(displayName(inPath), loc.Line, loc.Column, loc.Err)
		} else {
			log.ConversionError(displayName(inPath), outPath, err)
		}
		failConversion(displayName(inPath), input, err)
	}

	if outPath == "" || outPath == "-" {
		fmt.Print(output)
		return
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		fail("Failed to create output directory: " + err.Error())
	}
	if err := os.WriteFile(outPath, []byte(output), 0644); err != nil {
		fail("Failed to write output: " + err.Error())
	}
	log.FileConverted(inPath, outPath)
	fmt.Fprintln(os.Stderr, styles.SuccessStyle.Render(fmt.Sprintf("✓ %s → %s", displayName(inPath), outPath)))
}

// Preview converts one file and shows the result in a scrollable viewport
func Preview(raw []string) {
	a, err := parseArgs(raw, []string{"--from", "--to"}, nil)
	if err != nil {
		fail(err.Error())
	}
	if len(a.positional) == 0 {
		fail("Usage: markbridge preview [--from format] [--to format] <file>")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	inPath := a.arg(0, "-")
	from, to, err := resolveFormats(cfg, a.flags["--from"], a.flags["--to"], inPath, "")
	if err != nil {
		fail(err.Error())
	}

	input, err := readInput(inPath)
	if err != nil {
		fail("Failed to read input: " + err.Error())
	}

	conv := convert.NewConverter(cfg.ConverterOptions(), log)
	output, err := conv.Convert(from, to, input)
	if err != nil {
		failConversion(displayName(inPath), input, err)
	}

	if to == convert.Markdown {
		if rendered, err := render.TerminalMarkdown(output, previewWidth); err == nil {
			output = rendered
		}
	}

	err = tui.RunPreview(tui.PreviewData{
		Name:   displayName(inPath),
		From:   from.String(),
		To:     to.String(),
		Source: string(input),
		Output: output,
	})
	if err != nil {
		fail("Error: " + err.Error())
	}
}

// Diff shows what converting a source would change in an existing output
func Diff(raw []string) {
	a, err := parseArgs(raw, nil, nil)
	if err != nil {
		fail(err.Error())
	}
	if len(a.positional) != 2 {
		fail("Usage: markbridge diff <source> <output>")
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	conv := convert.NewConverter(cfg.ConverterOptions(), log)
	content, err := diff.Generate(a.positional[0], a.positional[1], conv)
	if err != nil {
		fail(err.Error())
	}

	if content == "" {
		fmt.Println(styles.SuccessStyle.Render("✓ Output is up to date"))
		return
	}
	fmt.Print(content)
}
