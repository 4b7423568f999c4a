// Package batch converts every source file under a directory tree.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/logger"
	"github.com/gerunddev/markbridge/internal/state"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options configure a batch run
type Options struct {
	From            convert.Format
	To              convert.Format
	Workers         int
	ExcludePatterns []string
	// DryRun reports what would be converted without writing anything
	DryRun bool
}

// Batcher converts a source tree into an output tree, skipping files
// that have not changed since the last run
type Batcher struct {
	conv   *convert.Converter
	state  *state.State
	opts   Options
	logger *logger.Logger
}

// NewBatcher creates a new batcher instance
func NewBatcher(conv *convert.Converter, st *state.State, opts Options, log *logger.Logger) *Batcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Batcher{
		conv:   conv,
		state:  st,
		opts:   opts,
		logger: log,
	}
}

// FileError is a failure to convert one file
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result represents the result of a batch run
type Result struct {
	RunID     string
	Converted []string
	Skipped   int
	Errors    []error
	DryRun    bool
	StartTime time.Time
	EndTime   time.Time

	mu sync.Mutex
}

func (r *Result) converted(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Converted = append(r.Converted, path)
}

func (r *Result) skipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
}

func (r *Result) failed(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, &FileError{Path: path, Err: err})
}

// String returns a human-readable summary of the batch result
func (r *Result) String() string {
	duration := r.EndTime.Sub(r.StartTime).Round(time.Millisecond)
	if r.DryRun {
		return fmt.Sprintf(
			"Dry run: %d files would be converted, %d skipped, %d errors (took %v)",
			len(r.Converted),
			r.Skipped,
			len(r.Errors),
			duration,
		)
	}
	return fmt.Sprintf(
		"Batch complete: %d files converted, %d skipped, %d errors (took %v)",
		len(r.Converted),
		r.Skipped,
		len(r.Errors),
		duration,
	)
}

// Run converts the changed files of srcDir into outDir. Per-file failures
// are collected in the result; only scanning failures and cancellation
// end the run early.
func (b *Batcher) Run(ctx context.Context, srcDir, outDir string) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		DryRun:    b.opts.DryRun,
		StartTime: time.Now(),
	}
	b.logger.BatchStarted(result.RunID, srcDir, outDir)

	files, err := ScanDirectory(srcDir, outDir, b.opts.From, b.opts.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", srcDir, err)
	}

	// gctx is canceled once Wait returns, so cancellation is read from ctx
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.convertFile(result, srcDir, outDir, path)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	result.EndTime = time.Now()
	sort.Strings(result.Converted)
	b.logger.BatchCompleted(result.RunID, len(result.Converted), result.Skipped, len(result.Errors), result.EndTime.Sub(result.StartTime))
	return result, err
}

func (b *Batcher) convertFile(result *Result, srcDir, outDir, path string) {
	to := b.opts.To.String()

	changed, err := b.state.HasChanged(path, to)
	if err != nil {
		b.logger.StateError("check", err)
		result.failed(path, err)
		return
	}
	if !changed {
		b.logger.Skipped(path, "unchanged")
		result.skipped()
		return
	}

	dest, err := OutputPath(srcDir, outDir, path, b.opts.To)
	if err != nil {
		result.failed(path, err)
		return
	}
	if b.opts.DryRun {
		result.converted(path)
		return
	}

	input, err := os.ReadFile(path)
	if err != nil {
		result.failed(path, fmt.Errorf("failed to read source: %w", err))
		return
	}
	out, err := b.conv.Convert(b.opts.From, b.opts.To, input)
	if err != nil {
		if loc, ok := convert.Locate(err, input); ok {
			b.logger.ParseError(path, loc.Line, loc.Column, loc.Err)
		} else {
			b.logger.ConversionError(path, dest, err)
		}
		result.failed(path, err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		result.failed(path, fmt.Errorf("failed to create output directory: %w", err))
		return
	}
	if err := os.WriteFile(dest, []byte(out), 0644); err != nil {
		result.failed(path, fmt.Errorf("failed to write output: %w", err))
		return
	}
	if err := b.state.Update(path, dest, to); err != nil {
		b.logger.StateError("update", err)
		result.failed(path, err)
		return
	}

	b.logger.FileConverted(path, dest)
	result.converted(path)
}

// ScanDirectory lists the files under dir in format from, skipping outDir
// when it sits inside dir and any path matching an exclude pattern.
// Patterns match the slash-separated path relative to dir or the base name.
func ScanDirectory(dir, outDir string, from convert.Format, exclude []string) ([]string, error) {
	var files []string

	absOut := ""
	if outDir != "" {
		absOut, _ = filepath.Abs(outDir)
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if abs, _ := filepath.Abs(path); abs == absOut || Excluded(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if from.MatchesPath(path) && !Excluded(rel, exclude) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// Excluded reports whether rel matches one of the patterns
func Excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// OutputPath mirrors path from srcDir into outDir with the extension of
// format to
func OutputPath(srcDir, outDir, path string, to convert.Format) (string, error) {
	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	ext := filepath.Ext(rel)
	return filepath.Join(outDir, rel[:len(rel)-len(ext)]+to.Extension()), nil
}
