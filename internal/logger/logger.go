package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	cleanup := func() {
		f.Close()
	}

	return &Logger{Logger: l}, cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	w := io.MultiWriter(writers...)
	return New(w)
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ConversionCompleted logs a finished conversion
func (l *Logger) ConversionCompleted(from, to string, size int, duration time.Duration) {
	l.Debug("conversion completed",
		"from", from,
		"to", to,
		"bytes", size,
		"duration", duration.Round(time.Microsecond))
}

// ConversionError logs a failed conversion
func (l *Logger) ConversionError(source, dest string, err error) {
	l.Error("conversion failed",
		"source", source,
		"dest", dest,
		"error", err)
}

// ParseError logs a parse error at its line and column
func (l *Logger) ParseError(file string, line, column int, err error) {
	l.Error("parse error",
		"file", file,
		"line", line,
		"column", column,
		"error", err)
}

// FileConverted logs a file written by a batch
func (l *Logger) FileConverted(source, dest string) {
	l.Info("file converted",
		"source", source,
		"dest", dest)
}

// Skipped logs when a file is skipped
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}

// BatchStarted logs the start of a batch run
func (l *Logger) BatchStarted(runID, srcDir, outDir string) {
	l.Info("batch started",
		"run", runID,
		"src_dir", srcDir,
		"out_dir", outDir)
}

// BatchCompleted logs the completion of a batch run
func (l *Logger) BatchCompleted(runID string, converted, skipped, errors int, duration time.Duration) {
	l.Info("batch completed",
		"run", runID,
		"files_converted", converted,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path, from, to string) {
	l.Debug("config loaded",
		"path", path,
		"from", from,
		"to", to)
}

// CacheError logs a cache failure. Cache failures never fail a request.
func (l *Logger) CacheError(operation string, err error) {
	l.Warn("cache error",
		"operation", operation,
		"error", err)
}

// RequestServed logs a handled HTTP request
func (l *Logger) RequestServed(requestID, method, path string, status int, duration time.Duration) {
	l.Info("request served",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", status,
		"duration", duration.Round(time.Microsecond))
}
