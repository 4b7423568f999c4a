package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseErrorFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.ParseError("post.bb", 3, 7, errors.New("unknown tag"))

	out := buf.String()
	for _, want := range []string{"parse error", "file=post.bb", "line=3", "column=7", "unknown tag"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in log output, got %q", want, out)
		}
	}
}

func TestLevelFiltersDebugHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.InfoLevel)

	l.Skipped("a.bb", "unchanged")
	l.ConversionCompleted("bbcode", "markdown", 10, time.Millisecond)
	if buf.Len() != 0 {
		t.Errorf("Expected debug entries to be filtered, got %q", buf.String())
	}

	l.BatchCompleted("run-1", 2, 1, 0, time.Second)
	if !strings.Contains(buf.String(), "files_converted=2") {
		t.Errorf("Expected batch summary, got %q", buf.String())
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markbridge.log")

	l, cleanup, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l.RequestServed("abc", "POST", "/convert", 200, time.Millisecond)
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "request_id=abc") {
		t.Errorf("Expected request entry in log file, got %q", data)
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b bytes.Buffer
	l := NewMultiLogger(&a, &b)

	l.CacheError("get", errors.New("connection refused"))

	if a.String() != b.String() || a.Len() == 0 {
		t.Errorf("Expected identical non-empty output, got %q and %q", a.String(), b.String())
	}
}
