package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func usePIDFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run", "watch.pid")
	orig := PIDFile
	PIDFile = func() string { return path }
	t.Cleanup(func() { PIDFile = orig })
	return path
}

func TestWriteAndReadPID(t *testing.T) {
	usePIDFile(t)

	if err := WritePID(); err != nil {
		t.Fatalf("WritePID failed: %v", err)
	}

	pid, err := ReadPID()
	if err != nil {
		t.Fatalf("ReadPID failed: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("Expected PID %d, got %d", os.Getpid(), pid)
	}

	running, got, start := IsRunning()
	if !running {
		t.Fatal("Expected the current process to be reported as running")
	}
	if got != os.Getpid() {
		t.Errorf("Expected PID %d, got %d", os.Getpid(), got)
	}
	if start.IsZero() {
		t.Error("Expected a start time")
	}

	if err := RemovePID(); err != nil {
		t.Fatalf("RemovePID failed: %v", err)
	}
	if _, err := ReadPID(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning after removal, got %v", err)
	}
}

func TestRemovePIDMissing(t *testing.T) {
	usePIDFile(t)

	if err := RemovePID(); err != nil {
		t.Errorf("RemovePID on a missing file should succeed, got %v", err)
	}
}

func TestReadPIDInvalid(t *testing.T) {
	path := usePIDFile(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadPID(); err == nil || errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected a parse error, got %v", err)
	}

	running, _, _ := IsRunning()
	if running {
		t.Error("Expected not running with an invalid PID file")
	}
}

func TestStopNotRunning(t *testing.T) {
	usePIDFile(t)

	if err := Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning, got %v", err)
	}
}
