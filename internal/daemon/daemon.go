// Package daemon runs the watch loop as a detached background process
// tracked through a PID file.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
)

// ErrNotRunning is returned when no live daemon owns the PID file
var ErrNotRunning = errors.New("daemon is not running")

// PIDFile returns the path to the daemon PID file. It is a variable so
// tests can point it at a temporary directory.
var PIDFile = func() string {
	return filepath.Join(xdg.StateHome, "markbridge", "watch.pid")
}

// WritePID writes the current process ID to the PID file
func WritePID() error {
	pidFile := PIDFile()

	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	content := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(pidFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	return nil
}

// ReadPID reads the daemon PID from the PID file
func ReadPID() (int, error) {
	content, err := os.ReadFile(PIDFile())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

// RemovePID removes the PID file
func RemovePID() error {
	if err := os.Remove(PIDFile()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the daemon is alive, with its PID and the PID
// file's modification time as its start time. A stale PID file is removed.
func IsRunning() (bool, int, time.Time) {
	pid, err := ReadPID()
	if err != nil {
		return false, 0, time.Time{}
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, time.Time{}
	}

	// signal 0 only checks that the process exists
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemovePID()
		return false, 0, time.Time{}
	}

	var startTime time.Time
	if info, err := os.Stat(PIDFile()); err == nil {
		startTime = info.ModTime()
	}

	return true, pid, startTime
}

// Stop asks the daemon to shut down with SIGTERM
func Stop() error {
	running, pid, _ := IsRunning()
	if !running {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	return nil
}

// Daemonize starts this executable with args as a detached process
func Daemonize(args []string) error {
	if running, pid, _ := IsRunning(); running {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release daemon process: %w", err)
	}

	return nil
}
