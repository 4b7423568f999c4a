package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/markbridge/internal/batch"
	"github.com/gerunddev/markbridge/internal/daemon"
	"github.com/gerunddev/markbridge/internal/styles"
	"github.com/gerunddev/markbridge/internal/tui"
)

// Start runs watch in the background with the given arguments
func Start(raw []string) {
	if running, pid, _ := daemon.IsRunning(); running {
		fail(fmt.Sprintf("Watch already running with PID %d", pid))
	}

	// validate before detaching, errors of the child are not visible
	if _, err := parseArgs(raw, []string{"--from", "--to", "--interval"}, nil); err != nil {
		fail(err.Error())
	}
	loadConfig()

	if err := daemon.Daemonize(append([]string{"watch"}, raw...)); err != nil {
		fail("Failed to start watch: " + err.Error())
	}

	// give it a moment to write its PID file
	var (
		running bool
		pid     int
	)
	for range 10 {
		time.Sleep(200 * time.Millisecond)
		if running, pid, _ = daemon.IsRunning(); running {
			break
		}
	}
	if !running {
		fail("Watch failed to start, see the log file")
	}

	fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("✓ Watch started with PID %d", pid)))
	fmt.Println(styles.DimStyle.Render("  Run 'markbridge status' to check on it"))
}

// Stop stops the background watch
func Stop() {
	running, pid, _ := daemon.IsRunning()
	if !running {
		fmt.Println(styles.DimStyle.Render("Watch is not running"))
		return
	}

	fmt.Printf("Stopping watch (PID %d)...\n", pid)
	if err := daemon.Stop(); err != nil && !errors.Is(err, daemon.ErrNotRunning) {
		fail("Failed to stop watch: " + err.Error())
	}

	for range 10 {
		time.Sleep(500 * time.Millisecond)
		if running, _, _ = daemon.IsRunning(); !running {
			break
		}
	}
	if running {
		fail("Watch did not stop gracefully")
	}

	fmt.Println(styles.SuccessStyle.Render("✓ Watch stopped"))
}

// Status shows whether the watch runs and how many sources are pending
func Status() {
	s := newBatchSetup(args{})
	defer s.cleanup()

	fmt.Println(styles.TitleStyle.Render("MarkBridge Status"))
	fmt.Println()

	label := styles.DimStyle
	if running, pid, start := daemon.IsRunning(); running {
		uptime := time.Since(start).Round(time.Second)
		fmt.Printf("%s %s\n", label.Render("Watch:  "), styles.SuccessStyle.Render(fmt.Sprintf("● running (PID %d, up %v)", pid, uptime)))
	} else {
		fmt.Printf("%s %s\n", label.Render("Watch:  "), styles.WarningStyle.Render("○ stopped"))
	}
	fmt.Printf("%s %s → %s\n", label.Render("Dirs:   "), s.srcDir, s.outDir)
	fmt.Printf("%s %s → %s\n", label.Render("Formats:"), s.from, s.to)

	files, err := batch.ScanDirectory(s.srcDir, s.outDir, s.from, s.cfg.ExcludePatterns)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println(styles.WarningStyle.Render("Source directory does not exist"))
			return
		}
		fail("Failed to scan: " + err.Error())
	}

	pending := 0
	for _, path := range files {
		if changed, err := s.state.HasChanged(path, s.to.String()); err != nil || changed {
			pending++
		}
	}
	fmt.Printf("%s %d source(s), %s\n", label.Render("Files:  "), len(files),
		styles.HighlightStyle.Render(fmt.Sprintf("%d pending", pending)))
}

// Dashboard shows the watch state and the tail of its log, refreshed
// every two seconds
func Dashboard() {
	cfg := loadConfig()

	m := tui.InitWatchModel()
	p := tea.NewProgram(m, tea.WithInput(os.Stdin))

	send := func() {
		running, pid, start := daemon.IsRunning()
		data := &tui.WatchData{
			Running:   running,
			PID:       pid,
			StartTime: start,
			LogFile:   cfg.LogFile,
		}
		if cfg.LogFile != "" {
			data.LogLines, data.LastRun, data.FilesConverted = ParseLogFile(cfg.LogFile, 20)
		}
		p.Send(tui.WatchMsg{Data: data})
	}

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		send()
		for range ticker.C {
			send()
		}
	}()

	if _, err := p.Run(); err != nil {
		fail("Error: " + err.Error())
	}
}
