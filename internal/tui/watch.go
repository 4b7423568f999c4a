package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// WatchData is a snapshot of the background watch and its log
type WatchData struct {
	Running        bool
	PID            int
	StartTime      time.Time
	LogFile        string
	LastRun        time.Time
	FilesConverted int
	LogLines       []string
}

// WatchMsg carries a fresh snapshot
type WatchMsg struct {
	Data *WatchData
	Err  error
}

type watchModel struct {
	data  *WatchData
	err   error
	ready bool
	now   func() time.Time
}

// InitWatchModel creates the watch dashboard model. Snapshots arrive as
// WatchMsg sent by the caller.
func InitWatchModel() watchModel {
	return watchModel{now: time.Now}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case WatchMsg:
		m.ready = true
		m.data = msg.Data
		m.err = msg.Err
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MarkBridge Watch Dashboard"))
	b.WriteString("\n\n")

	if m.err != nil {
		return errorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}
	if !m.ready || m.data == nil {
		return b.String()
	}

	b.WriteString(labelStyle.Render("Watch"))
	b.WriteString("\n")
	if m.data.Running {
		uptime := m.now().Sub(m.data.StartTime).Round(time.Second)
		b.WriteString(fmt.Sprintf("  Status: %s\n", successStyle.Render("● Running")))
		b.WriteString(fmt.Sprintf("  PID:    %s\n", valueStyle.Render(fmt.Sprintf("%d", m.data.PID))))
		b.WriteString(fmt.Sprintf("  Uptime: %s\n", valueStyle.Render(uptime.String())))
	} else {
		b.WriteString(fmt.Sprintf("  Status: %s\n", warningStyle.Render("○ Not running")))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Last Batch"))
	b.WriteString("\n")
	if !m.data.LastRun.IsZero() {
		ago := m.now().Sub(m.data.LastRun).Round(time.Second)
		b.WriteString(fmt.Sprintf("  Finished:  %s ago\n", valueStyle.Render(ago.String())))
		b.WriteString(fmt.Sprintf("  Converted: %s\n", highlightStyle.Render(fmt.Sprintf("%d", m.data.FilesConverted))))
	} else {
		b.WriteString(fmt.Sprintf("  %s\n", helpStyle.Render("No batch completed yet")))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Recent Logs"))
	if m.data.LogFile != "" {
		b.WriteString(helpStyle.Render("  " + m.data.LogFile))
	}
	b.WriteString("\n")
	if len(m.data.LogLines) > 0 {
		for _, line := range m.data.LogLines {
			b.WriteString("  " + line + "\n")
		}
	} else {
		b.WriteString(helpStyle.Render("  No logs available"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("q quit • auto-refresh: 2s"))
	b.WriteString("\n")
	return b.String()
}
