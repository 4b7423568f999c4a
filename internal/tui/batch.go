package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/markbridge/internal/batch"
)

// batchModel is the Bubble Tea model for the batch progress display
type batchModel struct {
	spinner  spinner.Model
	status   string
	complete bool
	result   *batch.Result
	err      error
}

// BatchMsg is sent when a batch run completes
type BatchMsg struct {
	Result *batch.Result
	Err    error
}

// InitBatchModel creates a new batch progress model
func InitBatchModel(status string) batchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return batchModel{
		spinner: s,
		status:  status,
	}
}

// RunBatch shows a spinner while run executes and returns its outcome
func RunBatch(status string, run func() (*batch.Result, error)) (*batch.Result, error) {
	p := tea.NewProgram(InitBatchModel(status))

	go func() {
		result, err := run()
		p.Send(BatchMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(batchModel)
	if !m.complete {
		return nil, fmt.Errorf("batch interrupted")
	}
	return m.result, m.err
}

func (m batchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case BatchMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m batchModel) View() string {
	if !m.complete {
		return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
	}

	if m.err != nil {
		return errorStyle.Render("✗ Batch failed: "+m.err.Error()) + "\n"
	}

	r := m.result
	took := helpStyle.Render(fmt.Sprintf("Completed in %v", r.EndTime.Sub(r.StartTime).Round(time.Millisecond))) + "\n"
	if len(r.Converted) == 0 && len(r.Errors) == 0 {
		return successStyle.Render("✓ Nothing to convert") + "\n" + took
	}

	verb := "Converted"
	if r.DryRun {
		verb = "Would convert"
	}
	msg := successStyle.Render(fmt.Sprintf("✓ %s %d file(s)", verb, len(r.Converted)))
	if r.Skipped > 0 {
		msg += ", " + highlightStyle.Render(fmt.Sprintf("%d unchanged", r.Skipped))
	}
	if len(r.Errors) > 0 {
		msg += ", " + errorStyle.Render(fmt.Sprintf("%d error(s)", len(r.Errors)))
		for _, err := range r.Errors {
			msg += "\n  " + warningStyle.Render(err.Error())
		}
	}
	return msg + "\n" + took
}
