package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gerunddev/markbridge/internal/styles"
)

// PreviewData is one converted document
type PreviewData struct {
	Name   string
	From   string
	To     string
	Source string
	// Output is the conversion as it should be displayed, already
	// rendered for the terminal where that applies
	Output string
}

type previewModel struct {
	viewport   viewport.Model
	data       PreviewData
	showSource bool
	width      int
	height     int
}

// chrome is the number of lines around the viewport: title, blank line,
// viewport border and status bar
const chrome = 5

// InitPreviewModel creates a preview of a converted document
func InitPreviewModel(data PreviewData) previewModel {
	vp := viewport.New(100, 20)
	vp.Style = styles.ViewportStyle
	vp.SetContent(data.Output)

	return previewModel{
		viewport: vp,
		data:     data,
	}
}

// RunPreview shows the preview until the user quits
func RunPreview(data PreviewData) error {
	p := tea.NewProgram(InitPreviewModel(data), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab":
			m.showSource = !m.showSource
			if m.showSource {
				m.viewport.SetContent(m.data.Source)
			} else {
				m.viewport.SetContent(m.data.Output)
			}
			m.viewport.GotoTop()
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MarkBridge Preview: " + m.data.Name))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar())

	return b.String()
}

func (m previewModel) statusBar() string {
	format, side := m.data.To, "output"
	if m.showSource {
		format, side = m.data.From, "source"
	}

	badge := styles.BadgeStyle.Render(format)
	info := styles.StatusBarStyle.Render(fmt.Sprintf("%s → %s • %s", m.data.From, m.data.To, side))
	help := styles.StatusBarStyle.Render("tab source/output • ↑/↓ scroll • q quit")
	percent := styles.StatusBarStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))

	gap := m.width - lipgloss.Width(badge) - lipgloss.Width(info) - lipgloss.Width(help) - lipgloss.Width(percent)
	filler := styles.StatusBarStyle.Render(strings.Repeat(" ", max(gap-2, 0)))

	return lipgloss.JoinHorizontal(lipgloss.Top, badge, info, filler, help, percent)
}
