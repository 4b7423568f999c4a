package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gerunddev/markbridge/internal/styles"
)

// BrowseData holds the source files of a batch and their status
type BrowseData struct {
	SourceDir string
	OutputDir string
	Files     []FileInfo
}

// FileStatus describes a source file relative to its output
type FileStatus string

const (
	StatusConverted FileStatus = "converted"
	StatusChanged   FileStatus = "changed"
	StatusNew       FileStatus = "new"
)

// Icon returns the table icon for the status
func (s FileStatus) Icon() string {
	switch s {
	case StatusConverted:
		return "✓"
	case StatusChanged:
		return "✗"
	default:
		return "→"
	}
}

// FileInfo represents one source file and its output
type FileInfo struct {
	Name       string
	SourcePath string
	OutputPath string
	Status     FileStatus
}

// BrowseMsg is sent when browse data is ready
type BrowseMsg struct {
	Data *BrowseData
	Err  error
}

// DiffMsg is sent when diff preview is ready
type DiffMsg struct {
	Content string
	Err     error
}

// ConvertedMsg is sent after converting the selected file
type ConvertedMsg struct {
	Name string
	Err  error
}

// RefreshBrowseMsg triggers a browse data refresh
type RefreshBrowseMsg struct{}

// DiffFunc diffs a source against its output
type DiffFunc func(sourcePath, outputPath string) (string, error)

// ConvertFunc converts one source file into its output
type ConvertFunc func(sourcePath, outputPath string) error

type browseModel struct {
	table        table.Model
	viewport     viewport.Model
	data         *BrowseData
	err          error
	notice       string
	ready        bool
	showingDiff  bool
	width        int
	height       int
	selectedFile *FileInfo
	diffFunc     DiffFunc
	convertFunc  ConvertFunc
	refreshFunc  func()
}

// InitBrowseModel creates a new file browser model
func InitBrowseModel(diffFunc DiffFunc, convertFunc ConvertFunc, refreshFunc func()) browseModel {
	columns := []table.Column{
		{Title: "File", Width: 50},
		{Title: "Status", Width: 14},
		{Title: "Output", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	ts := table.DefaultStyles()
	ts.Header = styles.HeaderStyle.
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true)
	ts.Selected = styles.SelectedStyle
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = styles.ViewportStyle

	return browseModel{
		table:       t,
		viewport:    vp,
		diffFunc:    diffFunc,
		convertFunc: convertFunc,
		refreshFunc: refreshFunc,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) selected() *FileInfo {
	if m.data == nil {
		return nil
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.data.Files) {
		return nil
	}
	return &m.data.Files[idx]
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-10, 3))
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-6, 3)

	case tea.KeyMsg:
		if m.showingDiff {
			switch msg.String() {
			case "q", "esc":
				m.showingDiff = false
				return m, nil
			case "c":
				m.showingDiff = false
				return m, m.convertSelected()
			}
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "d":
			if file := m.selected(); file != nil {
				m.selectedFile = file
				m.showingDiff = true
				m.viewport.SetContent("Loading diff...")
				return m, m.loadDiff(*file)
			}
			return m, nil
		case "c":
			m.selectedFile = m.selected()
			return m, m.convertSelected()
		case "r":
			return m, m.refresh()
		}
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case BrowseMsg:
		m.ready = true
		m.data = msg.Data
		m.err = msg.Err

		if m.data != nil {
			rows := []table.Row{}
			for _, file := range m.data.Files {
				rows = append(rows, table.Row{
					file.Name,
					fmt.Sprintf("%s %s", file.Status.Icon(), file.Status),
					file.OutputPath,
				})
			}
			m.table.SetRows(rows)
		}

		return m, nil

	case DiffMsg:
		switch {
		case msg.Err != nil:
			m.viewport.SetContent(errorStyle.Render("✗ " + msg.Err.Error()))
		case msg.Content == "":
			m.viewport.SetContent(successStyle.Render("✓ Output is up to date"))
		default:
			m.viewport.SetContent(msg.Content)
		}
		m.viewport.GotoTop()
		return m, nil

	case ConvertedMsg:
		if msg.Err != nil {
			m.notice = errorStyle.Render("✗ " + msg.Err.Error())
		} else {
			m.notice = successStyle.Render("✓ Converted " + msg.Name)
		}
		return m, m.refresh()

	case RefreshBrowseMsg:
		return m, m.refresh()
	}

	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MarkBridge File Browser"))
	b.WriteString("\n\n")

	if m.err != nil {
		return errorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}

	if !m.ready || m.data == nil {
		return b.String()
	}

	if m.showingDiff && m.selectedFile != nil {
		b.WriteString(labelStyle.Render(fmt.Sprintf("Diff Preview: %s", m.selectedFile.Name)))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/k up • ↓/j down • c convert • esc/q back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(labelStyle.Render("Source: "))
	b.WriteString(valueStyle.Render(m.data.SourceDir))
	b.WriteString(labelStyle.Render("  Output: "))
	b.WriteString(valueStyle.Render(m.data.OutputDir))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Files: %d", len(m.data.Files))))
	b.WriteString("\n\n")
	b.WriteString(tableStyle.Render(m.table.View()))
	b.WriteString("\n\n")
	if m.notice != "" {
		b.WriteString(m.notice)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/k up • ↓/j down • enter/d diff • c convert • r refresh • q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m browseModel) loadDiff(file FileInfo) tea.Cmd {
	return func() tea.Msg {
		if m.diffFunc == nil {
			return DiffMsg{}
		}
		content, err := m.diffFunc(file.SourcePath, file.OutputPath)
		return DiffMsg{Content: content, Err: err}
	}
}

func (m browseModel) convertSelected() tea.Cmd {
	file := m.selectedFile
	if file == nil || m.convertFunc == nil {
		return nil
	}
	return func() tea.Msg {
		return ConvertedMsg{Name: file.Name, Err: m.convertFunc(file.SourcePath, file.OutputPath)}
	}
}

func (m browseModel) refresh() tea.Cmd {
	if m.refreshFunc == nil {
		return nil
	}
	return func() tea.Msg {
		m.refreshFunc()
		return nil
	}
}
