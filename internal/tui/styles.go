package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gerunddev/markbridge/internal/styles"
)

var (
	titleStyle     = styles.TitleStyle
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Comment))
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Foreground))
	tableStyle     = styles.TableStyle
	spinnerStyle   = styles.SpinnerStyle
	helpStyle      = styles.HelpStyle
	successStyle   = styles.SuccessStyle
	errorStyle     = styles.ErrorStyle
	warningStyle   = styles.WarningStyle
	highlightStyle = styles.HighlightStyle
)
