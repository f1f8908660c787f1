// Package tui provides Bubble Tea TUI components for the toggl-fetch CLI.
//
// TUI rules:
//   - TUI is opt-in only (--tui flag)
//   - TUI is read-only (history browser)
//   - TUI uses the same data payloads as non-TUI rendering
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/toggl-fetch/types"
)

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
	accentColor    = lipgloss.Color("#10B981") // Green
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	// ValueStyle for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// MutedStyle for unselected rows and placeholders.
	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// SelectedStyle for the cursor row.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// FormatStyle returns a style based on the artifact format.
func FormatStyle(format types.ReportFormat) lipgloss.Style {
	switch format {
	case types.FormatJSON:
		return lipgloss.NewStyle().Foreground(highlightColor)
	case types.FormatPDF:
		return lipgloss.NewStyle().Foreground(accentColor)
	default:
		return ValueStyle
	}
}
