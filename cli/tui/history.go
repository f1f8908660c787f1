package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/toggl-fetch/types"
)

// HistoryModel is a Bubble Tea model for browsing journal records.
// Records are shown in the order given; callers sort newest first.
type HistoryModel struct {
	records  []types.FetchRecord
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a new history model.
func NewHistoryModel(records []types.FetchRecord) HistoryModel {
	return HistoryModel{records: records}
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Fetch History"))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(MutedStyle.Render("(no records)"))
		b.WriteString("\n")
	}

	for i, rec := range m.records {
		line := fmt.Sprintf("%s  %s  %s → %s  %s",
			completedDay(rec), workspaceLabel(rec), rec.Since, rec.Until, rec.Format)
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(MutedStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(m.records) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderDetail(m.records[m.cursor]))
	}

	help := HelpStyle.Render("↑/k up · ↓/j down · q quit")
	return b.String() + "\n" + help
}

func (m HistoryModel) renderDetail(rec types.FetchRecord) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Record Details"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Run ID", rec.RunID},
		{"Workspace", workspaceLabel(rec)},
		{"Since", rec.Since},
		{"Until", rec.Until},
		{"Output", rec.Output},
		{"Format", string(rec.Format)},
		{"Size", formatSize(rec.SizeBytes)},
		{"Requests", fmt.Sprintf("%d (%d retried)", rec.Requests, rec.Retries)},
		{"Duration", fmt.Sprintf("%dms", rec.DurationMs)},
		{"Completed At", rec.CompletedAt},
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := row[1]
		if row[0] == "Format" {
			value = FormatStyle(rec.Format).Render(value)
		} else {
			value = ValueStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	return BoxStyle.Render(b.String())
}

// workspaceLabel prefers the workspace name, falling back to the id.
func workspaceLabel(rec types.FetchRecord) string {
	if rec.WorkspaceName != "" {
		return rec.WorkspaceName
	}
	return fmt.Sprintf("workspace %d", rec.WorkspaceID)
}

// completedDay trims the completion timestamp to its date portion.
func completedDay(rec types.FetchRecord) string {
	if len(rec.CompletedAt) >= len("2006-01-02") {
		return rec.CompletedAt[:len("2006-01-02")]
	}
	return rec.CompletedAt
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// keyMap defines key bindings.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunHistoryTUI runs the history browser.
func RunHistoryTUI(data any) error {
	records, ok := data.([]types.FetchRecord)
	if !ok {
		return fmt.Errorf("invalid data type for history view")
	}

	model := NewHistoryModel(records)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderHistoryStatic renders the history view without a running program.
func RenderHistoryStatic(records []types.FetchRecord) string {
	model := NewHistoryModel(records)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
