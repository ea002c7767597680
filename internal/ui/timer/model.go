package timer

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/stopwatch"
	"github.com/nhle/task-tracker/internal/theme"
)

// Model is the stopwatch panel on the dashboard. It holds a snapshot of
// the stopwatch; the owning model refreshes it after every tick.
type Model struct {
	State     stopwatch.State
	Saving    bool
	Elapsed   int
	TaskTitle string
	Today     int
	width     int
}

// New creates an empty timer panel.
func New(width int) Model {
	return Model{width: width}
}

// SetWidth updates the panel width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// stateKey maps a stopwatch state to a theme key.
func stateKey(s stopwatch.State) string {
	switch s {
	case stopwatch.Running:
		return "running"
	case stopwatch.StoppedUnsaved:
		return "unsaved"
	default:
		return "idle"
	}
}

// View renders the panel.
func (m Model) View() string {
	task := m.TaskTitle
	if task == "" {
		task = lipgloss.NewStyle().Foreground(theme.ColorGray).Render("no task selected (enter)")
	}

	label := m.State.String()
	switch {
	case m.Saving:
		label = "saving..."
	case m.State == stopwatch.StoppedUnsaved:
		label = "unsaved, space to retry"
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.ClockStyle.Render(model.FormatClock(m.Elapsed)),
		"  ",
		theme.StopwatchStyle(stateKey(m.State)).Render(label),
	)
	bottom := fmt.Sprintf("%s  ·  today %s", task, model.FormatDuration(m.Today))

	style := theme.PanelStyle
	if m.State == stopwatch.Running {
		style = theme.ActivePanelStyle
	}
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, top, bottom))
}

// Height is the number of rows the panel occupies.
func (m Model) Height() int {
	return lipgloss.Height(m.View())
}
