package tasklist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task    model.Task
	Tracked bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns the status and accumulated time.
func (i TaskItem) Description() string {
	return fmt.Sprintf("%s | %s", i.Task.StatusLabel(), model.FormatDuration(i.Task.TimeSpent.Int()))
}

// ItemDelegate implements list.ItemDelegate for rendering task lines.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := ti.Task

	prefix := "○"
	if t.Completed {
		prefix = "✓"
	}

	marker := "  "
	if ti.Tracked {
		marker = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("⏱ ")
	}

	status := theme.StatusStyle(t.Completed).Render(t.StatusLabel())
	spent := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(model.FormatDuration(t.TimeSpent.Int()))

	line := fmt.Sprintf("%s %s%s %s  %s", prefix, marker, t.Title, status, spent)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
