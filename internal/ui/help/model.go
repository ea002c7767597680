package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-tracker/internal/keys"
	"github.com/nhle/task-tracker/internal/theme"
)

type section struct {
	title    string
	bindings []key.Binding
}

func sections(k *keys.KeyMap) []section {
	return []section{
		{"Tasks", []key.Binding{k.Up, k.Down, k.New, k.Edit, k.Toggle, k.Delete, k.Refresh}},
		{"Stopwatch", []key.Binding{k.Track, k.StartStop, k.Reset}},
		{"General", []key.Binding{k.Help, k.Back, k.Logout, k.Quit}},
	}
}

const stopwatchNote = "Stopping saves the elapsed time to the selected task. " +
	"If the save fails the seconds are kept: press space to retry or 0 to discard them."

// Model lists the key bindings grouped by what they act on.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates the help screen.
func New(k *keys.KeyMap, width, height int) Model {
	m := Model{keys: k, help: help.New()}
	m.SetSize(width, height)
	return m
}

// View renders one column per section and the stopwatch note below.
func (m Model) View() string {
	var cols []string
	for _, s := range sections(m.keys) {
		col := lipgloss.JoinVertical(lipgloss.Left,
			theme.TitleStyle.Render(s.title),
			m.help.FullHelpView([][]key.Binding{s.bindings}),
		)
		cols = append(cols, lipgloss.NewStyle().MarginRight(4).Render(col))
	}

	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Keyboard Shortcuts"),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		"",
		theme.HelpStyle.Width(inner).Render(stopwatchNote),
	)

	style := theme.PanelStyle.Width(inner)
	if m.height > 4 {
		style = style.Height(m.height - 4)
	}
	return style.Render(body)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
