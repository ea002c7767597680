package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/task-tracker/internal/ui"
)

// How long notifications stay in the status bar.
const (
	SuccessToastDuration = 3 * time.Second
	ErrorToastDuration   = 4 * time.Second
)

// toast is the notice currently in the status bar.
type toast struct {
	id int
	ui.Notice
}

// toastExpiredMsg dismisses the toast with the given id. A newer toast is
// left alone.
type toastExpiredMsg struct{ id int }

// notify shows text in the status bar and schedules its dismissal.
func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, Notice: ui.Notice{Text: text, IsErr: isErr}}

	d := SuccessToastDuration
	if isErr {
		d = ErrorToastDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
