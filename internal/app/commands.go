package app

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/task-tracker/internal/api"
	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/store"
	"github.com/nhle/task-tracker/internal/tasks"
)

// bootstrapDoneMsg is sent once the persisted session was checked.
type bootstrapDoneMsg struct{}

// authResultMsg is sent after a login or registration attempt.
type authResultMsg struct{ err error }

// tasksFetchedMsg is sent after the task list was reloaded from the API.
type tasksFetchedMsg struct{ err error }

// taskResultMsg is sent after a create, update, or delete round trip.
type taskResultMsg struct {
	success    string
	err        error
	deselected bool
}

// tickMsg carries the stopwatch's elapsed seconds.
type tickMsg struct{ elapsed int }

// stopwatchSavedMsg is sent after the stopwatch tried to save its seconds.
type stopwatchSavedMsg struct {
	task model.Task
	err  error
}

// todayMsg carries the seconds tracked today.
type todayMsg struct{ seconds int }

func (m Model) bootstrap() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		s.Bootstrap(ctx)
		return bootstrapDoneMsg{}
	}
}

func (m Model) login(email, password string) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		return authResultMsg{err: s.Login(ctx, email, password)}
	}
}

func (m Model) register(email, password, name string) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		return authResultMsg{err: s.Register(ctx, email, password, name)}
	}
}

func (m Model) fetchTasks() tea.Cmd {
	ctx, ts := m.ctx, m.taskStore
	return func() tea.Msg {
		return tasksFetchedMsg{err: ts.Fetch(ctx)}
	}
}

func (m Model) createTask(title, description string) tea.Cmd {
	ctx, ts := m.ctx, m.taskStore
	return func() tea.Msg {
		_, err := ts.Create(ctx, title, description)
		return taskResultMsg{success: "Task created", err: err}
	}
}

func (m Model) updateTask(id string, patch model.TaskPatch, success string) tea.Cmd {
	ctx, ts := m.ctx, m.taskStore
	return func() tea.Msg {
		_, err := ts.Update(ctx, id, patch)
		return taskResultMsg{success: success, err: err}
	}
}

func completedPatch(completed bool) model.TaskPatch {
	return model.TaskPatch{Completed: &completed}
}

// confirmDelete opens a yes/no prompt before deleting the task.
func (m *Model) confirmDelete(id, title string) tea.Cmd {
	*m.confirmed = false
	m.pendingDelete = id
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", title)).
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirmed),
		),
	).WithShowHelp(false)
	m.currentView = ViewConfirmDelete
	return m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.currentView = ViewDashboard
		return m, nil
	}

	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		m.confirm = nil
		m.currentView = ViewDashboard
		if *m.confirmed {
			return m, m.deleteTask(m.pendingDelete)
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		m.currentView = ViewDashboard
		return m, nil
	}
	return m, cmd
}

// deleteTask removes the task, forgets its journal history, and clears it
// from the stopwatch when it was selected there.
func (m Model) deleteTask(id string) tea.Cmd {
	ctx, ts, sw, journal := m.ctx, m.taskStore, m.stopwatch, m.journal
	return func() tea.Msg {
		if err := ts.Delete(ctx, id); err != nil {
			return taskResultMsg{err: err}
		}

		deselected := false
		if sw.SelectedTaskID() == id && !sw.Running() {
			deselected = sw.Select("") == nil
		}
		if journal != nil {
			if err := journal.DeleteEntriesForTask(ctx, id); err != nil {
				log.Printf("app: %v", err)
			}
		}
		return taskResultMsg{success: "Task deleted", deselected: deselected}
	}
}

func (m Model) stopAndSave() tea.Cmd {
	ctx, sw := m.ctx, m.stopwatch
	return func() tea.Msg {
		task, err := sw.Stop(ctx)
		return stopwatchSavedMsg{task: task, err: err}
	}
}

func (m Model) retrySave() tea.Cmd {
	ctx, sw := m.ctx, m.stopwatch
	return func() tea.Msg {
		task, err := sw.Save(ctx)
		return stopwatchSavedMsg{task: task, err: err}
	}
}

func (m Model) loadToday() tea.Cmd {
	ctx, journal, s, now := m.ctx, m.journal, m.session, m.now
	return func() tea.Msg {
		if journal == nil {
			return todayMsg{}
		}
		filter := store.EntryFilter{Since: store.StartOfDay(now())}
		if u := s.State().User; u != nil {
			filter.UserID = u.ID
		}
		total, err := journal.TotalSeconds(ctx, filter)
		if err != nil {
			log.Printf("app: loading today's total: %v", err)
			return todayMsg{}
		}
		return todayMsg{seconds: total}
	}
}

// recordEntry journals seconds the stopwatch saved to task.
func (m Model) recordEntry(task model.Task, seconds int) {
	if m.journal == nil {
		return
	}
	entry := model.TrackedEntry{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Seconds:   seconds,
		SavedAt:   m.now(),
	}
	if u := m.session.State().User; u != nil {
		entry.UserID = u.ID
	}
	if _, err := m.journal.RecordEntry(m.ctx, entry); err != nil {
		log.Printf("app: %v", err)
	}
}

// waitForTick blocks until the stopwatch ticks or the app quits.
func waitForTick(ctx context.Context, ticks <-chan int) tea.Cmd {
	return func() tea.Msg {
		select {
		case elapsed := <-ticks:
			return tickMsg{elapsed: elapsed}
		case <-ctx.Done():
			return nil
		}
	}
}

// needsLogin reports whether err means the session is gone.
func needsLogin(err error) bool {
	return tasks.IsAuthRequired(err) || api.IsUnauthorized(err)
}
