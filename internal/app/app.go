package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-tracker/internal/session"
	"github.com/nhle/task-tracker/internal/stopwatch"
	"github.com/nhle/task-tracker/internal/store"
	"github.com/nhle/task-tracker/internal/tasks"
	"github.com/nhle/task-tracker/internal/theme"
	"github.com/nhle/task-tracker/internal/ui"
	authview "github.com/nhle/task-tracker/internal/ui/auth"
	helpview "github.com/nhle/task-tracker/internal/ui/help"
	"github.com/nhle/task-tracker/internal/ui/taskform"
	"github.com/nhle/task-tracker/internal/ui/tasklist"
	timerview "github.com/nhle/task-tracker/internal/ui/timer"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBootstrap ViewState = iota
	ViewAuth
	ViewDashboard
	ViewTaskForm
	ViewConfirmDelete
	ViewHelp
)

// Deps are the stores the UI drives.
type Deps struct {
	Session *session.Store
	Tasks   *tasks.Store

	// Journal is optional; without it saved sessions are not recorded.
	Journal store.Store

	// StopwatchOptions are appended to the stopwatch defaults.
	StopwatchOptions []stopwatch.Option

	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and the session, task, and stopwatch stores.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	session   *session.Store
	taskStore *tasks.Store
	journal   store.Store
	stopwatch *stopwatch.Stopwatch
	saving    bool // a stop or retry save was issued and has not answered
	ticks     chan int
	now       func() time.Time

	currentView  ViewState
	previousView ViewState
	frame        ui.Frame
	keys         *KeyMap
	ready        bool

	spinner   spinner.Model
	authView  authview.Model
	taskList  tasklist.Model
	taskForm  taskform.Model
	timerView timerview.Model
	helpView  helpview.Model

	confirm       *huh.Form
	confirmed     *bool
	pendingDelete string

	toast    *toast
	toastSeq int
}

// New creates the root model. All requests it issues derive from one
// context that is cancelled on quit.
func New(deps Deps) Model {
	ctx, cancel := context.WithCancel(context.Background())
	k := DefaultKeyMap()

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		ctx:         ctx,
		cancel:      cancel,
		session:     deps.Session,
		taskStore:   deps.Tasks,
		journal:     deps.Journal,
		ticks:       make(chan int, 1),
		now:         now,
		currentView: ViewBootstrap,
		keys:        k,
		authView:    authview.New(80, 24),
		taskList:    tasklist.New(80, 20),
		taskForm:    taskform.New(80, 24),
		timerView:   timerview.New(80),
		helpView:    helpview.New(k, 80, 24),
		confirmed:   new(bool),
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)
	m.spinner = sp

	ticks := m.ticks
	opts := []stopwatch.Option{
		stopwatch.WithOnTick(func(elapsed int) {
			// The view re-reads the stopwatch, so a missed tick is harmless.
			select {
			case ticks <- elapsed:
			default:
			}
		}),
		stopwatch.WithOnSaved(m.recordEntry),
	}
	m.stopwatch = stopwatch.New(deps.Tasks, append(opts, deps.StopwatchOptions...)...)

	return m
}

// Init restores the session and starts listening for stopwatch ticks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.bootstrap(),
		waitForTick(m.ctx, m.ticks),
	)
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		if m.currentView == ViewBootstrap {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m.updateActiveView(msg)

	case bootstrapDoneMsg:
		if m.session.State().Authenticated() {
			cmd := m.enterDashboard()
			return m, cmd
		}
		cmd := m.enterAuth()
		return m, cmd

	case authview.LoginSubmittedMsg:
		return m, m.login(msg.Email, msg.Password)

	case authview.RegisterSubmittedMsg:
		return m, m.register(msg.Email, msg.Password, msg.Name)

	case authResultMsg:
		if msg.err != nil {
			cmd := m.authView.Fail(msg.err.Error())
			return m, cmd
		}
		welcome := "Welcome"
		if u := m.session.State().User; u != nil {
			welcome = "Welcome, " + u.DisplayName()
		}
		cmd := tea.Batch(m.enterDashboard(), m.notify(welcome, false))
		return m, cmd

	case tasksFetchedMsg:
		m.taskList.SetLoading(false)
		cmd := m.refreshList()
		if msg.err != nil {
			errCmd := tea.Batch(cmd, m.handleError(msg.err))
			return m, errCmd
		}
		return m, cmd

	case taskResultMsg:
		cmd := m.refreshList()
		if msg.err != nil {
			errCmd := tea.Batch(cmd, m.handleError(msg.err))
			return m, errCmd
		}
		cmds := []tea.Cmd{cmd, m.notify(msg.success, false)}
		if msg.deselected {
			m.syncTimer()
			cmds = append(cmds, m.loadToday())
		}
		return m, tea.Batch(cmds...)

	case tickMsg:
		m.syncTimer()
		return m, waitForTick(m.ctx, m.ticks)

	case stopwatchSavedMsg:
		m.saving = false
		m.syncTimer()
		if msg.err != nil {
			cmd := tea.Batch(m.refreshList(), m.handleError(msg.err))
			return m, cmd
		}
		if msg.task.ID == "" {
			return m, nil
		}
		text := fmt.Sprintf("Saved time to %q", msg.task.Title)
		cmd := tea.Batch(m.refreshList(), m.loadToday(), m.notify(text, false))
		return m, cmd

	case todayMsg:
		m.timerView.Today = msg.seconds
		return m, nil

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case taskform.TaskSubmittedMsg:
		m.currentView = ViewDashboard
		return m, m.createTask(msg.Title, msg.Description)

	case taskform.TaskEditedMsg:
		m.currentView = ViewDashboard
		if msg.Patch.IsEmpty() {
			return m, nil
		}
		return m, m.updateTask(msg.ID, msg.Patch, "Task updated")

	case taskform.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			cmd := m.quit()
			return m, cmd
		}
		switch m.currentView {
		case ViewDashboard:
			return m.handleDashboardKeys(msg)
		case ViewTaskForm, ViewConfirmDelete:
			if key.Matches(msg, m.keys.Back) {
				m.currentView = ViewDashboard
				m.confirm = nil
				return m, nil
			}
		case ViewHelp:
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.currentView = m.previousView
				return m, nil
			}
			if key.Matches(msg, m.keys.Quit) {
				cmd := m.quit()
				return m, cmd
			}
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// handleDashboardKeys maps dashboard keys to task and stopwatch actions.
func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		cmd := m.quit()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.taskList.SetLoading(true)
		return m, m.fetchTasks()

	case key.Matches(msg, m.keys.New):
		m.currentView = ViewTaskForm
		cmd := m.taskForm.StartCreate()
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil
		}
		m.currentView = ViewTaskForm
		cmd := m.taskForm.StartEdit(task)
		return m, cmd

	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil
		}
		completed := !task.Completed
		text := "Task marked as in progress"
		if completed {
			text = "Task marked as completed"
		}
		return m, m.updateTask(task.ID, completedPatch(completed), text)

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil
		}
		if m.stopwatch.Running() && m.stopwatch.SelectedTaskID() == task.ID {
			cmd := m.notify(stopwatch.ErrRunning.Error(), true)
			return m, cmd
		}
		cmd := m.confirmDelete(task.ID, task.Title)
		return m, cmd

	case key.Matches(msg, m.keys.Track):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil
		}
		if m.saving {
			cmd := m.notify(stopwatch.ErrSaving.Error(), true)
			return m, cmd
		}
		if err := m.stopwatch.Select(task.ID); err != nil {
			cmd := m.notify(err.Error(), true)
			return m, cmd
		}
		m.syncTimer()
		cmd := m.refreshList()
		return m, cmd

	case key.Matches(msg, m.keys.StartStop):
		cmd := m.toggleStopwatch()
		return m, cmd

	case key.Matches(msg, m.keys.Reset):
		if m.saving {
			cmd := m.notify(stopwatch.ErrSaving.Error(), true)
			return m, cmd
		}
		if err := m.stopwatch.Reset(); err != nil {
			cmd := m.notify(err.Error(), true)
			return m, cmd
		}
		m.syncTimer()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		cmd := tea.Batch(m.logout(), m.notify("Signed out", false))
		return m, cmd
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ViewDashboard:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewConfirmDelete:
		return m.updateConfirm(msg)
	}

	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.frame = ui.NewFrame(width, height)
	m.ready = true

	contentWidth := m.frame.Width
	contentHeight := m.frame.BodyHeight()

	m.timerView.SetWidth(contentWidth)
	listHeight := contentHeight - m.timerView.Height()
	if listHeight < 3 {
		listHeight = 3
	}
	m.taskList.SetSize(contentWidth, listHeight)
	m.authView.SetSize(contentWidth, contentHeight)
	m.taskForm.SetSize(contentWidth, contentHeight)
	m.helpView.SetSize(contentWidth, contentHeight)
}

func (m *Model) enterDashboard() tea.Cmd {
	m.currentView = ViewDashboard
	m.taskList.SetLoading(true)
	return tea.Batch(m.fetchTasks(), m.loadToday())
}

func (m *Model) enterAuth() tea.Cmd {
	m.currentView = ViewAuth
	return m.authView.Reset()
}

// logout ends the session and discards the stopwatch without saving.
func (m *Model) logout() tea.Cmd {
	m.stopwatch.Close()
	_ = m.stopwatch.Select("")
	m.taskStore.Reset()
	m.session.Logout()
	m.syncTimer()
	m.timerView.Today = 0
	m.taskList.SetTasks(nil, "")
	return m.enterAuth()
}

func (m *Model) quit() tea.Cmd {
	m.stopwatch.Close()
	m.cancel()
	return tea.Quit
}

// handleError shows err, and returns to the sign-in screen when the
// server no longer accepts the session.
func (m *Model) handleError(err error) tea.Cmd {
	if needsLogin(err) {
		return tea.Batch(m.logout(), m.notify(err.Error(), true))
	}
	return m.notify(err.Error(), true)
}

// syncTimer copies the stopwatch state into the timer panel.
func (m *Model) syncTimer() {
	m.timerView.State = m.stopwatch.State()
	m.timerView.Saving = m.saving
	m.timerView.Elapsed = m.stopwatch.Elapsed()
	m.timerView.TaskTitle = ""
	if id := m.stopwatch.SelectedTaskID(); id != "" {
		if task, ok := m.taskStore.Task(id); ok {
			m.timerView.TaskTitle = task.Title
		}
	}
}

func (m *Model) refreshList() tea.Cmd {
	return m.taskList.SetTasks(m.taskStore.Tasks(), m.stopwatch.SelectedTaskID())
}

// toggleStopwatch starts the stopwatch, or stops it and saves. While a
// save is in flight the key does nothing.
func (m *Model) toggleStopwatch() tea.Cmd {
	if m.saving || m.stopwatch.Saving() {
		return nil
	}
	switch m.stopwatch.State() {
	case stopwatch.Running:
		m.saving = true
		m.syncTimer()
		return m.stopAndSave()
	case stopwatch.StoppedUnsaved:
		m.saving = true
		m.syncTimer()
		return m.retrySave()
	}
	if err := m.stopwatch.Start(); err != nil {
		return m.notify(err.Error(), true)
	}
	m.syncTimer()
	return nil
}

// View renders the frame around the active view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.currentView == ViewBootstrap {
		return m.frame.Centered(m.spinner.View() + " Restoring session...")
	}

	var notice *ui.Notice
	if m.toast != nil {
		notice = &m.toast.Notice
	}
	return m.frame.Compose(
		m.frame.Header(m.session.State(), m.now()),
		m.renderContent(),
		m.frame.StatusBar(notice, m.hints()),
	)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAuth:
		return m.authView.View()
	case ViewDashboard:
		return lipgloss.JoinVertical(lipgloss.Left, m.timerView.View(), m.taskList.View())
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewConfirmDelete:
		if m.confirm == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.View())
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// statusLine is the status bar text without styling.
func (m Model) statusLine() string {
	if m.toast != nil {
		return m.toast.Text
	}
	return m.hints()
}

// hints lists the keys of the active view.
func (m Model) hints() string {
	switch m.currentView {
	case ViewAuth:
		return "enter submit | ctrl+r login/register | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewTaskForm:
		return "enter submit | esc cancel"
	case ViewConfirmDelete:
		return "y/n confirm | esc cancel"
	default:
		return "q quit | ? help | n new | e edit | x done | d delete | enter track | space start/stop"
	}
}
