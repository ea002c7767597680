package auth

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-tracker/internal/theme"
)

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginSubmittedMsg is dispatched when the login form is submitted.
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// RegisterSubmittedMsg is dispatched when the registration form is submitted.
type RegisterSubmittedMsg struct {
	Email    string
	Password string
	Name     string
}

type formBindings struct {
	email    string
	password string
	name     string
}

var switchKey = key.NewBinding(
	key.WithKeys("ctrl+r"),
	key.WithHelp("ctrl+r", "switch login/register"),
)

// Model is the sign-in screen shown whenever there is no session.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	mode    Mode
	busy    bool
	errMsg  string
	spinner spinner.Model
	width   int
	height  int
}

// New creates the auth view in login mode.
func New(width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	m := Model{
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Mode returns the current form mode.
func (m Model) Mode() Mode { return m.mode }

// Busy reports whether a submission is in flight.
func (m Model) Busy() bool { return m.busy }

// Fail shows msg and reopens the form, keeping the email and name.
func (m *Model) Fail(msg string) tea.Cmd {
	m.busy = false
	m.errMsg = msg
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Reset clears every field and returns to login mode.
func (m *Model) Reset() tea.Cmd {
	m.busy = false
	m.errMsg = ""
	m.mode = ModeLogin
	*m.fb = formBindings{}
	m.form = m.buildForm()
	return m.form.Init()
}

// SetMode switches between login and registration.
func (m *Model) SetMode(mode Mode) tea.Cmd {
	m.mode = mode
	m.errMsg = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the auth view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		if _, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, switchKey) {
		next := ModeRegister
		if m.mode == ModeRegister {
			next = ModeLogin
		}
		return m, m.SetMode(next)
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.busy = true
		m.errMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.submit())
	case huh.StateAborted:
		return m, tea.Quit
	}

	return m, cmd
}

func (m Model) submit() tea.Cmd {
	email := strings.TrimSpace(m.fb.email)
	password := m.fb.password
	name := strings.TrimSpace(m.fb.name)

	if m.mode == ModeRegister {
		return func() tea.Msg {
			return RegisterSubmittedMsg{Email: email, Password: password, Name: name}
		}
	}
	return func() tea.Msg {
		return LoginSubmittedMsg{Email: email, Password: password}
	}
}

// View renders the auth screen.
func (m Model) View() string {
	title := "Sign in"
	hint := "ctrl+r create an account"
	if m.mode == ModeRegister {
		title = "Create an account"
		hint = "ctrl+r back to sign in"
	}

	parts := []string{theme.TitleStyle.Render(title)}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errMsg), "")
	}
	if m.busy {
		verb := "Signing in"
		if m.mode == ModeRegister {
			verb = "Creating account"
		}
		parts = append(parts, fmt.Sprintf("%s %s...", m.spinner.View(), verb))
	} else {
		parts = append(parts, m.form.View(), theme.HelpStyle.Render(hint))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&m.fb.email).
			Validate(validateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(validatePassword),
	}
	if m.mode == ModeRegister {
		fields = append(fields,
			huh.NewInput().
				Title("Name").
				Placeholder("Optional").
				Value(&m.fb.name),
		)
	}

	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(w).WithShowHelp(false)
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return fmt.Errorf("Enter a valid email")
	}
	return nil
}

func validatePassword(s string) error {
	if s == "" {
		return fmt.Errorf("Password is required")
	}
	return nil
}
