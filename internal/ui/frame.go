package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-tracker/internal/session"
	"github.com/nhle/task-tracker/internal/theme"
)

const appName = "Task Tracker"

// Notice is a transient message shown in place of the key hints.
type Notice struct {
	Text  string
	IsErr bool
}

// Render draws the notice with a success or error mark.
func (n Notice) Render() string {
	if n.IsErr {
		return theme.ErrorStyle.Render("✗ " + n.Text)
	}
	return theme.SuccessStyle.Render("✓ " + n.Text)
}

// Frame is the screen chrome around every view: a one-line header with
// the signed-in account and a one-line status bar.
type Frame struct {
	Width  int
	Height int
}

// NewFrame sizes the frame to the terminal.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height}
}

// BodyHeight is the number of rows left between header and status bar.
func (f Frame) BodyHeight() int {
	if f.Height < 2 {
		return 0
	}
	return f.Height - 2
}

// Title greets the user once the identity is known.
func Title(snap session.Snapshot) string {
	if snap.User == nil {
		return appName
	}
	return appName + " · Welcome, " + snap.User.DisplayName()
}

// Account describes who is signed in and until when the token is valid.
func Account(snap session.Snapshot, now time.Time) string {
	if !snap.Authenticated() {
		return "signed out"
	}
	status := "signed in"
	if snap.User != nil {
		status = snap.User.Email
	}
	exp, ok := session.TokenExpiry(snap.Token)
	switch {
	case !ok:
		return status
	case exp.Before(now):
		return status + " · token expired"
	default:
		return status + " · until " + exp.Local().Format("Jan 02 15:04")
	}
}

// Header renders the title on the left and the account on the right.
func (f Frame) Header(snap session.Snapshot, now time.Time) string {
	return f.bar(theme.HeaderStyle, theme.HeaderStyle.Render(Title(snap)),
		theme.HeaderStyle.Render(Account(snap, now)))
}

// StatusBar shows the notice when there is one, else the hints.
func (f Frame) StatusBar(notice *Notice, hints string) string {
	text := hints
	if notice != nil {
		text = notice.Render()
	}
	return f.bar(theme.StatusBarStyle, theme.StatusBarStyle.Render(text), "")
}

// bar pads left and right apart with the style's background.
func (f Frame) bar(style lipgloss.Style, left, right string) string {
	gap := f.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().Width(gap).Background(style.GetBackground()).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// Compose stacks header, body and status bar.
func (f Frame) Compose(header, body, status string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

// Centered places s in the middle of the whole screen.
func (f Frame) Centered(s string) string {
	return lipgloss.Place(f.Width, f.Height, lipgloss.Center, lipgloss.Center, s)
}
