package auth

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", true},
		{"   ", true},
		{"alice", true},
		{"@example.com", true},
		{"alice@", true},
		{"alice@example.com", false},
		{" bob@x.io ", false},
	}
	for _, tt := range tests {
		err := validateEmail(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateEmail(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestSwitchModeWithCtrlR(t *testing.T) {
	m := New(80, 24)
	if m.Mode() != ModeLogin {
		t.Fatal("expected login mode")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.Mode() != ModeRegister {
		t.Fatalf("expected register mode, got %v", m.Mode())
	}
	if !strings.Contains(m.View(), "Create an account") {
		t.Error("register view should show its title")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.Mode() != ModeLogin {
		t.Fatalf("expected login mode, got %v", m.Mode())
	}
}

func TestFailShowsMessageAndClearsPassword(t *testing.T) {
	m := New(80, 24)
	m.fb.email = "a@b.c"
	m.fb.password = "secret"
	m.busy = true

	m.Fail("Invalid credentials")

	if m.Busy() {
		t.Error("Fail should clear busy")
	}
	if m.fb.password != "" || m.fb.email != "a@b.c" {
		t.Errorf("bindings = %+v", *m.fb)
	}
	if !strings.Contains(m.View(), "Invalid credentials") {
		t.Error("view should show the error")
	}
}
