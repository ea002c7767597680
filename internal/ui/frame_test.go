package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/session"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestTitle(t *testing.T) {
	if got := Title(session.Snapshot{}); got != "Task Tracker" {
		t.Errorf("Title = %q", got)
	}
	snap := session.Snapshot{User: &model.User{Email: "bob@example.com"}, Token: "x"}
	if got := Title(snap); got != "Task Tracker · Welcome, bob" {
		t.Errorf("Title = %q", got)
	}
}

func TestAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{Email: "alice@example.com", Name: "Alice"}

	tests := []struct {
		name string
		snap session.Snapshot
		want string
	}{
		{"signed out", session.Snapshot{}, "signed out"},
		{"opaque token", session.Snapshot{User: user, Token: "opaque"}, "alice@example.com"},
		{"no user yet", session.Snapshot{Token: "opaque"}, "signed in"},
		{"expired", session.Snapshot{User: user, Token: signedToken(t, now.Add(-time.Minute))}, "alice@example.com · token expired"},
		{"valid", session.Snapshot{User: user, Token: signedToken(t, now.Add(time.Hour))}, "alice@example.com · until "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Account(tt.snap, now)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Account = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestStatusBarPrefersNotice(t *testing.T) {
	f := NewFrame(80, 24)

	if bar := f.StatusBar(nil, "q quit"); !strings.Contains(bar, "q quit") {
		t.Errorf("hints missing: %q", bar)
	}
	bar := f.StatusBar(&Notice{Text: "Task deleted"}, "q quit")
	if !strings.Contains(bar, "Task deleted") || strings.Contains(bar, "q quit") {
		t.Errorf("notice should replace hints: %q", bar)
	}
	if n := (Notice{Text: "boom", IsErr: true}).Render(); !strings.Contains(n, "✗ boom") {
		t.Errorf("error notice = %q", n)
	}
}

func TestBodyHeight(t *testing.T) {
	if h := NewFrame(80, 24).BodyHeight(); h != 22 {
		t.Errorf("BodyHeight = %d, want 22", h)
	}
	if h := NewFrame(80, 1).BodyHeight(); h != 0 {
		t.Errorf("BodyHeight = %d, want 0", h)
	}
}
