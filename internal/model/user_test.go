package model

import "testing"

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{"nil user", nil, "User"},
		{"name wins", &User{Name: "Ada", Email: "ada@example.com"}, "Ada"},
		{"email local part", &User{Email: "grace@example.com"}, "grace"},
		{"blank name", &User{Name: "  ", Email: "linus@example.com"}, "linus"},
		{"nothing", &User{}, "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
