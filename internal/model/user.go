package model

import "strings"

// User is the identity of the signed-in principal as returned by the
// identity endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DisplayName returns the name shown in greetings: the user's name, else
// the local part of their email, else "User".
func (u *User) DisplayName() string {
	if u == nil {
		return "User"
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}
