package api

import "github.com/nhle/task-tracker/internal/model"

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginResponse is the response from POST /auth/login. User is optional.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user,omitempty"`
}

// NewTask is the body of POST /tasks.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TimerRequest is the body of POST /tasks/:id/timer.
type TimerRequest struct {
	Seconds int `json:"seconds"`
}
