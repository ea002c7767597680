package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhle/task-tracker/internal/apitest"
	"github.com/nhle/task-tracker/internal/model"
)

func TestLoginAndMe(t *testing.T) {
	srv := apitest.New(t)
	want := srv.AddUser("a@b.com", "secret", "Ada")
	c := NewClient(srv.URL)
	ctx := context.Background()

	resp, err := c.Login(ctx, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User == nil || resp.User.ID != want.ID {
		t.Fatalf("login user = %+v, want %+v", resp.User, want)
	}

	if _, err := c.Me(ctx); !IsUnauthorized(err) {
		t.Fatalf("Me without token: err = %v, want 401", err)
	}

	c.SetToken(resp.AccessToken)
	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Email != "a@b.com" {
		t.Errorf("Me email = %q", me.Email)
	}

	c.ClearToken()
	if c.Token() != "" {
		t.Error("ClearToken should drop the default credential")
	}
}

func TestLoginRejectedCarriesServerMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("a@b.com", "secret", "")
	c := NewClient(srv.URL)

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestRegisterErrorFieldAndMessageList(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("taken@b.com", "pw", "")
	c := NewClient(srv.URL)
	ctx := context.Background()

	err := c.Register(ctx, Registration{Email: "taken@b.com", Password: "pw"})
	if got := MessageOr(err, "Registration failed"); got != "User already exists" {
		t.Errorf("conflict message = %q", got)
	}

	err = c.Register(ctx, Registration{Email: "not-an-email", Password: "pw"})
	if got := MessageOr(err, "Registration failed"); got != "email must be an email" {
		t.Errorf("validation message = %q", got)
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("a@b.com", "secret", "")
	token := srv.IssueToken("a@b.com")
	srv.TimeSpentAsString(true)
	c := NewClient(srv.URL)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, token, NewTask{Title: "Write docs"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Fatalf("server should assign id and timestamps: %+v", created)
	}

	updated, err := c.AddTaskTime(ctx, token, created.ID, 90)
	if err != nil {
		t.Fatalf("AddTaskTime: %v", err)
	}
	if updated.TimeSpent != 90 {
		t.Errorf("TimeSpent = %d, want 90", updated.TimeSpent)
	}

	done := true
	updated, err = c.UpdateTask(ctx, token, created.ID, model.TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Completed || updated.TimeSpent != 90 {
		t.Errorf("updated = %+v", updated)
	}

	tasks, err := c.ListTasks(ctx, token)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("tasks = %+v", tasks)
	}

	if err := c.DeleteTask(ctx, token, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := c.DeleteTask(ctx, token, created.ID); !IsNotFound(err) {
		t.Errorf("second delete: err = %v, want 404", err)
	}

	tasks, err = c.ListTasks(ctx, token)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("tasks after delete = %#v, want empty slice", tasks)
	}
}

func TestExplicitTokenOverridesDefault(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("a@b.com", "secret", "")
	token := srv.IssueToken("a@b.com")

	c := NewClient(srv.URL)
	c.SetToken("stale")

	if _, err := c.ListTasks(context.Background(), token); err != nil {
		t.Fatalf("ListTasks with explicit token: %v", err)
	}
	if _, err := c.MeWithToken(context.Background(), token); err != nil {
		t.Fatalf("MeWithToken: %v", err)
	}
}

func TestTimeoutIsApplied(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c := NewClient(slow.URL, WithTimeout(50*time.Millisecond))
	_, err := c.ListTasks(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if _, ok := AsAPIError(err); ok {
		t.Errorf("timeout should be a transport error, got %v", err)
	}
	if got := MessageOr(err, "Failed to fetch tasks"); got != "Failed to fetch tasks" {
		t.Errorf("MessageOr = %q", got)
	}
}

func TestMessageOrFallsBackOnEmptyBody(t *testing.T) {
	err := newAPIError(http.MethodGet, "/tasks", 500, []byte(`not json`))
	if got := MessageOr(err, "fallback"); got != "fallback" {
		t.Errorf("MessageOr = %q", got)
	}
	if !errors.As(error(err), new(*APIError)) {
		t.Error("errors.As should match *APIError")
	}
}
