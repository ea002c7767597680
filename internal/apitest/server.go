// Package apitest provides an in-process fake of the task API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nhle/task-tracker/internal/model"
)

// Route names used for hit counting and failure injection.
const (
	RouteLogin      = "POST /auth/login"
	RouteRegister   = "POST /auth/register"
	RouteMe         = "GET /auth/me"
	RouteListTasks  = "GET /tasks"
	RouteCreateTask = "POST /tasks"
	RouteUpdateTask = "PUT /tasks/{id}"
	RouteDeleteTask = "DELETE /tasks/{id}"
	RouteTaskTimer  = "POST /tasks/{id}/timer"
)

var signingKey = []byte("apitest-signing-key")

// Failure is an injected error response.
type Failure struct {
	Status int
	// Body is written verbatim as JSON; nil writes an empty object.
	Body map[string]any
}

type account struct {
	password string
	user     model.User
}

// Server is a fake task API backed by in-memory maps.
type Server struct {
	*httptest.Server

	mu       gosync.Mutex
	accounts map[string]*account     // by email
	tokens   map[string]string       // token -> user id
	tasks    map[string][]model.Task // user id -> tasks, newest first
	hits     map[string]int
	failures map[string]Failure
	holds    map[string]chan struct{}
	now      func() time.Time

	omitUserOnLogin   bool
	timeSpentAsString bool
}

// New starts a fake API server that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		tasks:    make(map[string][]model.Task),
		hits:     make(map[string]int),
		failures: make(map[string]Failure),
		holds:    make(map[string]chan struct{}),
		now:      time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handle(RouteLogin, false, s.login))
		r.Post("/register", s.handle(RouteRegister, false, s.register))
		r.Get("/me", s.handle(RouteMe, true, s.me))
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.handle(RouteListTasks, true, s.listTasks))
		r.Post("/", s.handle(RouteCreateTask, true, s.createTask))
		r.Put("/{id}", s.handle(RouteUpdateTask, true, s.updateTask))
		r.Delete("/{id}", s.handle(RouteDeleteTask, true, s.deleteTask))
		r.Post("/{id}/timer", s.handle(RouteTaskTimer, true, s.addTime))
	})

	return r
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// handle counts the hit, applies injected failures and, for protected
// routes, resolves the bearer token to a user id.
func (s *Server) handle(route string, protected bool, h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[route]++
		failure, failing := s.failures[route]
		if failing {
			delete(s.failures, route)
		}
		hold := s.holds[route]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			body := failure.Body
			if body == nil {
				body = map[string]any{}
			}
			writeJSON(w, failure.Status, body)
			return
		}

		var userID string
		if protected {
			var ok bool
			userID, ok = s.authenticate(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"statusCode": http.StatusUnauthorized,
					"message":    "Unauthorized",
				})
				return
			}
		}

		h(w, r, userID)
	}
}

func (s *Server) authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	return userID, ok
}

// OmitUserOnLogin drops the user object from login responses.
func (s *Server) OmitUserOnLogin(omit bool) {
	s.mu.Lock()
	s.omitUserOnLogin = omit
	s.mu.Unlock()
}

// TimeSpentAsString encodes timeSpent as a JSON string in task payloads.
func (s *Server) TimeSpentAsString(asString bool) {
	s.mu.Lock()
	s.timeSpentAsString = asString
	s.mu.Unlock()
}

// AddUser registers an account directly and returns its identity.
func (s *Server) AddUser(email, password, name string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, name)
}

func (s *Server) addUserLocked(email, password, name string) model.User {
	u := model.User{ID: uuid.NewString(), Email: email, Name: name}
	s.accounts[email] = &account{password: password, user: u}
	return u
}

// IssueToken returns a valid bearer token for the account with email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		panic(fmt.Sprintf("apitest: unknown account %q", email))
	}
	return s.issueLocked(acc.user.ID)
}

func (s *Server) issueLocked(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(time.Hour)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("apitest: signing token: %v", err))
	}
	s.tokens[signed] = userID
	return signed
}

// RevokeTokens invalidates every issued token, as if they expired.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// SeedTask stores a task for the user behind email and returns it.
func (s *Server) SeedTask(email string, task model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		panic(fmt.Sprintf("apitest: unknown account %q", email))
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	stamp := s.now().UTC().Format(time.RFC3339Nano)
	if task.CreatedAt == "" {
		task.CreatedAt = stamp
	}
	if task.UpdatedAt == "" {
		task.UpdatedAt = stamp
	}
	uid := acc.user.ID
	s.tasks[uid] = append([]model.Task{task}, s.tasks[uid]...)
	return task
}

// Task returns the server-side copy of a task.
func (s *Server) Task(email, id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return model.Task{}, false
	}
	for _, t := range s.tasks[acc.user.ID] {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Fail makes the next request to route respond with status and a body
// carrying message (omitted when empty).
func (s *Server) Fail(route string, status int, message string) {
	body := map[string]any{"statusCode": status}
	if message != "" {
		body["message"] = message
	}
	s.FailWith(route, Failure{Status: status, Body: body})
}

// FailWith installs an arbitrary one-shot failure for route.
func (s *Server) FailWith(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = f
}

// Hold makes requests to route wait until the returned release func is
// called. Release is safe to call more than once.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once gosync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests received on all routes.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
