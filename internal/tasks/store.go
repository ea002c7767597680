package tasks

import (
	"context"
	"log"
	gosync "sync"

	"github.com/nhle/task-tracker/internal/api"
	"github.com/nhle/task-tracker/internal/credential"
	"github.com/nhle/task-tracker/internal/model"
)

// TaskAPI is the part of the remote API the task store needs.
type TaskAPI interface {
	ListTasks(ctx context.Context, token string) ([]model.Task, error)
	CreateTask(ctx context.Context, token string, in api.NewTask) (model.Task, error)
	UpdateTask(ctx context.Context, token, id string, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, token, id string) error
	AddTaskTime(ctx context.Context, token, id string, seconds int) (model.Task, error)
}

// Store is the local cache of the signed-in user's tasks. Every mutation
// goes to the server first and the cache takes the server's answer as-is.
// Concurrent calls are not de-duplicated: the last response wins.
type Store struct {
	api   TaskAPI
	creds credential.TokenReader

	mu      gosync.RWMutex
	tasks   []model.Task
	loading bool
	err     string
}

// New creates a task store reading the bearer token from creds.
func New(a TaskAPI, creds credential.TokenReader) *Store {
	return &Store{api: a, creds: creds}
}

// Tasks returns a copy of the cached collection, newest first.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the cached task with id.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the last failed operation, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Reset drops the cache, e.g. after logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.err = ""
	s.loading = false
	s.mu.Unlock()
}

// Fetch replaces the cache with the server's collection.
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()

	token, err := s.token()
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	tasks, err := s.api.ListTasks(ctx, token)
	if err != nil {
		return s.fail(opError(OpFetch, "", FetchFailedMessage, err))
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// Create posts a new task and prepends the server's record to the cache.
// Title validation is left to the caller and the server.
func (s *Store) Create(ctx context.Context, title, description string) (model.Task, error) {
	s.begin()

	token, err := s.token()
	if err != nil {
		return model.Task{}, s.fail(err)
	}

	task, err := s.api.CreateTask(ctx, token, api.NewTask{Title: title, Description: description})
	if err != nil {
		return model.Task{}, s.fail(opError(OpCreate, "", CreateFailedMessage, err))
	}

	s.mu.Lock()
	s.tasks = append([]model.Task{task}, s.tasks...)
	s.mu.Unlock()
	return task, nil
}

// Update sends a partial patch and replaces the cached entry with the
// server's full representation.
func (s *Store) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	s.begin()

	token, err := s.token()
	if err != nil {
		return model.Task{}, s.fail(err)
	}

	task, err := s.api.UpdateTask(ctx, token, id, patch)
	if err != nil {
		return model.Task{}, s.fail(opError(OpUpdate, id, UpdateFailedMessage, err))
	}

	s.replace(id, task)
	return task, nil
}

// Delete removes a task on the server, then from the cache.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.begin()

	token, err := s.token()
	if err != nil {
		return s.fail(err)
	}

	if err := s.api.DeleteTask(ctx, token, id); err != nil {
		return s.fail(opError(OpDelete, id, DeleteFailedMessage, err))
	}

	s.mu.Lock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()
	return nil
}

// AddTime asks the server to add seconds to the task's total and replaces
// the cached entry with the result. A zero delta is a local no-op that
// returns the cached task.
func (s *Store) AddTime(ctx context.Context, id string, seconds int) (model.Task, error) {
	s.begin()

	token, err := s.token()
	if err != nil {
		return model.Task{}, s.fail(err)
	}

	if seconds < 0 {
		return model.Task{}, s.fail(opError(OpAddTime, id, InvalidDeltaMessage, ErrNegativeDelta))
	}
	if seconds == 0 {
		task, _ := s.Task(id)
		return task, nil
	}

	task, err := s.api.AddTaskTime(ctx, token, id, seconds)
	if err != nil {
		return model.Task{}, s.fail(opError(OpAddTime, id, AddTimeFailedMessage, err))
	}

	s.replace(id, task)
	return task, nil
}

// begin clears the previous error.
func (s *Store) begin() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// token is the local guard shared by every operation.
func (s *Store) token() (string, error) {
	tok := credential.Token(s.creds)
	if tok == "" {
		return "", &AuthRequiredError{}
	}
	return tok, nil
}

// fail records err's message and returns err.
func (s *Store) fail(err error) error {
	if opErr, ok := err.(*OpError); ok {
		log.Printf("tasks: %s", opErr.Detail())
	}
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
	return err
}

// replace swaps the cached entry with id for task.
func (s *Store) replace(id string, task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = task
			return
		}
	}
}

func opError(op Op, id, fallback string, err error) *OpError {
	return &OpError{
		Op:      op,
		TaskID:  id,
		Message: api.MessageFieldOr(err, fallback),
		Err:     err,
	}
}
