package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nhle/task-tracker/internal/model"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ string) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[body.Email]
	if !ok || acc.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
		return
	}

	resp := map[string]any{"access_token": s.issueLocked(acc.user.ID)}
	if !s.omitUserOnLogin {
		resp["user"] = acc.user
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ string) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}
	if !strings.Contains(body.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": []string{"email must be an email"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[body.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "User already exists"})
		return
	}
	u := s.addUserLocked(body.Email, body.Password, body.Name)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == userID {
			writeJSON(w, http.StatusOK, acc.user)
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, 0, len(s.tasks[userID]))
	for _, t := range s.tasks[userID] {
		out = append(out, s.encodeTask(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UTC().Format(time.RFC3339Nano)
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       body.Title,
		Description: body.Description,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	s.tasks[userID] = append([]model.Task{t}, s.tasks[userID]...)
	writeJSON(w, http.StatusCreated, s.encodeTask(t))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, userID string) {
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}

	s.mutateTask(w, userID, chi.URLParam(r, "id"), func(t *model.Task) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		if patch.TimeSpent != nil {
			t.TimeSpent = model.Seconds(*patch.TimeSpent)
		}
	})
}

func (s *Server) addTime(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Seconds < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "seconds must be a non-negative integer"})
		return
	}

	s.mutateTask(w, userID, chi.URLParam(r, "id"), func(t *model.Task) {
		t.TimeSpent += model.Seconds(body.Seconds)
	})
}

func (s *Server) mutateTask(w http.ResponseWriter, userID, id string, apply func(*model.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks[userID]
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		apply(&tasks[i])
		tasks[i].UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
		writeJSON(w, http.StatusOK, s.encodeTask(tasks[i]))
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Task not found"})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, userID string) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks[userID]
	for i := range tasks {
		if tasks[i].ID == id {
			s.tasks[userID] = append(tasks[:i:i], tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Task not found"})
}

// encodeTask renders a task the way the backend does, optionally with
// timeSpent as a string.
func (s *Server) encodeTask(t model.Task) any {
	out := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"timeSpent":   t.TimeSpent.Int(),
		"createdAt":   t.CreatedAt,
		"updatedAt":   t.UpdatedAt,
	}
	if s.timeSpentAsString {
		out["timeSpent"] = strconv.Itoa(t.TimeSpent.Int())
	}
	return out
}
