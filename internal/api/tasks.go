package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nhle/task-tracker/internal/model"
)

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// ListTasks returns every task of the authenticated user.
func (c *Client) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	var tasks []model.Task
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/tasks",
		token:  token,
		result: &tasks,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server's record.
func (c *Client) CreateTask(ctx context.Context, token string, in NewTask) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/tasks",
		token:  token,
		body:   in,
		result: &task,
	})
	return task, err
}

// UpdateTask sends a partial patch and returns the full updated record.
func (c *Client) UpdateTask(ctx context.Context, token, id string, patch model.TaskPatch) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   taskPath(id),
		token:  token,
		body:   patch,
		result: &task,
	})
	return task, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   taskPath(id),
		token:  token,
	})
}

// AddTaskTime asks the server to add seconds to the task's accumulated
// time and returns the updated record.
func (c *Client) AddTaskTime(ctx context.Context, token, id string, seconds int) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   taskPath(id) + "/timer",
		token:  token,
		body:   TimerRequest{Seconds: seconds},
		result: &task,
	})
	return task, err
}
