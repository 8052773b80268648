package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"go.uber.org/zap"
)

// ListTasks returns every task the caller may see. Records that cannot be
// decoded are skipped.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, "list tasks", http.MethodGet, "/tasks", nil, &raw, true); err != nil {
		return nil, err
	}
	return decodeTasks(raw), nil
}

func decodeTasks(raw []json.RawMessage) []models.Task {
	tasks := make([]models.Task, 0, len(raw))
	for i, r := range raw {
		var t models.Task
		if err := json.Unmarshal(r, &t); err != nil {
			logger.Warn("api: skipping malformed task", zap.Int("index", i), zap.Error(err))
			continue
		}
		if t.ID == "" {
			logger.Warn("api: skipping task without id", zap.Int("index", i))
			continue
		}
		tasks = append(tasks, normalizeTask(t))
	}
	return tasks
}

func normalizeTask(t models.Task) models.Task {
	t.Status = t.Status.Normalize()
	if t.Notes == nil {
		t.Notes = []models.Note{}
	}
	return t
}

// CreateTask validates fields locally and, only if they pass, asks the
// backend to create the task
func (c *Client) CreateTask(ctx context.Context, fields models.TaskFields) (models.Task, error) {
	if err := fields.Validate(false); err != nil {
		return models.Task{}, err
	}
	fields.Title = strings.TrimSpace(fields.Title)

	var resp struct {
		Task models.Task `json:"task"`
	}
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", fields, &resp, true); err != nil {
		return models.Task{}, err
	}
	if resp.Task.ID == "" {
		return models.Task{}, &ServerError{Op: "create task", Status: http.StatusOK, Message: "malformed response: task has no id"}
	}
	return normalizeTask(resp.Task), nil
}

// UpdateTask sends a partial update and returns the task as stored
func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var t models.Task
	if err := c.do(ctx, "update task", http.MethodPut, "/tasks/"+url.PathEscape(id), patch, &t, true); err != nil {
		return models.Task{}, err
	}
	return normalizeTask(t), nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, true)
}

// AppendNote adds a note and returns the full updated note list
func (c *Client) AppendNote(ctx context.Context, id, message string) ([]models.Note, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &models.ValidationError{Field: "note", Reason: "cannot be empty"}
	}

	var resp struct {
		Notes []models.Note `json:"notes"`
	}
	in := map[string]string{"message": message}
	if err := c.do(ctx, "append note", http.MethodPost, "/tasks/"+url.PathEscape(id)+"/notes", in, &resp, true); err != nil {
		return nil, err
	}
	if resp.Notes == nil {
		resp.Notes = []models.Note{}
	}
	return resp.Notes, nil
}
