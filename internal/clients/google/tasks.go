package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hyuoka/workpal/internal/interfaces"
)

// ListTaskLists returns the account's task lists.
func (c *Client) ListTaskLists(ctx context.Context) ([]interfaces.TaskList, error) {
	var resp struct {
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, c.tasksBase+"/users/@me/lists", nil, &resp); err != nil {
		return nil, err
	}

	lists := make([]interfaces.TaskList, 0, len(resp.Items))
	for _, item := range resp.Items {
		lists = append(lists, interfaces.TaskList{ID: item.ID, Title: item.Title})
	}
	return lists, nil
}

// taskResource represents a task payload. Due carries date precision
// only, despite its RFC 3339 shape.
type taskResource struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Due    string `json:"due,omitempty"`
	Status string `json:"status,omitempty"`
}

func (r *taskResource) toTask() interfaces.Task {
	task := interfaces.Task{
		ID:     r.ID,
		Title:  r.Title,
		Notes:  r.Notes,
		Status: r.Status,
	}
	if r.Due != "" {
		if due, err := time.Parse(time.RFC3339, r.Due); err == nil {
			// keep date precision only, anchored to local midnight
			y, m, d := due.Date()
			task.Due = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
		}
	}
	return task
}

func taskBody(task *interfaces.Task) taskResource {
	body := taskResource{
		Title:  task.Title,
		Notes:  task.Notes,
		Status: task.Status,
	}
	if !task.Due.IsZero() {
		body.Due = task.Due.UTC().Format("2006-01-02T00:00:00.000Z")
	}
	return body
}

// ListTasks returns the list's tasks. Completed and deleted tasks are
// excluded unless showCompleted is set.
func (c *Client) ListTasks(ctx context.Context, tasklistID string, showCompleted bool) ([]interfaces.Task, error) {
	params := url.Values{}
	params.Set("showCompleted", fmt.Sprintf("%t", showCompleted))
	params.Set("maxResults", "100")

	endpoint := fmt.Sprintf("%s/lists/%s/tasks?%s", c.tasksBase, url.PathEscape(tasklistID), params.Encode())

	var resp struct {
		Items []taskResource `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	tasks := make([]interfaces.Task, 0, len(resp.Items))
	for i := range resp.Items {
		tasks = append(tasks, resp.Items[i].toTask())
	}
	return tasks, nil
}

// InsertTask creates a task on the list.
func (c *Client) InsertTask(ctx context.Context, tasklistID string, task *interfaces.Task) (*interfaces.Task, error) {
	endpoint := fmt.Sprintf("%s/lists/%s/tasks", c.tasksBase, url.PathEscape(tasklistID))

	body := taskBody(task)
	var resp taskResource
	if err := c.do(ctx, http.MethodPost, endpoint, &body, &resp); err != nil {
		return nil, err
	}
	created := resp.toTask()
	return &created, nil
}

// PatchTask applies a partial update; zero-value fields are left alone.
func (c *Client) PatchTask(ctx context.Context, tasklistID, taskID string, patch *interfaces.Task) (*interfaces.Task, error) {
	endpoint := fmt.Sprintf("%s/lists/%s/tasks/%s", c.tasksBase, url.PathEscape(tasklistID), url.PathEscape(taskID))

	body := taskBody(patch)
	var resp taskResource
	if err := c.do(ctx, http.MethodPatch, endpoint, &body, &resp); err != nil {
		return nil, err
	}
	updated := resp.toTask()
	return &updated, nil
}

// DeleteTask removes a task from the list.
func (c *Client) DeleteTask(ctx context.Context, tasklistID, taskID string) error {
	endpoint := fmt.Sprintf("%s/lists/%s/tasks/%s", c.tasksBase, url.PathEscape(tasklistID), url.PathEscape(taskID))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}
