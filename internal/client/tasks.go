package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const (
	endpointRunningTasks = "runningTasks"
	endpointTask         = "task"
	endpointCancelTask   = "cancelTask"
)

// RunningTasks lists backend tasks still in progress.
func (c *Client) RunningTasks(ctx context.Context) ([]types.Task, error) {
	return call[[]types.Task](ctx, c, endpointRunningTasks, http.MethodGet, "/api/tasks/running", nil)
}

// Task returns one task.
func (c *Client) Task(ctx context.Context, id int64) (*types.Task, error) {
	return call[*types.Task](ctx, c, endpointTask, http.MethodGet, "/api/tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	})
}

// CancelTask asks the backend to stop a task.
func (c *Client) CancelTask(ctx context.Context, id int64) error {
	_, err := call[any](ctx, c, endpointCancelTask, http.MethodPost, "/api/tasks/{id}/cancel", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	})
	return err
}
