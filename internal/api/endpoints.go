package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/response"
	"golang.org/x/sync/errgroup"
)

// Fixed paging for the activity log.
const (
	LogsLimit  = 50
	LogsOffset = 0
)

const logsFallbackMessage = "Unable to load logs"

// Health is the result of a connection test.
type Health struct {
	HTTPStatus int
	Status     string
}

// Health calls GET /health. It succeeds when the reply is 2xx and decodes as
// JSON; Status is the reported status or "ok" when the field is missing.
func (c *Client) Health(ctx context.Context, conn config.Connection) (Health, error) {
	res, err := c.do(ctx, conn, http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	h := Health{HTTPStatus: res.Status}

	var body struct {
		Status *string `json:"status"`
	}
	decodeErr := decodeInto(res, &body)
	if !res.OK() {
		return h, fmt.Errorf("Error %d", res.Status)
	}
	if decodeErr != nil {
		return h, decodeErr
	}
	h.Status = "ok"
	if body.Status != nil {
		h.Status = *body.Status
	}
	return h, nil
}

// ExecuteCommand posts body to /commands. A non-nil error is a transport
// failure; any HTTP status, including 4xx and 5xx, is a Result.
func (c *Client) ExecuteCommand(ctx context.Context, conn config.Connection, body command.Body) (*Result, error) {
	return c.do(ctx, conn, http.MethodPost, "/commands", body)
}

// CommandLogs fetches the most recent execution records.
func (c *Client) CommandLogs(ctx context.Context, conn config.Connection) ([]activity.Record, error) {
	path := fmt.Sprintf("/command-logs?limit=%d&offset=%d", LogsLimit, LogsOffset)
	res, err := c.do(ctx, conn, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, &LogsError{Status: res.Status, Message: logsErrorMessage(res)}
	}

	var records []activity.Record
	if err := decodeInto(res, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LogsError is a non-2xx reply from /command-logs.
type LogsError struct {
	Status  int
	Message string
}

func (e *LogsError) Error() string { return e.Message }

func logsErrorMessage(res *Result) string {
	if info := response.Interpret(res.Status, res.Body); info != nil && info.Message != "" && info.Code != response.CodeUnexpected {
		return info.Message
	}
	return logsFallbackMessage
}

// Asset is a reference entry from /assets.
type Asset struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Task is a reference entry from /tasks.
type Task struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Reference holds the picker lists. The zero value is a valid empty state.
type Reference struct {
	Assets []Asset `json:"assets" yaml:"assets"`
	Tasks  []Task  `json:"tasks" yaml:"tasks"`
}

// Assets fetches GET /assets.
func (c *Client) Assets(ctx context.Context, conn config.Connection) ([]Asset, error) {
	var out []Asset
	if err := c.getList(ctx, conn, "/assets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tasks fetches GET /tasks.
func (c *Client) Tasks(ctx context.Context, conn config.Connection) ([]Task, error) {
	var out []Task
	if err := c.getList(ctx, conn, "/tasks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getList(ctx context.Context, conn config.Connection, path string, out any) error {
	res, err := c.do(ctx, conn, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("GET %s: status %d", path, res.Status)
	}
	return decodeInto(res, out)
}

// FetchReference loads assets and tasks concurrently. Either list degrades to
// empty on failure and nothing is reported to the caller; failures are only
// logged.
func (c *Client) FetchReference(ctx context.Context, conn config.Connection) Reference {
	var ref Reference
	var g errgroup.Group
	g.Go(func() error {
		assets, err := c.Assets(ctx, conn)
		if err != nil {
			return fmt.Errorf("assets: %w", err)
		}
		ref.Assets = assets
		return nil
	})
	g.Go(func() error {
		tasks, err := c.Tasks(ctx, conn)
		if err != nil {
			return fmt.Errorf("tasks: %w", err)
		}
		ref.Tasks = tasks
		return nil
	})
	if err := g.Wait(); err != nil {
		c.log.Debug().Err(err).Msg("reference fetch degraded")
	}
	return ref
}
