// Package api talks to the public demo REST service used to seed the task list.
//
// The remote service is best effort: it never becomes the system of record, and the write
// calls only demonstrate the endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todo-app/internal/logging"
	"todo-app/internal/model"
)

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	DefaultLimit   = 10

	contentTypeJSON = "application/json; charset=UTF-8"
)

// RemoteTodo is the demo service's representation of a task.
type RemoteTodo struct {
	UserID    int    `json:"userId,omitempty"`
	ID        int    `json:"id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodoPatch holds the fields sent by UpdateTask; nil fields are omitted.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds every request. Zero keeps the client's current timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			hc := *cl.http
			hc.Timeout = d
			cl.http = &hc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(cl *Client) { cl.logger = logging.OrDiscard(l) }
}

func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		if now != nil {
			cl.now = now
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// FetchTasks fetches up to limit remote todos and converts them to local tasks.
// Timestamps are set to the fetch time; CompletedAt is set only for completed todos.
func (c *Client) FetchTasks(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := url.Values{}
	q.Set("_limit", strconv.Itoa(limit))

	var remote []RemoteTodo
	if err := c.do(ctx, "fetch tasks", http.MethodGet, "/todos?"+q.Encode(), nil, &remote); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	out := make([]model.Task, 0, len(remote))
	for _, r := range remote {
		t := model.Task{
			ID:          strconv.Itoa(r.ID),
			Title:       r.Title,
			Description: "",
			Completed:   r.Completed,
			CreatedAt:   now,
		}
		if r.Completed {
			at := now
			t.CompletedAt = &at
		}
		out = append(out, t)
	}
	c.logger.Debug("fetched seed tasks", "count", len(out))
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, todo RemoteTodo) (RemoteTodo, error) {
	var out RemoteTodo
	err := c.do(ctx, "create task", http.MethodPost, "/todos", todo, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TodoPatch) (RemoteTodo, error) {
	var out RemoteTodo
	err := c.do(ctx, "update task", http.MethodPatch, "/todos/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(&FetchError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return c.fail(&FetchError{Op: op, Status: resp.StatusCode})
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(&FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

func (c *Client) fail(err *FetchError) error {
	c.logger.Error("request failed", "op", err.Op, "status", err.Status, "err", err.Err)
	return err
}
