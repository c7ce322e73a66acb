// Package remote is the device's HTTP client for the lifesync server.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

var (
	// ErrTransport covers everything that kept a request from getting an
	// answer: DNS, refused connections, timeouts.
	ErrTransport = errors.New("transport failure")
	ErrRejected  = errors.New("request rejected")
)

// RejectedError is a non-2xx answer from the server.
type RejectedError struct {
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Temporary reports whether the same request may succeed later.
func (e *RejectedError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

type Config struct {
	BaseURL     string
	ClientToken string
	Password    string
	Timeout     time.Duration
}

type Client struct {
	http *resty.Client
}

func New(cfg Config) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader(model.HeaderClientToken, cfg.ClientToken).
		SetHeader(model.HeaderServerPassword, cfg.Password)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	return &Client{http: c}
}

type apiError struct {
	Error string `json:"error"`
}

// Sync pushes the full local task list and returns the server's delta.
func (c *Client) Sync(ctx context.Context, tasks []model.Task, cursor *time.Time) (model.SyncResponse, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	var out model.SyncResponse
	err := c.do(ctx, http.MethodPost, "/api/sync", model.SyncRequest{Tasks: tasks, LastSync: cursor}, &out)
	return out, err
}

func (c *Client) PublishStatus(ctx context.Context, p model.StatusPublish) (model.StatusSource, error) {
	var out model.StatusSource
	err := c.do(ctx, http.MethodPost, "/api/status", p, &out)
	return out, err
}

func (c *Client) Status(ctx context.Context) (model.StatusView, error) {
	var out model.StatusView
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var apiErr apiError
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	if resp.IsError() {
		return &RejectedError{Code: resp.StatusCode(), Message: apiErr.Error}
	}
	return nil
}
