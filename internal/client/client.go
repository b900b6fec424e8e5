package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lessonforge/internal/api"
)

// ErrAPIUnavailable marks a daemon that is not reachable at the configured
// bind address.
var ErrAPIUnavailable = errors.New("daemon API unavailable")

// StatusError carries the HTTP status and message of a rejected request, so
// callers can distinguish a busy pipeline from a bad transition.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the lessonforge daemon.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// New builds a client for the given bind address. An empty bind returns a
// nil client; every method on a nil client reports ErrAPIUnavailable.
func New(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var payload api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &payload)
	return payload, err
}

// ListProjects returns projects, optionally filtered by status names.
func (c *Client) ListProjects(ctx context.Context, statuses ...string) ([]api.Project, error) {
	values := url.Values{}
	for _, status := range statuses {
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			values.Add("status", trimmed)
		}
	}

	var payload api.ProjectListResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Projects, nil
}

// GetProject fetches a single project.
func (c *Client) GetProject(ctx context.Context, id string) (api.Project, error) {
	var payload api.ProjectResponse
	err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, nil, &payload)
	return payload.Project, err
}

// CreateProject registers a new draft project.
func (c *Client) CreateProject(ctx context.Context, req api.CreateProjectRequest) (api.Project, error) {
	var payload api.ProjectResponse
	err := c.do(ctx, http.MethodPost, "/api/projects", nil, req, &payload)
	return payload.Project, err
}

// RemoveProject deletes a project.
func (c *Client) RemoveProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil, nil)
}

// RunStage asks the daemon to run one pipeline stage. Action is one of
// generate-content, generate-audio, generate-avatar, render, or retry.
func (c *Client) RunStage(ctx context.Context, id, action string) (api.AcceptedResponse, error) {
	var payload api.AcceptedResponse
	path := "/api/projects/" + url.PathEscape(id) + "/" + action
	err := c.do(ctx, http.MethodPost, path, nil, nil, &payload)
	return payload, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil {
		return ErrAPIUnavailable
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		message := ""
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil {
			message = apiErr.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IsAPIUnavailable reports whether err means the daemon is not running.
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}
