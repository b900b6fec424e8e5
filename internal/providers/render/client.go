// Package render submits final video compositing jobs and reports their
// status for the polling loop.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"lessonforge/internal/polling"
	"lessonforge/internal/providers"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the runtime settings for the compositing service.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client calls the video compositor. Render jobs are long-running; Submit
// returns a job id the caller polls with Status.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a render client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SubmitRequest parameterizes one compositing job.
type SubmitRequest struct {
	ProjectID   string
	AvatarURL   string
	AudioURL    string
	AspectRatio string
	Resolution  string
	Slides      []SlidePayload
}

// SlidePayload is the visual content handed to the compositor.
type SlidePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status   string  `json:"status"`
	VideoURL string  `json:"video_url"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error"`
}

// Submit starts a compositing job and returns the provider job id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	const op = "render submit"

	if strings.TrimSpace(req.ProjectID) == "" {
		return "", providers.Fatal(op, "project id required", nil)
	}
	if strings.TrimSpace(req.AvatarURL) == "" {
		return "", providers.Fatal(op, "avatar url required", nil)
	}

	payload, err := json.Marshal(map[string]any{
		"project_id":   req.ProjectID,
		"avatar_url":   req.AvatarURL,
		"audio_url":    req.AudioURL,
		"aspect_ratio": req.AspectRatio,
		"resolution":   req.Resolution,
		"slides":       req.Slides,
	})
	if err != nil {
		return "", providers.Fatal(op, "encode request body", err)
	}

	body, _, err := c.do(ctx, op, http.MethodPost, c.cfg.BaseURL, payload)
	if err != nil {
		return "", err
	}

	var submitted submitResponse
	if err := json.Unmarshal(body, &submitted); err != nil {
		return "", providers.Fatal(op, "decode response: "+providers.SummarizeBody(string(body)), err)
	}
	if strings.TrimSpace(submitted.JobID) == "" {
		return "", providers.Fatal(op, "response missing job id", nil)
	}
	return submitted.JobID, nil
}

// Status reports the current state of a submitted job.
func (c *Client) Status(ctx context.Context, jobID string) (polling.Status, error) {
	const op = "render status"

	if strings.TrimSpace(jobID) == "" {
		return polling.Status{}, providers.Fatal(op, "job id required", nil)
	}

	body, statusCode, err := c.do(ctx, op, http.MethodGet, c.cfg.BaseURL+"/"+jobID, nil)
	if statusCode == http.StatusNotFound {
		return polling.Status{State: polling.StateNotFound}, nil
	}
	if err != nil {
		return polling.Status{}, err
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return polling.Status{}, providers.Fatal(op, "decode response: "+providers.SummarizeBody(string(body)), err)
	}
	return mapStatus(status), nil
}

func mapStatus(status statusResponse) polling.Status {
	mapped := polling.Status{
		ResultURL: status.VideoURL,
		Progress:  status.Progress,
		Detail:    status.Error,
	}
	switch strings.ToLower(strings.TrimSpace(status.Status)) {
	case "completed", "done", "success":
		mapped.State = polling.StateComplete
	case "failed", "error":
		mapped.State = polling.StateFailed
	case "not_found":
		mapped.State = polling.StateNotFound
	default:
		mapped.State = polling.StatePending
	}
	return mapped
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, providers.Fatal(op, "build request", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, err
		}
		return nil, 0, providers.Retryable(op, "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, providers.Retryable(op, "read response body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return body, resp.StatusCode, providers.FromResponse(op, resp.StatusCode, string(body), resp.Header.Get("Retry-After"))
	}
	return body, resp.StatusCode, nil
}
