// Package speech synthesizes lesson narration audio from the generated
// script.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"lessonforge/internal/providers"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings for the speech service.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client calls the text-to-speech service. One attempt per call; failures are
// classified for the caller's retry policy.
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

// NewClient constructs a speech client using the supplied configuration.
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

// Request parameterizes one synthesis call.
type Request struct {
	Script    string
	VoiceID   string
	VoiceName string
}

// Result is the synthesized narration artifact.
type Result struct {
	AudioURL        string  `json:"audio_url"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Synthesize produces narration audio for the given script.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Result, error) {
	const op = "speech synthesize"

	if c.cfg.APIKey == "" {
		return nil, providers.Fatal(op, "api key required", nil)
	}
	if strings.TrimSpace(req.Script) == "" {
		return nil, providers.Fatal(op, "script required", nil)
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return nil, providers.Fatal(op, "voice id required", nil)
	}

	payload, err := json.Marshal(map[string]string{
		"text":     req.Script,
		"voice_id": req.VoiceID,
	})
	if err != nil {
		return nil, providers.Fatal(op, "encode request body", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, providers.Fatal(op, "build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, providers.Retryable(op, "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.Retryable(op, "read response body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, providers.FromResponse(op, resp.StatusCode, string(body), resp.Header.Get("Retry-After"))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, providers.Fatal(op, "decode response: "+providers.SummarizeBody(string(body)), err)
	}
	if strings.TrimSpace(result.AudioURL) == "" {
		return nil, providers.Fatal(op, "response missing audio url", nil)
	}
	return &result, nil
}
