package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lessonforge/internal/project"
	"lessonforge/internal/providers"
	"lessonforge/internal/services"
)

const (
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 120 * time.Second
)

// Config captures the runtime settings required to talk to the script model.
type Config struct {
	APIKey           string
	BaseURL          string
	FallbackBaseURLs []string
	Model            string
	Referer          string
	Title            string
	TimeoutSeconds   int
}

// Client generates lesson scripts over an OpenAI-style chat completion API.
// Each call makes exactly one attempt per configured endpoint; retrying a
// failed call is the caller's responsibility.
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

// NewClient constructs a content client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:           strings.TrimSpace(cfg.APIKey),
			BaseURL:          strings.TrimSpace(cfg.BaseURL),
			FallbackBaseURLs: cfg.FallbackBaseURLs,
			Model:            strings.TrimSpace(cfg.Model),
			Referer:          strings.TrimSpace(cfg.Referer),
			Title:            strings.TrimSpace(cfg.Title),
			TimeoutSeconds:   cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Request parameterizes one lesson script generation.
type Request struct {
	TemplateType    project.TemplateType
	Topic           string
	Level           string
	DurationSeconds int
	NativeLanguage  string
	ResearchContext string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateLesson produces the structured lesson content for one project. The
// configured endpoints are tried in order; the first usable response wins.
// Endpoint failover only happens on retryable failures, so a rejected prompt
// surfaces immediately instead of being replayed against every fallback.
func (c *Client) GenerateLesson(ctx context.Context, req Request) (*project.LessonContent, error) {
	if c.cfg.APIKey == "" {
		return nil, providers.Fatal("content generate", "api key required", nil)
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, providers.Fatal("content generate", "topic required", nil)
	}

	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(req)},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		Temperature:    0.7,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}

	var lastErr error
	for _, endpoint := range c.endpoints() {
		lesson, err := c.generateOnce(ctx, endpoint, payload)
		if err == nil {
			return lesson, nil
		}
		if !providers.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = providers.Fatal("content generate", "no endpoints configured", nil)
	}
	return nil, lastErr
}

func (c *Client) endpoints() []string {
	seen := make(map[string]struct{}, 1+len(c.cfg.FallbackBaseURLs))
	endpoints := make([]string, 0, 1+len(c.cfg.FallbackBaseURLs))
	for _, endpoint := range append([]string{c.cfg.BaseURL}, c.cfg.FallbackBaseURLs...) {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint == "" {
			continue
		}
		if _, ok := seen[endpoint]; ok {
			continue
		}
		seen[endpoint] = struct{}{}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints
}

func (c *Client) generateOnce(ctx context.Context, endpoint string, payload chatCompletionRequest) (*project.LessonContent, error) {
	const op = "content generate"

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.Fatal(op, "encode request body", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, providers.Fatal(op, "build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
		httpReq.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		httpReq.Header.Set("X-Title", c.cfg.Title)
	}

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

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, providers.Fatal(op, fmt.Sprintf("decode response: %s", providers.SummarizeBody(string(body))), err)
	}
	if completion.Error != nil {
		return nil, providers.Fatal(op, "api error: "+strings.TrimSpace(completion.Error.Message), nil)
	}
	if len(completion.Choices) == 0 {
		return nil, providers.Fatal(op, "empty choices", nil)
	}
	raw := strings.TrimSpace(completion.Choices[0].Message.Content)
	if raw == "" {
		return nil, providers.Fatal(op, fmt.Sprintf("empty content (finish_reason=%q)", completion.Choices[0].FinishReason), nil)
	}

	var lesson project.LessonContent
	if err := DecodeModelJSON(raw, &lesson); err != nil {
		return nil, providers.Fatal(op, "decode lesson payload", fmt.Errorf("%w: %w", services.ErrInvalidOutputShape, err))
	}
	if err := validateLesson(&lesson); err != nil {
		return nil, providers.Fatal(op, err.Error(), services.ErrInvalidOutputShape)
	}
	return &lesson, nil
}

func validateLesson(lesson *project.LessonContent) error {
	switch {
	case strings.TrimSpace(lesson.Objective) == "":
		return errors.New("lesson is missing an objective")
	case len(lesson.Slides) == 0:
		return errors.New("lesson has no slides")
	case strings.TrimSpace(lesson.FullScript) == "":
		return errors.New("lesson is missing the full script")
	}
	return nil
}
