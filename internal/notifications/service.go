package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lessonforge/internal/config"
	"lessonforge/internal/project"
)

const userAgent = "Lessonforge/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyStageCompleted(ctx context.Context, title string, stage project.Stage) error
	NotifyPipelineCompleted(ctx context.Context, title, videoURL string) error
	NotifyStageFailed(ctx context.Context, title string, stage project.Stage, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		stages:     cfg.Notifications.Stages,
		completion: cfg.Notifications.Completion,
		errors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	stages     bool
	completion bool
	errors     bool
}

var stageLabels = map[project.Stage]string{
	project.StageContent: "Script ready",
	project.StageAudio:   "Narration ready",
	project.StageAvatar:  "Avatar ready",
	project.StageRender:  "Video rendered",
}

func (n *ntfyService) NotifyStageCompleted(ctx context.Context, title string, stage project.Stage) error {
	if !n.stages {
		return nil
	}
	label, ok := stageLabels[stage]
	if !ok {
		label = string(stage)
	}
	data := payload{
		title:   "Lessonforge - Stage Complete",
		message: fmt.Sprintf("%s: %s", label, strings.TrimSpace(title)),
		tags:    []string{"lessonforge", string(stage), "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPipelineCompleted(ctx context.Context, title, videoURL string) error {
	if !n.completion {
		return nil
	}
	message := fmt.Sprintf("Ready to publish: %s", strings.TrimSpace(title))
	if videoURL = strings.TrimSpace(videoURL); videoURL != "" {
		message = fmt.Sprintf("%s\n%s", message, videoURL)
	}
	data := payload{
		title:    "Lessonforge - Complete",
		message:  message,
		tags:     []string{"lessonforge", "pipeline", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStageFailed(ctx context.Context, title string, stage project.Stage, err error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Failed during %s: %s", stage, strings.TrimSpace(title))
	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Lessonforge - Error",
		message:  builder.String(),
		tags:     []string{"lessonforge", string(stage), "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Lessonforge - Test",
		message:  "Notification system test",
		tags:     []string{"lessonforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyStageCompleted(context.Context, string, project.Stage) error     { return nil }
func (noopService) NotifyPipelineCompleted(context.Context, string, string) error         { return nil }
func (noopService) NotifyStageFailed(context.Context, string, project.Stage, error) error { return nil }
func (noopService) TestNotification(context.Context) error                                { return nil }
