package pipeline

import (
	"context"

	"lessonforge/internal/polling"
	"lessonforge/internal/project"
	"lessonforge/internal/providers/avatar"
	"lessonforge/internal/providers/content"
	"lessonforge/internal/providers/render"
	"lessonforge/internal/providers/speech"
)

// ContentGenerator produces the structured lesson script.
type ContentGenerator interface {
	GenerateLesson(ctx context.Context, req content.Request) (*project.LessonContent, error)
}

// SpeechSynthesizer produces narration audio from the script.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req speech.Request) (*speech.Result, error)
}

// AvatarRenderer runs asynchronous talking-avatar jobs.
type AvatarRenderer interface {
	Submit(ctx context.Context, req avatar.SubmitRequest) (string, error)
	Status(ctx context.Context, jobID string) (polling.Status, error)
}

// VideoCompositor runs asynchronous final render jobs.
type VideoCompositor interface {
	Submit(ctx context.Context, req render.SubmitRequest) (string, error)
	Status(ctx context.Context, jobID string) (polling.Status, error)
}

// ContextGatherer collects optional research context for content generation.
type ContextGatherer interface {
	Gather(ctx context.Context, topic string, urls []string) string
}

// ArtifactMirror copies a finished render into durable storage.
type ArtifactMirror interface {
	MirrorVideo(ctx context.Context, projectID, sourceURL string) (string, error)
}
