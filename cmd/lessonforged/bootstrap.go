package main

import (
	"log/slog"

	"lessonforge/internal/artifacts"
	"lessonforge/internal/config"
	"lessonforge/internal/notifications"
	"lessonforge/internal/pipeline"
	"lessonforge/internal/project"
	"lessonforge/internal/providers/avatar"
	"lessonforge/internal/providers/content"
	"lessonforge/internal/providers/render"
	"lessonforge/internal/providers/speech"
	"lessonforge/internal/research"
)

func buildOrchestrator(cfg *config.Config, store *project.Store, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	mirror, err := artifacts.NewMirror(cfg.Storage)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Store: store,
		Content: content.NewClient(content.Config{
			APIKey:           cfg.Providers.Content.APIKey,
			BaseURL:          cfg.Providers.Content.BaseURL,
			FallbackBaseURLs: cfg.Providers.Content.FallbackBaseURLs,
			Model:            cfg.Providers.Content.Model,
			Referer:          cfg.Providers.Content.Referer,
			Title:            cfg.Providers.Content.Title,
			TimeoutSeconds:   cfg.Providers.Content.TimeoutSeconds,
		}),
		Speech: speech.NewClient(speech.Config{
			APIKey:         cfg.Providers.Speech.APIKey,
			BaseURL:        cfg.Providers.Speech.BaseURL,
			TimeoutSeconds: cfg.Providers.Speech.TimeoutSeconds,
		}),
		Avatar: avatar.NewClient(avatar.Config{
			APIKey:         cfg.Providers.Avatar.APIKey,
			BaseURL:        cfg.Providers.Avatar.BaseURL,
			TimeoutSeconds: cfg.Providers.Avatar.TimeoutSeconds,
		}),
		Render: render.NewClient(render.Config{
			APIKey:         cfg.Providers.Render.APIKey,
			BaseURL:        cfg.Providers.Render.BaseURL,
			TimeoutSeconds: cfg.Providers.Render.TimeoutSeconds,
		}),
		Research: research.NewGatherer(research.Config{
			APIKey:              cfg.Research.APIKey,
			BaseURL:             cfg.Research.BaseURL,
			MaxResults:          cfg.Research.MaxResults,
			MaxCharsPerSource:   cfg.Research.MaxCharsPerSource,
			FetchTimeoutSeconds: cfg.Research.FetchTimeoutSeconds,
		}, logger),
		Notifier: notifications.NewService(cfg),
		Logger:   logger,
	}
	if mirror != nil {
		deps.Mirror = mirror
	}

	return pipeline.New(cfg, deps), nil
}
