package testsupport

import (
	"context"
	"testing"

	"lessonforge/internal/config"
	"lessonforge/internal/project"
)

// MustOpenStore opens a project.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject creates a draft project for tests using the provided store.
func NewProject(t testing.TB, store *project.Store, title string) *project.Project {
	t.Helper()

	p, err := store.Create(context.Background(), SampleProject(title))
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return p
}

// SampleProject returns a valid draft project ready for insertion.
func SampleProject(title string) *project.Project {
	return &project.Project{
		Title:        title,
		TemplateType: project.TemplateGrammarLesson,
		SourceConfig: project.SourceConfig{
			Topic:                 "Past tense of irregular verbs",
			Level:                 "B1",
			TargetDurationSeconds: 300,
			NativeLanguage:        "es",
		},
		VoiceConfig: project.VoiceConfig{
			Provider: "speechfast",
			VoiceID:  "voice-1",
		},
		AvatarConfig: project.AvatarConfig{
			Provider:    "presenters",
			CharacterID: "character-1",
		},
		VideoSettings: project.VideoSettings{
			AspectRatio: "16:9",
			Resolution:  "1080p",
		},
	}
}
