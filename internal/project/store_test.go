package project_test

import (
	"context"
	"fmt"
	"testing"

	"lessonforge/internal/project"
	"lessonforge/internal/testsupport"
)

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	created, err := store.Create(ctx, testsupport.SampleProject("Irregular Verbs"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected project ID to be assigned")
	}
	if created.Status != project.StatusDraft {
		t.Fatalf("expected draft status, got %s", created.Status)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	fetched, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Irregular Verbs" {
		t.Fatalf("unexpected fetched project: %#v", fetched)
	}
	if fetched.SourceConfig.Level != "B1" {
		t.Fatalf("expected level B1, got %q", fetched.SourceConfig.Level)
	}
}

func TestCreateRejectsInvalidProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	invalid := testsupport.SampleProject("Bad Level")
	invalid.SourceConfig.Level = "Z9"
	if _, err := store.Create(context.Background(), invalid); err == nil {
		t.Fatal("expected error for invalid CEFR level")
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	fetched, err := store.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched != nil {
		t.Fatalf("expected nil for missing project, got %#v", fetched)
	}
}

func TestUpdateRoundTripsArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	p := testsupport.NewProject(t, store, "Artifacts")

	p.Status = project.StatusContentReady
	p.LessonContent = &project.LessonContent{
		Objective:  "Use past simple with irregular verbs",
		Slides:     []project.Slide{{Title: "Intro", Content: "go -> went"}},
		FullScript: "Today we look at irregular verbs.",
	}
	if err := store.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != project.StatusContentReady {
		t.Fatalf("expected content_ready, got %s", fetched.Status)
	}
	if fetched.LessonContent == nil || fetched.LessonContent.Objective == "" {
		t.Fatalf("expected lesson content to survive round trip: %#v", fetched.LessonContent)
	}
	if len(fetched.LessonContent.Slides) != 1 {
		t.Fatalf("expected one slide, got %d", len(fetched.LessonContent.Slides))
	}
	if fetched.UpdatedAt.Before(fetched.CreatedAt) {
		t.Fatal("expected updated_at to be at or past created_at")
	}
}

func TestUpdateFromGuardsOnStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	p := testsupport.NewProject(t, store, "Guarded")

	p.Status = project.StatusContentGenerating
	matched, err := store.UpdateFrom(ctx, p, project.StatusDraft)
	if err != nil {
		t.Fatalf("UpdateFrom failed: %v", err)
	}
	if !matched {
		t.Fatal("expected guarded update to match draft row")
	}

	// A second writer that still believes the project is draft must lose.
	stale := *p
	stale.Status = project.StatusFailed
	matched, err = store.UpdateFrom(ctx, &stale, project.StatusDraft)
	if err != nil {
		t.Fatalf("UpdateFrom failed: %v", err)
	}
	if matched {
		t.Fatal("expected stale guarded update to be discarded")
	}

	fetched, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != project.StatusContentGenerating {
		t.Fatalf("expected content_generating after stale write, got %s", fetched.Status)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		testsupport.NewProject(t, store, fmt.Sprintf("Draft %d", i))
	}
	done := testsupport.NewProject(t, store, "Done")
	done.Status = project.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	drafts, err := store.List(ctx, project.StatusDraft)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 projects, got %d", len(all))
	}
}

func TestRemoveDeletesProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	p := testsupport.NewProject(t, store, "Doomed")

	removed, err := store.Remove(ctx, p.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to report success")
	}

	fetched, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched != nil {
		t.Fatal("expected project to be gone")
	}
}

func TestResetStuckGenerating(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		initialStatus project.Status
		wantStep      project.Stage
	}{
		{project.StatusContentGenerating, project.StageContent},
		{project.StatusAudioGenerating, project.StageAudio},
		{project.StatusAvatarGenerating, project.StageAvatar},
		{project.StatusRendering, project.StageRender},
	}

	ids := make([]string, 0, len(cases))
	for i, tc := range cases {
		p := testsupport.NewProject(t, store, fmt.Sprintf("Stuck %d", i))
		p.Status = tc.initialStatus
		if err := store.Update(ctx, p); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, p.ID)
	}
	untouched := testsupport.NewProject(t, store, "Still Draft")

	count, err := store.ResetStuckGenerating(ctx)
	if err != nil {
		t.Fatalf("ResetStuckGenerating failed: %v", err)
	}
	if count != len(cases) {
		t.Fatalf("expected %d projects reset, got %d", len(cases), count)
	}

	for i, tc := range cases {
		fetched, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if fetched.Status != project.StatusFailed {
			t.Fatalf("expected failed status for %s, got %s", tc.initialStatus, fetched.Status)
		}
		if fetched.ErrorStep != tc.wantStep {
			t.Fatalf("expected error step %s, got %s", tc.wantStep, fetched.ErrorStep)
		}
		if fetched.ErrorMessage != project.DaemonRestartReason {
			t.Fatalf("unexpected error message %q", fetched.ErrorMessage)
		}
	}

	fetched, err := store.GetByID(ctx, untouched.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != project.StatusDraft {
		t.Fatalf("expected draft project untouched, got %s", fetched.Status)
	}
}
