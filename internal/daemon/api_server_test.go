package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lessonforge/internal/api"
	"lessonforge/internal/logging"
	"lessonforge/internal/pipeline"
	"lessonforge/internal/polling"
	"lessonforge/internal/project"
	"lessonforge/internal/providers/avatar"
	"lessonforge/internal/providers/content"
	"lessonforge/internal/providers/render"
	"lessonforge/internal/providers/speech"
	"lessonforge/internal/spacing"
	"lessonforge/internal/testsupport"
)

// providerStub satisfies every orchestrator provider interface with canned
// results so daemon tests can run stages end to end.
type providerStub struct {
	done chan struct{}
}

func (p *providerStub) GenerateLesson(context.Context, content.Request) (*project.LessonContent, error) {
	if p.done != nil {
		defer func() { p.done <- struct{}{} }()
	}
	return &project.LessonContent{
		Objective:  "Use the past tense",
		Slides:     []project.Slide{{Title: "Went", Content: "go -> went"}},
		FullScript: "Today we practice irregular verbs.",
	}, nil
}

func (p *providerStub) Synthesize(context.Context, speech.Request) (*speech.Result, error) {
	return &speech.Result{AudioURL: "https://speech.test/audio.mp3", DurationSeconds: 280}, nil
}

func (p *providerStub) Submit(context.Context, avatar.SubmitRequest) (string, error) {
	return "job-1", nil
}

func (p *providerStub) Status(context.Context, string) (polling.Status, error) {
	return polling.Status{State: polling.StateComplete, ResultURL: "https://jobs.test/out.mp4"}, nil
}

type renderStub struct{}

func (renderStub) Submit(context.Context, render.SubmitRequest) (string, error) { return "job-2", nil }

func (renderStub) Status(context.Context, string) (polling.Status, error) {
	return polling.Status{State: polling.StateComplete, ResultURL: "https://render.test/final.mp4"}, nil
}

func newTestDaemon(t *testing.T, stub *providerStub) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	noSleep := func(context.Context, time.Duration) error { return nil }
	orch := pipeline.New(cfg, pipeline.Deps{
		Store:   store,
		Content: stub,
		Speech:  stub,
		Avatar:  stub,
		Render:  renderStub{},
	},
		pipeline.WithSleeper(noSleep),
		pipeline.WithSpacer(spacing.NewSpacerWithClock(time.Now, noSleep)),
	)

	d, err := New(cfg, store, orch, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d
}

func TestAPIServerProjectCRUD(t *testing.T) {
	d := newTestDaemon(t, &providerStub{})
	srv := d.api

	body := `{
		"title": "Irregular verbs",
		"templateType": "grammar_lesson",
		"source": {"topic": "Past tense", "level": "b1", "targetDurationSeconds": 300},
		"voice": {"provider": "speechfast", "voiceId": "voice-1"},
		"avatar": {"provider": "presenters", "characterId": "character-1"},
		"video": {"aspectRatio": "16:9", "resolution": "1080p"}
	}`
	w := httptest.NewRecorder()
	srv.handleProjects(w, httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created api.ProjectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Project.ID == "" || created.Project.Status != "draft" {
		t.Fatalf("unexpected created project: %+v", created.Project)
	}
	if created.Project.Level != "B1" {
		t.Fatalf("expected level normalized to B1, got %q", created.Project.Level)
	}

	w = httptest.NewRecorder()
	srv.handleProjects(w, httptest.NewRequest(http.MethodGet, "/api/projects?status=draft", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list api.ProjectListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(list.Projects))
	}

	w = httptest.NewRecorder()
	srv.handleProjectSubtree(w, httptest.NewRequest(http.MethodGet, "/api/projects/"+created.Project.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.handleProjectSubtree(w, httptest.NewRequest(http.MethodGet, "/api/projects/no-such-id", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.handleProjectSubtree(w, httptest.NewRequest(http.MethodDelete, "/api/projects/"+created.Project.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestAPIServerRejectsInvalidProject(t *testing.T) {
	d := newTestDaemon(t, &providerStub{})

	body := `{"title": "", "templateType": "grammar_lesson"}`
	w := httptest.NewRecorder()
	d.api.handleProjects(w, httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAPIServerStageActionAccepted(t *testing.T) {
	stub := &providerStub{done: make(chan struct{}, 1)}
	d := newTestDaemon(t, stub)
	p := testsupport.NewProject(t, d.store, "Async stage")

	w := httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/generate-content", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var accepted api.AcceptedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode accepted response: %v", err)
	}
	if accepted.Target != string(project.StatusContentGenerating) {
		t.Fatalf("unexpected target %q", accepted.Target)
	}

	select {
	case <-stub.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for background stage")
	}
	waitForStatus(t, d.store, p.ID, project.StatusContentReady)
}

// waitForStatus polls the store until the project reaches the wanted status,
// so background stage goroutines finish before test cleanup closes the store.
func waitForStatus(t *testing.T, store *project.Store, id string, want project.Status) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		p, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("reload project: %v", err)
		}
		if p != nil && p.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("project %s never reached %s", id, want)
}

func TestAPIServerStageErrorMapping(t *testing.T) {
	d := newTestDaemon(t, &providerStub{})
	p := testsupport.NewProject(t, d.store, "Error mapping")

	// Skipping ahead is a conflict.
	w := httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/render", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for invalid transition, got %d", w.Code)
	}

	// A missing upstream artifact is unprocessable.
	p.Status = project.StatusContentReady
	if err := d.store.Update(context.Background(), p); err != nil {
		t.Fatalf("update project: %v", err)
	}
	w = httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/generate-audio", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing prerequisite, got %d", w.Code)
	}

	// A held gate means the pipeline is busy.
	p.Status = project.StatusDraft
	if err := d.store.Update(context.Background(), p); err != nil {
		t.Fatalf("update project: %v", err)
	}
	if !d.orch.Gate().TryAcquire() {
		t.Fatal("expected to take the gate")
	}
	defer d.orch.Gate().Release()
	w = httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/generate-content", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while busy, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/no-such-id/generate-content", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing project, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/unknown-action", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", w.Code)
	}
}

func TestAPIServerRetryUsesFailedStage(t *testing.T) {
	stub := &providerStub{done: make(chan struct{}, 1)}
	d := newTestDaemon(t, stub)
	p := testsupport.NewProject(t, d.store, "Retry path")
	p.SetFailed(project.StageContent, "upstream outage")
	if err := d.store.Update(context.Background(), p); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	w := httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/retry", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var accepted api.AcceptedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode accepted response: %v", err)
	}
	if accepted.Target != string(project.StatusContentGenerating) {
		t.Fatalf("expected retry to re-enter content stage, got %q", accepted.Target)
	}

	select {
	case <-stub.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for retry stage")
	}
	waitForStatus(t, d.store, p.ID, project.StatusContentReady)
}

func TestAPIServerRetryWithoutFailure(t *testing.T) {
	d := newTestDaemon(t, &providerStub{})
	p := testsupport.NewProject(t, d.store, "Nothing to retry")

	w := httptest.NewRecorder()
	d.api.handleProjectSubtree(w, httptest.NewRequest(http.MethodPost, "/api/projects/"+p.ID+"/retry", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
