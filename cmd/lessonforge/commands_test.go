package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"lessonforge/internal/api"
)

func runCommand(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	full := append([]string{
		"--server", serverURL,
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
	}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommandRendersTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(api.ProjectListResponse{Projects: []api.Project{
			{ID: "0123456789abcdef", Title: "Irregular verbs", TemplateType: "grammar_lesson",
				Status: "draft", Topic: "Past tense", Level: "B1"},
		}})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "list")
	if err != nil {
		t.Fatalf("list command: %v", err)
	}
	if !strings.Contains(out, "Irregular verbs") || !strings.Contains(out, "01234567") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestListCommandJSONOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProjectListResponse{Projects: []api.Project{
			{ID: "0123456789abcdef", Title: "Irregular verbs", Status: "draft"},
		}})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "list", "--json")
	if err != nil {
		t.Fatalf("list command: %v", err)
	}
	var resp api.ProjectListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(resp.Projects) != 1 || resp.Projects[0].ID != "0123456789abcdef" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestCreateCommandPostsProject(t *testing.T) {
	var received api.CreateProjectRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/projects" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.ProjectResponse{Project: api.Project{ID: "p-1", Title: received.Title, Status: "draft"}})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL,
		"create",
		"--title", "Irregular verbs",
		"--topic", "Past tense",
		"--level", "B1",
		"--voice", "voice-1",
		"--character", "character-1",
	)
	if err != nil {
		t.Fatalf("create command: %v", err)
	}
	if received.Source.Topic != "Past tense" || received.Source.Level != "B1" {
		t.Fatalf("unexpected request: %+v", received)
	}
	if received.TemplateType != "grammar_lesson" {
		t.Fatalf("expected default template, got %q", received.TemplateType)
	}
	if !strings.Contains(out, "Created project p-1") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStageCommandReportsConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "another stage is already running"})
	}))
	defer server.Close()

	_, err := runCommand(t, server.URL, "generate-content", "p-1")
	if err == nil || !strings.Contains(err.Error(), "another stage is already running") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestStageCommandReportsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects/p-1/render" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.AcceptedResponse{ProjectID: "p-1", Target: "rendering"})
	}))
	defer server.Close()

	out, err := runCommand(t, server.URL, "render", "p-1")
	if err != nil {
		t.Fatalf("render command: %v", err)
	}
	if !strings.Contains(out, "Started rendering for project p-1") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out.String(), "Wrote sample configuration") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	cmd = newRootCommand()
	out.Reset()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}
