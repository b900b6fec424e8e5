package avatar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lessonforge/internal/polling"
	"lessonforge/internal/providers"
	"lessonforge/internal/providers/avatar"
)

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["character_id"] != "character-1" || req["aspect_ratio"] != "16:9" {
			t.Errorf("unexpected request payload: %v", req)
		}
		_, _ = w.Write([]byte(`{"job_id":"job-42"}`))
	}))
	defer server.Close()

	client := avatar.NewClient(avatar.Config{APIKey: "key", BaseURL: server.URL})
	jobID, err := client.Submit(context.Background(), avatar.SubmitRequest{
		AudioURL:    "https://cdn.example/audio.mp3",
		CharacterID: "character-1",
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if jobID != "job-42" {
		t.Fatalf("expected job-42, got %q", jobID)
	}
}

func TestSubmitMissingJobIDIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := avatar.NewClient(avatar.Config{APIKey: "key", BaseURL: server.URL})
	_, err := client.Submit(context.Background(), avatar.SubmitRequest{
		AudioURL:    "https://cdn.example/audio.mp3",
		CharacterID: "character-1",
	})
	if err == nil || providers.IsRetryable(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestStatusMapsProviderStates(t *testing.T) {
	cases := []struct {
		body string
		want polling.State
	}{
		{`{"status":"processing","progress":0.4}`, polling.StatePending},
		{`{"status":"queued"}`, polling.StatePending},
		{`{"status":"completed","video_url":"https://cdn.example/avatar.mp4"}`, polling.StateComplete},
		{`{"status":"failed","error":"render node crashed"}`, polling.StateFailed},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/job-42" {
				t.Errorf("expected /job-42, got %s", r.URL.Path)
			}
			_, _ = w.Write([]byte(tc.body))
		}))
		client := avatar.NewClient(avatar.Config{APIKey: "key", BaseURL: server.URL})
		status, err := client.Status(context.Background(), "job-42")
		server.Close()
		if err != nil {
			t.Fatalf("Status failed for %q: %v", tc.body, err)
		}
		if status.State != tc.want {
			t.Fatalf("body %q: expected state %s, got %s", tc.body, tc.want, status.State)
		}
	}
}

func TestStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := avatar.NewClient(avatar.Config{APIKey: "key", BaseURL: server.URL})
	status, err := client.Status(context.Background(), "gone")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.State != polling.StateNotFound {
		t.Fatalf("expected not_found state, got %s", status.State)
	}
}

func TestStatusServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := avatar.NewClient(avatar.Config{APIKey: "key", BaseURL: server.URL})
	_, err := client.Status(context.Background(), "job-42")
	if err == nil || !providers.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
