package services_test

import (
	"context"
	"testing"

	"lessonforge/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithProjectID(ctx, "proj-1")
	ctx = services.WithStage(ctx, "audio_generation")
	ctx = services.WithRequestID(ctx, "req-9")

	if id, ok := services.ProjectIDFromContext(ctx); !ok || id != "proj-1" {
		t.Fatalf("project id: got %q ok=%v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "audio_generation" {
		t.Fatalf("stage: got %q ok=%v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-9" {
		t.Fatalf("request id: got %q ok=%v", rid, ok)
	}
}

func TestContextMissingValues(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.ProjectIDFromContext(ctx); ok {
		t.Fatal("expected no project id")
	}
	if ctx2 := services.WithStage(ctx, ""); ctx2 != ctx {
		t.Fatal("empty stage should not allocate a new context")
	}
}
