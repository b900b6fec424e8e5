package logging_test

import (
	"context"
	"path/filepath"
	"testing"

	"lessonforge/internal/logging"
	"lessonforge/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lessonforge.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", logging.String("k", "v"))
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithProjectID(context.Background(), "p1")
	ctx = services.WithStage(ctx, "content_generation")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 context fields, got %d", len(fields))
	}
	if fields[0].Key != logging.FieldProjectID {
		t.Fatalf("unexpected first field %q", fields[0].Key)
	}

	logger := logging.WithContext(ctx, nil)
	if logger == nil {
		t.Fatal("expected logger")
	}
}
