package artifacts_test

import (
	"context"
	"testing"

	"lessonforge/internal/artifacts"
	"lessonforge/internal/config"
)

func TestNewMirrorDisabled(t *testing.T) {
	mirror, err := artifacts.NewMirror(config.Storage{})
	if err != nil {
		t.Fatalf("NewMirror failed: %v", err)
	}
	if mirror != nil {
		t.Fatal("expected nil mirror when storage is disabled")
	}
}

func TestNewMirrorRequiresEndpointAndBucket(t *testing.T) {
	if _, err := artifacts.NewMirror(config.Storage{Enabled: true}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := artifacts.NewMirror(config.Storage{Enabled: true, Endpoint: "minio.local:9000"}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestMirrorVideoNilReceiver(t *testing.T) {
	var mirror *artifacts.Mirror
	if _, err := mirror.MirrorVideo(context.Background(), "proj-1", "https://cdn.example/final.mp4"); err == nil {
		t.Fatal("expected error from disabled mirror")
	}
}

func TestMirrorVideoValidatesInput(t *testing.T) {
	mirror, err := artifacts.NewMirror(config.Storage{
		Enabled:   true,
		Endpoint:  "minio.local:9000",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "lessonforge",
	})
	if err != nil {
		t.Fatalf("NewMirror failed: %v", err)
	}
	if _, err := mirror.MirrorVideo(context.Background(), "", "https://cdn.example/final.mp4"); err == nil {
		t.Fatal("expected error for empty project id")
	}
	if _, err := mirror.MirrorVideo(context.Background(), "proj-1", ""); err == nil {
		t.Fatal("expected error for empty source url")
	}
}
