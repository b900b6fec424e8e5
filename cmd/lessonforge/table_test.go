package main

import (
	"strings"
	"testing"

	"lessonforge/internal/api"
)

func TestRenderProjectTable(t *testing.T) {
	out := renderProjectTable([]api.Project{
		{ID: "0123456789abcdef", Title: "Irregular verbs", TemplateType: "grammar_lesson",
			Status: "failed", ErrorStep: "audio_generation", Topic: "Past tense", Level: "B1"},
	}, false)

	for _, want := range []string{"ID", "STATUS", "UPDATED", "01234567", "failed (audio_generation)", "Past tense"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Fatalf("expected truncated id in table:\n%s", out)
	}
	if strings.Contains(out, ansiRed) {
		t.Fatalf("expected no ANSI codes without colorize:\n%s", out)
	}
}
