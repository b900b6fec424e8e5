package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"lessonforge/internal/api"
	"lessonforge/internal/client"
)

func daemonNotRunningError(err error) error {
	return fmt.Errorf("cannot reach the lessonforge daemon (is lessonforged running?): %w", err)
}

// explainStageError turns the daemon's status codes into actionable messages.
func explainStageError(err error) error {
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	switch statusErr.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%s (wait for the current stage or check `lessonforge show`)", statusErr.Message)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%s (run the earlier stages first)", statusErr.Message)
	case http.StatusNotFound:
		return errors.New("project not found")
	default:
		return err
	}
}

func printJSON(out io.Writer, payload any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatArtifact(label, url string, out io.Writer) {
	if url == "" {
		return
	}
	fmt.Fprintf(out, "  %-14s %s\n", label+":", url)
}

func formatTimestamp(value string) string {
	if ts, ok := api.ParseTimestamp(value); ok {
		return ts.Local().Format("2006-01-02 15:04")
	}
	return value
}

func statusLabel(p api.Project) string {
	if p.Status == "failed" && p.ErrorStep != "" {
		return fmt.Sprintf("failed (%s)", p.ErrorStep)
	}
	return p.Status
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// colorizeStatus wraps terminal output in ANSI colors keyed by project state.
func colorizeStatus(status string, colorize bool) string {
	if !colorize {
		return status
	}
	switch {
	case status == "completed":
		return ansiGreen + status + ansiReset
	case strings.HasPrefix(status, "failed"):
		return ansiRed + status + ansiReset
	case strings.HasSuffix(status, "_generating") || status == "rendering":
		return ansiYellow + status + ansiReset
	default:
		return status
	}
}
