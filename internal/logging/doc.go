// Package logging centralizes slog construction and the structured attribute
// vocabulary shared across the daemon, pipeline, and CLI.
package logging
