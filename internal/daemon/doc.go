// Package daemon hosts the long-running lessonforge process: it enforces
// single-instance execution with a lock file, repairs projects orphaned in a
// generating state by a previous crash, and serves the HTTP API the CLI
// talks to.
package daemon
