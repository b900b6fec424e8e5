// Package config loads, validates, and normalizes the lessonforge TOML
// configuration shared by the daemon and CLI.
package config
