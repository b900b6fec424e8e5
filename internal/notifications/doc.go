// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Stage handlers emit through the small Service interface so the
// HTTP glue lives in one place.
package notifications
