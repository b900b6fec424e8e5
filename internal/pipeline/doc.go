// Package pipeline owns the project state machine. The orchestrator is the
// only writer of pipeline statuses: it validates transitions, admits one
// stage at a time through the gate, runs the provider work under the retry
// policy, and persists results with status-guarded updates so late results
// from an abandoned attempt can never clobber newer state.
package pipeline
