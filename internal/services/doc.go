// Package services defines shared utilities consumed by the pipeline stages
// and external provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp project IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the pipeline's error taxonomy (invalid transition, missing
//     prerequisite, busy, timeout, job lost, malformed provider output).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
