// Package project defines the video project data model and its SQLite-backed
// persistence. Projects are mutated exclusively by the pipeline orchestrator;
// the store's guarded update is the mechanism that keeps late-arriving
// provider results from clobbering a project that has since been retried.
package project
