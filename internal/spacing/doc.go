// Package spacing enforces per-provider minimum intervals between outbound
// requests so bursty pipeline stages do not trip provider rate limits.
package spacing
