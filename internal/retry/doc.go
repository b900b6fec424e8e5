// Package retry implements the bounded exponential backoff used for every
// external provider call. Providers classify their own failures; this package
// only decides whether and how long to wait before the next attempt.
package retry
