// Package providers defines the contract shared by the external service
// adapters: a single attempt per call, with every failure classified as
// retryable or fatal so the pipeline's retry policy can decide what to do.
package providers
