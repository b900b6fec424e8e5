// Package polling drives bounded status polling for provider jobs that
// complete asynchronously, such as avatar generation and final rendering.
package polling
