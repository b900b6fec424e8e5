package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind classifies whether a failed provider call is worth reattempting.
type Kind string

const (
	KindRetryable Kind = "retryable"
	KindFatal     Kind = "fatal"
)

// Error is the classified failure of one provider call.
type Error struct {
	Kind       Kind
	Operation  string
	Message    string
	HTTPStatus int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Operation != "" {
		b.WriteString(e.Operation)
		b.WriteString(": ")
	}
	if e.HTTPStatus > 0 {
		fmt.Fprintf(&b, "http %d: ", e.HTTPStatus)
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("provider call failed")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could succeed.
func (e *Error) Retryable() bool { return e.Kind == KindRetryable }

// ClassifyStatus maps an HTTP status to a failure kind. Throttling and server
// side failures are retryable; every other client error is fatal.
func ClassifyStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRetryable
	case status >= 500:
		return KindRetryable
	default:
		return KindFatal
	}
}

// IsRetryable reports whether err carries a retryable classification.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// Retryable wraps err as a retryable provider failure.
func Retryable(operation, message string, err error) *Error {
	return &Error{Kind: KindRetryable, Operation: operation, Message: message, Err: err}
}

// Fatal wraps err as a fatal provider failure.
func Fatal(operation, message string, err error) *Error {
	return &Error{Kind: KindFatal, Operation: operation, Message: message, Err: err}
}

// FromResponse builds a classified error from a non-success HTTP response.
func FromResponse(operation string, status int, body string, retryAfterHeader string) *Error {
	retryAfter, _ := ParseRetryAfter(retryAfterHeader)
	return &Error{
		Kind:       ClassifyStatus(status),
		Operation:  operation,
		Message:    SummarizeBody(body),
		HTTPStatus: status,
		RetryAfter: retryAfter,
	}
}

// ParseRetryAfter interprets a Retry-After header as either delay seconds or
// an HTTP date.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

// SummarizeBody collapses a response body to a single bounded line suitable
// for error messages and logs.
func SummarizeBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := strings.Join(strings.Fields(replacer.Replace(trimmed)), " ")
	const limit = 200
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
