package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition marks an advance request that is not the immediate
	// successor of the project's current status (or the failed stage on retry).
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrMissingPrerequisite marks an advance request whose upstream artifact
	// is absent (e.g. audio generation without a script).
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	// ErrBusy marks a request denied by admission control. The corrective
	// action is to wait, not to report a failure.
	ErrBusy = errors.New("pipeline busy")
	// ErrTimeout marks an external job that exhausted its polling budget.
	ErrTimeout = errors.New("timeout")
	// ErrJobNotFound marks an external job the provider no longer knows about;
	// the stage must be resubmitted, polling again is pointless.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidOutputShape marks provider output that parsed but is missing
	// required fields. Treated as fatal, never retried.
	ErrInvalidOutputShape = errors.New("invalid output shape")
	// ErrTransient marks a failure with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
