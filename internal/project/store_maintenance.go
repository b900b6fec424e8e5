package project

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ResetStuckGenerating fails every project left in an in-flight generating
// state, recording which stage was interrupted. Called once at daemon boot so
// work orphaned by a crash or restart does not stay in-flight forever.
func (s *Store) ResetStuckGenerating(ctx context.Context) (int, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	statuses := make([]Status, 0, len(generatingStatuses))
	for status := range generatingStatuses {
		statuses = append(statuses, status)
	}

	var stepCase strings.Builder
	stepCase.WriteString("CASE status")
	args := []any{StatusFailed}
	for _, status := range statuses {
		stepCase.WriteString(" WHEN ? THEN ?")
		args = append(args, status, string(generatingStatuses[status]))
	}
	stepCase.WriteString(" END")
	args = append(args, DaemonRestartReason, timestamp)
	for _, status := range statuses {
		args = append(args, status)
	}

	query := fmt.Sprintf(
		`UPDATE projects
         SET status = ?, error_step = %s, error_message = ?, updated_at = ?
         WHERE status IN (%s)`,
		stepCase.String(),
		makePlaceholders(len(statuses)),
	)

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck projects: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}
