package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// rollbackCase renders the CASE expression and IN list that send every
// processing status back to the start of its stage.
func rollbackCase() (string, []any, string, []any) {
	var (
		caseSQL  strings.Builder
		caseArgs []any
		inArgs   []any
	)
	caseSQL.WriteString("CASE status")
	for _, transition := range stageRollbackTransitions {
		caseSQL.WriteString(" WHEN ? THEN ?")
		caseArgs = append(caseArgs, transition.from, transition.to)
		inArgs = append(inArgs, transition.from)
	}
	caseSQL.WriteString(" ELSE status END")
	return caseSQL.String(), caseArgs, makePlaceholders(len(inArgs)), inArgs
}

// ResetStuckProcessing resets jobs in processing states back to the start of their current stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	caseSQL, caseArgs, inPlaceholders, inArgs := rollbackCase()
	args := append([]any{}, caseArgs...)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, inArgs...)

	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_jobs
         SET status = `+caseSQL+`,
             progress_stage = 'Reset from stuck processing',
             progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+inPlaceholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns jobs stuck in processing back to the start of
// their current stage when heartbeats are older than cutoff.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	caseSQL, caseArgs, inPlaceholders, inArgs := rollbackCase()
	args := append([]any{}, caseArgs...)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, inArgs...)
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_jobs
         SET status = `+caseSQL+`,
             progress_stage = 'Reclaimed from stale processing',
             progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+inPlaceholders+`) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed and review jobs back to pending. With no ids every
// such job is retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `UPDATE queue_jobs
        SET status = ?, progress_stage = 'Retry requested', progress_message = NULL,
            error_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (?, ?)`
	args := []any{StatusPending, now, StatusFailed, StatusReview}

	if len(ids) > 0 {
		query += ` AND id IN (` + makePlaceholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed jobs: %w", err)
	}
	return res.RowsAffected()
}
