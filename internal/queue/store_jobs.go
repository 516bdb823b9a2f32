package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobRequest describes a new job to enqueue.
type JobRequest struct {
	AudioPath   string
	OutputPath  string
	Engine      string
	Language    string
	Fingerprint string
	SaveJSON    bool
}

// NewJob inserts a pending job for an audio file.
func (s *Store) NewJob(ctx context.Context, req JobRequest) (*Job, error) {
	audio := strings.TrimSpace(req.AudioPath)
	output := strings.TrimSpace(req.OutputPath)
	if audio == "" {
		return nil, errors.New("audio path is required")
	}
	if output == "" {
		return nil, errors.New("output path is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_jobs (
            audio_path, output_path, status, engine, language, save_json, fingerprint,
            created_at, updated_at, progress_stage, progress_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		audio,
		output,
		StatusPending,
		nullableString(req.Engine),
		nullableString(req.Language),
		boolToInt(req.SaveJSON),
		nullableString(req.Fingerprint),
		timestamp,
		timestamp,
		"Queued",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. A missing job returns (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM queue_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// FindByFingerprint returns the most recent job for the given audio fingerprint.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*Job, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM queue_jobs WHERE fingerprint = ? ORDER BY id DESC LIMIT 1`, fingerprint)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}
	return job, nil
}

// Update persists every mutable job field and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_jobs
         SET audio_path = ?, output_path = ?, status = ?, engine = ?, language = ?,
             word_count = ?, cue_count = ?, transcript_path = ?, save_json = ?,
             fingerprint = ?, error_message = ?, updated_at = ?, progress_stage = ?,
             progress_message = ?, last_heartbeat = ?
         WHERE id = ?`,
		job.AudioPath,
		job.OutputPath,
		job.Status,
		nullableString(job.Engine),
		nullableString(job.Language),
		job.WordCount,
		job.CueCount,
		nullableString(job.TranscriptPath),
		boolToInt(job.SaveJSON),
		nullableString(job.Fingerprint),
		nullableString(job.ErrorMessage),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(job.ProgressStage),
		nullableString(job.ProgressMessage),
		nullableTime(job.LastHeartbeat),
		job.ID,
	); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// UpdateProgress persists only the progress fields so long-running stages can
// report without clobbering concurrent status changes.
func (s *Store) UpdateProgress(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_jobs SET progress_stage = ?, progress_message = ?, updated_at = ? WHERE id = ?`,
		nullableString(job.ProgressStage),
		nullableString(job.ProgressMessage),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// List returns jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM queue_jobs`
	orderClause := ` ORDER BY id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		query := baseQuery + ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, statusArgs(statuses)...)
	}
	if err != nil {
		return nil, fmt.Errorf("list queue jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// NextForStatuses returns the oldest job matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query := `SELECT ` + jobColumns + ` FROM queue_jobs WHERE status IN (` + makePlaceholders(len(statuses)) + `) ORDER BY id LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, statusArgs(statuses)...)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// NextPending returns the oldest job waiting for a stage to pick it up: either
// fresh pending work or a job whose transcript is ready for captioning.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	return s.NextForStatuses(ctx, StatusPending, StatusTranscribed)
}

// Remove deletes a job by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed jobs from the queue.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes failed and review jobs from the queue.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_jobs WHERE status IN (?, ?)`, StatusFailed, StatusReview)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all jobs from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}
