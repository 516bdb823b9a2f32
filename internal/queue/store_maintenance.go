package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Stats counts jobs per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM queue_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan job counts: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health folds Stats into the buckets shown by `queue health` and
// `daemon status`. Transcribing and captioning jobs both count as processing.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	var summary HealthSummary
	for status, count := range stats {
		summary.Total += count
		if bucket := summary.bucket(status); bucket != nil {
			*bucket += count
		}
	}
	return summary, nil
}

func (h *HealthSummary) bucket(status Status) *int {
	switch {
	case status == StatusPending:
		return &h.Pending
	case status == StatusCompleted:
		return &h.Completed
	case status == StatusFailed:
		return &h.Failed
	case status == StatusReview:
		return &h.Review
	case IsProcessingStatus(status):
		return &h.Processing
	}
	return nil
}

// CheckHealth inspects the job database for `queue health`: the file itself,
// the schema version stamp, the queue_jobs columns and SQLite's integrity
// check. A database file that does not exist yet is reported, not an error.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	exists, err := s.databaseFileExists()
	if err != nil || !exists {
		return health, err
	}
	health.DatabaseExists = true
	if s.db == nil {
		return health, errors.New("queue database connection unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	fail := func(op string, err error) (DatabaseHealth, error) {
		health.Error = err.Error()
		return health, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.db.PingContext(ctx); err != nil {
		return fail("ping queue database", err)
	}
	health.DatabaseReadable = true

	if health.SchemaVersion, err = s.userVersion(ctx); err != nil {
		return fail("read schema version", err)
	}

	columns, err := s.jobTableColumns(ctx)
	if err != nil {
		return fail("inspect queue_jobs", err)
	}
	if len(columns) > 0 {
		health.TableExists = true
		health.ColumnsPresent = columns
		health.MissingColumns = missingJobColumns(columns)
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM queue_jobs`).Scan(&health.TotalJobs); err != nil {
			return fail("count jobs", err)
		}
	}

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fail("integrity check", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")
	return health, nil
}

func (s *Store) databaseFileExists() (bool, error) {
	if s.path == "" {
		return false, errors.New("queue database path is unknown")
	}
	info, err := os.Stat(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat queue database: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("queue database path %q is a directory", s.path)
	}
	return true, nil
}

// jobTableColumns returns the queue_jobs column names, or none when the
// table is absent.
func (s *Store) jobTableColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('queue_jobs')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// missingJobColumns lists the columns job queries select that the table
// lacks, in select order.
func missingJobColumns(present []string) []string {
	have := make(map[string]struct{}, len(present))
	for _, col := range present {
		have[col] = struct{}{}
	}
	var missing []string
	for _, col := range strings.Split(jobColumns, ", ") {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
