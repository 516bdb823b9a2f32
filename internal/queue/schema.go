package queue

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in the database header (PRAGMA user_version).
// Job databases written by a different layout are refused, not migrated.
const schemaVersion = 1

// ErrSchemaMismatch reports a job database created with another layout.
var ErrSchemaMismatch = errors.New("queue schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	version, err := s.userVersion(ctx)
	if err != nil {
		return err
	}
	switch version {
	case 0:
		return s.createSchema(ctx)
	case schemaVersion:
		return nil
	default:
		return fmt.Errorf("%w: %s is version %d, wordglow expects %d; move the file aside to start an empty queue",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
}

func (s *Store) userVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read queue schema version: %w", err)
	}
	return version, nil
}

// createSchema creates queue_jobs and stamps the version in one transaction.
func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin queue schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create queue_jobs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("stamp queue schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit queue schema: %w", err)
	}
	return nil
}
