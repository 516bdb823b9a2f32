package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"wordglow/internal/config"
	"wordglow/internal/logging"
	"wordglow/internal/preflight"
	"wordglow/internal/queue"
	"wordglow/internal/staging"
	"wordglow/internal/workflow"
)

// StaleStagingAge is how long a work directory may sit untouched before the
// daemon removes it on startup.
const StaleStagingAge = 72 * time.Hour

// Daemon coordinates the background processing services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
	LogPath      string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, and workflow manager")
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, runs preflight checks, tidies leftover
// state from a previous run and launches the workflow manager.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another wordglow daemon instance is already running")
	}

	if err := d.checkReadiness(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.recover(ctx)

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("wordglow daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("engine", d.cfg.Transcription.Engine),
	)
	return nil
}

func (d *Daemon) checkReadiness(ctx context.Context) error {
	failed := preflight.Failed(preflight.RunAll(ctx, d.cfg))
	if len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, r := range failed {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		d.logger.Error("preflight checks failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("failures", strings.Join(parts, "; ")),
			logging.String(logging.FieldErrorHint, "run `wordglow queue health` for details"),
		)
		return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
	}

	for _, status := range preflight.CheckSystemDeps(d.cfg) {
		if status.Available {
			continue
		}
		if status.Optional {
			d.logger.Info("optional dependency missing",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
			)
			continue
		}
		logging.WarnWithContext(d.logger, "required dependency missing", "dependency_missing",
			logging.String("dependency", status.Name),
			logging.String("detail", status.Detail),
			logging.String(logging.FieldErrorHint, status.Description),
			logging.String(logging.FieldImpact, "transcription jobs will fail"),
		)
	}
	return nil
}

// recover returns interrupted jobs to their stage start and removes work
// directories nothing refers to any more.
func (d *Daemon) recover(ctx context.Context) {
	if reset, err := d.store.ResetStuckProcessing(ctx); err != nil {
		d.logger.Warn("failed to reset stuck jobs", logging.Error(err))
	} else if reset > 0 {
		d.logger.Info("reset interrupted jobs",
			logging.Int64("count", reset),
			logging.String(logging.FieldEventType, "queue_reset"),
		)
	}

	staging.CleanStale(ctx, d.cfg.Paths.StagingDir, StaleStagingAge, d.logger)

	jobs, err := d.store.List(ctx)
	if err != nil {
		d.logger.Warn("skipping orphaned staging cleanup", logging.Error(err))
		return
	}
	known := make(map[int64]struct{}, len(jobs))
	for _, job := range jobs {
		known[job.ID] = struct{}{}
	}
	staging.CleanOrphaned(ctx, d.cfg.Paths.StagingDir, known, d.logger)
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("wordglow daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		Workflow:     d.workflow.Status(ctx),
		QueueDBPath:  d.cfg.QueueDBPath(),
		LockFilePath: d.lockPath,
		LogPath:      d.cfg.LogPath(),
	}
}
