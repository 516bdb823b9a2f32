package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wordglow/internal/logging"
	"wordglow/internal/notifications"
	"wordglow/internal/queue"
	"wordglow/internal/services"
	"wordglow/internal/stage"
)

// Options controls stage execution and queue persistence behavior.
type Options struct {
	Logger     *slog.Logger
	Store      *queue.Store
	Notifier   notifications.Service
	Handler    stage.Handler
	StageName  string
	Processing queue.Status
	Done       queue.Status
	Job        *queue.Job
}

// Run executes one stage for a job in the foreground and applies the same
// queue transitions the workflow manager would.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}
	if opts.Store == nil {
		return fmt.Errorf("queue store is required")
	}
	if opts.Job == nil {
		return fmt.Errorf("queue job is required")
	}

	stageCtx := services.WithStage(services.WithItemID(ctx, opts.Job.ID), opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(interface{ SetLogger(*slog.Logger) }); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(opts.Processing)),
		logging.String("audio", strings.TrimSpace(opts.Job.AudioPath)),
	)

	now := time.Now().UTC()
	opts.Job.Status = opts.Processing
	opts.Job.SetProgress(opts.StageName, opts.StageName+" started")
	opts.Job.ErrorMessage = ""
	opts.Job.LastHeartbeat = &now
	if err := opts.Store.Update(stageCtx, opts.Job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	if err := opts.Handler.Prepare(stageCtx, opts.Job); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, err)
	}
	if err := opts.Store.Update(stageCtx, opts.Job); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := opts.Handler.Execute(stageCtx, opts.Job); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, err)
	}

	if opts.Job.Status == opts.Processing || opts.Job.Status == "" {
		opts.Job.Status = opts.Done
	}
	opts.Job.LastHeartbeat = nil
	if err := opts.Store.Update(stageCtx, opts.Job); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(opts.Job.Status)),
		logging.String("progress_message", strings.TrimSpace(opts.Job.ProgressMessage)),
	)
	return nil
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, stageErr error) error {
	status := queue.FailureStatus(stageErr)
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = opts.StageName + " failed"
	}
	opts.Job.SetFailed(status, message)

	logging.ErrorWithContext(logger,
		"stage failed",
		"stage_failure",
		logging.String("resolved_status", string(status)),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)
	persistCtx := context.WithoutCancel(ctx)
	if err := opts.Store.Update(persistCtx, opts.Job); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	if opts.Notifier != nil {
		label := fmt.Sprintf("%s (job #%d)", opts.StageName, opts.Job.ID)
		if err := opts.Notifier.Publish(persistCtx, notifications.EventError, notifications.Payload{
			"error":   stageErr,
			"context": label,
		}); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}

	return stageErr
}

// Step binds a handler to the statuses it moves a job between.
type Step struct {
	Name       string
	Handler    stage.Handler
	Start      queue.Status
	Processing queue.Status
	Done       queue.Status
}

// RunSteps advances job through every step whose start status matches the
// job's current status, stopping at the first failure.
func RunSteps(ctx context.Context, base Options, steps []Step) error {
	if base.Job == nil {
		return fmt.Errorf("queue job is required")
	}
	for _, step := range steps {
		if base.Job.Status != step.Start {
			continue
		}
		opts := base
		opts.Handler = step.Handler
		opts.StageName = step.Name
		opts.Processing = step.Processing
		opts.Done = step.Done
		if err := Run(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}
