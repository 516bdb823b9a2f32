package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordglow/internal/logging"
	"wordglow/internal/queue"
	"wordglow/internal/services"
)

func (m *Manager) processJob(ctx context.Context, runnerLogger *slog.Logger, job *queue.Job) error {
	stg, ok := m.stageForStatus(job.Status)
	if !ok {
		runnerLogger.Warn("no stage configured for status", logging.String("status", string(job.Status)))
		m.waitForJobOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, stg.name, job, requestID)
	stageLogger := m.stageLogger(stageCtx, runnerLogger)
	if aware, ok := stg.handler.(loggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	if err := m.transitionToProcessing(stageCtx, stg.processingStatus, job); err != nil {
		stageLogger.Error("failed to transition job to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, job)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("audio", strings.TrimSpace(job.AudioPath)),
	)

	if err := stg.handler.Prepare(ctx, job); err != nil {
		m.handleStageFailure(ctx, stageLogger, stg.name, job, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) && ctx.Err() != nil {
			m.rollbackInterrupted(ctx, stageLogger, stg, job)
			return execErr
		}
		m.handleStageFailure(ctx, stageLogger, stg.name, job, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if job.Status == stg.processingStatus || job.Status == "" {
		job.Status = stg.doneStatus
	}
	job.LastHeartbeat = nil
	if job.Status == queue.StatusCompleted && strings.TrimSpace(job.ProgressStage) == "" {
		job.ProgressStage = deriveStageLabel(queue.StatusCompleted)
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(job.Status)),
		logging.String("progress_stage", strings.TrimSpace(job.ProgressStage)),
		logging.String("progress_message", strings.TrimSpace(job.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastJob(job)
	if job.Status == queue.StatusCompleted {
		m.notifyJobCompleted(ctx, job)
	}
	m.checkQueueCompletion(ctx)
	return nil
}

// executeWithHeartbeat runs the stage under the per-job timeout while a
// goroutine keeps the job's heartbeat fresh.
func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	execCtx := ctx
	if m.jobTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, m.jobTimeout)
		defer cancel()
	}

	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	execErr := stg.handler.Execute(execCtx, job)
	hbCancel()
	hbWG.Wait()

	if execErr != nil && ctx.Err() == nil && errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, stg.name, "execute",
			fmt.Sprintf("Job exceeded %s", m.jobTimeout), execErr)
	}
	return execErr
}

// rollbackInterrupted returns a job cancelled by shutdown to the start of its
// stage so the next daemon run picks it up again.
func (m *Manager) rollbackInterrupted(ctx context.Context, logger *slog.Logger, stg pipelineStage, job *queue.Job) {
	job.Status = stg.startStatus
	job.LastHeartbeat = nil
	job.SetProgress(deriveStageLabel(stg.startStatus), queue.DaemonStopReason)
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := m.store.Update(persistCtx, job); err != nil {
		logger.Warn("failed to roll back interrupted job; it will be reset on next start",
			logging.Error(err),
			logging.String(logging.FieldEventType, "stage_rollback_failed"),
		)
		return
	}
	logger.Info("stage interrupted by shutdown",
		logging.String(logging.FieldEventType, "stage_interrupted"),
		logging.String("status", string(job.Status)),
	)
}

func (m *Manager) transitionToProcessing(ctx context.Context, processing queue.Status, job *queue.Job) error {
	if processing == "" {
		return errors.New("processing status must not be empty")
	}

	setJobProcessingState(job, processing)
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastJob(job)
	m.onJobStarted(ctx)
	return nil
}

func setJobProcessingState(job *queue.Job, processing queue.Status) {
	now := time.Now().UTC()
	job.Status = processing
	job.SetProgress(deriveStageLabel(processing), fmt.Sprintf("%s started", deriveStageLabel(processing)))
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
}
