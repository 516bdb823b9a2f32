package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"wordglow/internal/logging"
	"wordglow/internal/queue"
)

func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, stageName string, job *queue.Job, stageErr error) {
	logger = logger.With(logging.String(logging.FieldComponent, "workflow-manager"))

	status := queue.FailureStatus(stageErr)
	message := classifyStageFailure(stageName, stageErr)
	job.SetFailed(status, message)

	hint := "retry with: wordglow queue retry " + fmt.Sprint(job.ID)
	if status == queue.StatusReview {
		hint = "fix the input or configuration, then retry"
	}
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(status)),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorHint, hint),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastJob(job)
	m.notifyStageError(ctx, stageName, job, stageErr)
	m.checkQueueCompletion(ctx)
}

func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr != nil {
		if message := strings.TrimSpace(stageErr.Error()); message != "" {
			return message
		}
	}
	if stageName != "" {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	return "workflow failed without error detail"
}
