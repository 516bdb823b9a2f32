package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"wordglow/internal/logging"
	"wordglow/internal/notifications"
	"wordglow/internal/queue"
)

func (m *Manager) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		logger := logging.WithContext(ctx, m.runnerLogger())
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, notification dropped", logging.String("event", string(event)))
		} else {
			logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
		}
	}
}

func (m *Manager) notifyStageError(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	if stageErr == nil {
		return
	}
	m.publish(ctx, notifications.EventError, notifications.Payload{
		"error":   stageErr,
		"context": fmt.Sprintf("%s (job #%d)", stageName, job.ID),
	})
}

func (m *Manager) notifyJobCompleted(ctx context.Context, job *queue.Job) {
	m.publish(ctx, notifications.EventJobCompleted, notifications.Payload{
		"audio":  filepath.Base(job.AudioPath),
		"output": job.OutputPath,
		"cues":   job.CueCount,
	})
}

func (m *Manager) onJobStarted(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.runnerLogger().Warn("queue stats unavailable for start notification; notification skipped",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_stats_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}
		return
	}
	m.mu.Lock()
	if m.queueActive {
		m.mu.Unlock()
		return
	}
	m.queueActive = true
	m.queueStart = time.Now()
	m.mu.Unlock()

	m.publish(ctx, notifications.EventQueueStarted, notifications.Payload{"count": countActiveJobs(stats)})
}

func (m *Manager) checkQueueCompletion(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.runnerLogger().Warn("queue stats unavailable for completion notification; notification skipped",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_stats_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}
		return
	}
	if countActiveJobs(stats) > 0 {
		return
	}

	m.mu.Lock()
	if !m.queueActive {
		m.mu.Unlock()
		return
	}
	start := m.queueStart
	m.queueActive = false
	m.queueStart = time.Time{}
	m.mu.Unlock()

	duration := time.Duration(0)
	if !start.IsZero() {
		duration = time.Since(start)
	}
	m.publish(ctx, notifications.EventQueueCompleted, notifications.Payload{
		"processed": stats[queue.StatusCompleted],
		"failed":    stats[queue.StatusFailed] + stats[queue.StatusReview],
		"duration":  duration,
	})
}

func countActiveJobs(stats map[queue.Status]int) int {
	total := 0
	for status, count := range stats {
		switch status {
		case queue.StatusCompleted, queue.StatusFailed, queue.StatusReview:
			continue
		}
		total += count
	}
	return total
}
