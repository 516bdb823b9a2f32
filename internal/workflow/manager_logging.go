package workflow

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"wordglow/internal/logging"
	"wordglow/internal/queue"
	"wordglow/internal/services"
)

func (m *Manager) runnerLogger() *slog.Logger {
	if m.logger == nil {
		return logging.NewNop()
	}
	return m.logger.With(logging.String(logging.FieldComponent, "workflow-runner"))
}

func (m *Manager) stageLogger(ctx context.Context, runnerLogger *slog.Logger) *slog.Logger {
	base := runnerLogger
	if base == nil {
		base = m.runnerLogger()
	}
	return logging.WithContext(ctx, base)
}

func withStageContext(ctx context.Context, stageName string, job *queue.Job, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if job != nil {
		ctx = services.WithItemID(ctx, job.ID)
	}
	ctx = services.WithStage(ctx, stageName)
	return services.WithRequestID(ctx, requestID)
}

func deriveStageLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
