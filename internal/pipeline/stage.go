package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wordglow/internal/captions"
	"wordglow/internal/fileutil"
	"wordglow/internal/logging"
	"wordglow/internal/queue"
	"wordglow/internal/services"
	"wordglow/internal/stage"
	"wordglow/internal/transcript"
)

const progressStageCaptioning = "Captioning"

// Stage renders the stored transcript of a queued job into its subtitle file.
type Stage struct {
	pipeline *Pipeline
	store    *queue.Store
	logger   *slog.Logger
}

// NewStage wires a pipeline into the workflow.
func NewStage(p *Pipeline, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{pipeline: p, store: store, logger: logging.NewComponentLogger(logger, "caption-stage")}
}

// SetLogger routes stage logs into the job-scoped logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "caption-stage")
	if s.pipeline != nil {
		s.pipeline.logger = s.logger
	}
}

// Prepare checks that transcription left a transcript behind.
func (s *Stage) Prepare(_ context.Context, job *queue.Job) error {
	if s == nil || s.pipeline == nil {
		return services.Wrap(services.ErrConfiguration, "captioning", "prepare", "Caption stage is not configured", nil)
	}
	if job == nil {
		return services.Wrap(services.ErrValidation, "captioning", "prepare", "Queue job is nil", nil)
	}
	if job.TranscriptPath == "" {
		return services.Wrap(services.ErrValidation, "captioning", "prepare", "Job has no transcript; retry to transcribe again", nil)
	}
	if job.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "captioning", "prepare", "Job has no output path", nil)
	}
	job.SetProgress(progressStageCaptioning, "Loading transcript")
	return nil
}

// Execute chunks, encodes and writes the subtitle file.
func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	if s == nil || s.pipeline == nil {
		return services.Wrap(services.ErrConfiguration, "captioning", "execute", "Caption stage is not configured", nil)
	}
	if job == nil {
		return services.Wrap(services.ErrValidation, "captioning", "execute", "Queue job is nil", nil)
	}

	t, err := transcript.Load(job.TranscriptPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "captioning", "load transcript", "Transcript missing from staging", err)
		}
		return services.Wrap(services.ErrValidation, "captioning", "load transcript", "Transcript is unreadable", err)
	}

	job.SetProgress(progressStageCaptioning, fmt.Sprintf("Writing %s", filepath.Base(job.OutputPath)))
	if s.store != nil {
		if err := s.store.UpdateProgress(ctx, job); err != nil {
			s.logger.Warn("progress update failed", logging.Error(err))
		}
	}

	res, err := s.pipeline.RunTranscript(ctx, t, job.OutputPath)
	if err != nil {
		return err
	}
	if job.SaveJSON {
		dst := JSONPath(job.OutputPath)
		if _, err := fileutil.CopyFileVerified(job.TranscriptPath, dst); err != nil {
			return &captions.IOError{Op: "copy transcript", Path: dst, Err: err}
		}
	}

	job.WordCount = res.WordCount
	job.CueCount = res.CueCount
	if job.Language == "" {
		job.Language = res.Language
	}
	job.SetProgress("Completed", res.String())
	return nil
}

// HealthCheck reports whether the configured style can be written.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	const name = "captioning"
	if s == nil || s.pipeline == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if err := s.pipeline.style.Validate(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
