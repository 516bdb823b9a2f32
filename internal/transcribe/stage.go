package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"wordglow/internal/config"
	"wordglow/internal/logging"
	"wordglow/internal/queue"
	"wordglow/internal/services"
	"wordglow/internal/services/whisperx"
	"wordglow/internal/stage"
	"wordglow/internal/staging"
	"wordglow/internal/transcript"
)

const (
	progressStageTranscribing = "Transcribing"
	transcriptFileName        = "transcript.json"
)

// Stage integrates transcription with the workflow manager.
type Stage struct {
	cfg    *config.Config
	store  *queue.Store
	engine Transcriber
	logger *slog.Logger
}

// NewStage constructs the transcription stage.
func NewStage(cfg *config.Config, store *queue.Store, engine Transcriber, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, store: store, engine: engine, logger: logging.NewComponentLogger(logger, "transcribe-stage")}
}

// SetLogger allows the workflow manager to route stage logs into the job-scoped logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "transcribe-stage")
}

// WorkDir returns the staging directory reserved for a job.
func WorkDir(cfg *config.Config, jobID int64) string {
	return staging.JobDir(cfg.Paths.StagingDir, jobID)
}

// Prepare records the engine and primes progress fields.
func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	if s == nil || s.engine == nil {
		return services.Wrap(services.ErrConfiguration, "transcribing", "prepare", "Transcription stage is not configured", nil)
	}
	if job == nil {
		return services.Wrap(services.ErrValidation, "transcribing", "prepare", "Queue job is nil", nil)
	}
	job.Engine = s.engine.Name()
	job.SetProgress(progressStageTranscribing, fmt.Sprintf("Starting %s (%s)", s.engine.Name(), s.engine.Model()))
	return nil
}

// Execute runs the engine and stores the transcript in the job's staging directory.
func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	if s == nil || s.engine == nil {
		return services.Wrap(services.ErrConfiguration, "transcribing", "execute", "Transcription stage is not configured", nil)
	}
	if job == nil {
		return services.Wrap(services.ErrValidation, "transcribing", "execute", "Queue job is nil", nil)
	}

	workDir := WorkDir(s.cfg, job.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "transcribing", "execute", "create staging directory", err)
	}

	job.SetProgress(progressStageTranscribing, fmt.Sprintf("Running %s on %s", s.engine.Name(), filepath.Base(job.AudioPath)))
	if s.store != nil {
		if err := s.store.UpdateProgress(ctx, job); err != nil {
			s.logger.Warn("progress update failed", logging.Error(err))
		}
	}

	start := time.Now()
	result, err := Run(ctx, s.cfg, s.engine, job.AudioPath, workDir)
	if err != nil {
		return err
	}

	words := result.Words()
	if violations := transcript.CheckOrder(words); len(violations) > 0 {
		s.logger.Warn("transcript words out of order; highlight timing may jump",
			logging.Int("violations", len(violations)),
			logging.String("first", violations[0].String()),
			logging.String(logging.FieldEventType, "word_order_violation"),
			logging.String(logging.FieldErrorHint, "try a larger model or set transcription.language"),
		)
	}

	path := filepath.Join(workDir, transcriptFileName)
	if err := transcript.Save(path, result); err != nil {
		return services.Wrap(services.ErrTransient, "transcribing", "execute", "save transcript", err)
	}

	job.TranscriptPath = path
	job.Language = result.Language
	job.WordCount = len(words)
	job.SetProgress(progressStageTranscribing, fmt.Sprintf("%d words transcribed", len(words)))

	s.logger.Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.String("engine", s.engine.Name()),
		logging.String("model", s.engine.Model()),
		logging.String("language", result.Language),
		logging.Int("words", len(words)),
		logging.Int("segments", len(result.TimedSegments())),
		logging.Float64("audio_seconds", result.Duration()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// HealthCheck reports whether the configured engine can run.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	const name = "transcribing"
	if s == nil || s.engine == nil || s.cfg == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	switch s.engine.Name() {
	case config.EngineOpenAI:
		if strings.TrimSpace(s.cfg.Transcription.OpenAIAPIKey) == "" {
			return stage.Unhealthy(name, "openai api key missing")
		}
	case config.EngineWhisperX:
		if _, err := exec.LookPath(whisperx.UVXCommand); err != nil {
			return stage.Unhealthy(name, "uvx not found in PATH")
		}
	}
	return stage.Healthy(name)
}
