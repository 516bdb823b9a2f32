package transcribe

import (
	"context"
	"fmt"

	"wordglow/internal/config"
	"wordglow/internal/services"
	"wordglow/internal/services/openaiwhisper"
	"wordglow/internal/services/whisperx"
	"wordglow/internal/transcript"
)

// Transcriber produces a word-timed transcript for an audio file.
type Transcriber interface {
	Name() string
	Model() string
	Transcribe(ctx context.Context, audioPath, workDir string) (transcript.Transcript, error)
}

// New returns the engine selected by transcription.engine.
func New(cfg *config.Config) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribing", "engine", "config is nil", nil)
	}
	t := cfg.Transcription
	switch t.Engine {
	case config.EngineWhisperX, "":
		return whisperx.NewService(whisperx.Config{
			Model:       t.Model,
			Device:      t.Device,
			ComputeType: t.ComputeType,
			Language:    t.Language,
			BeamSize:    t.BeamSize,
		}), nil
	case config.EngineOpenAI:
		return openaiwhisper.NewService(openaiwhisper.Config{
			APIKey:   t.OpenAIAPIKey,
			BaseURL:  t.OpenAIBaseURL,
			Model:    t.Model,
			Language: t.Language,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribing", "engine",
			fmt.Sprintf("unsupported engine %q", t.Engine), nil)
	}
}

// Run transcribes audioPath with a deadline of cfg's transcription timeout.
func Run(ctx context.Context, cfg *config.Config, engine Transcriber, audioPath, workDir string) (transcript.Transcript, error) {
	if timeout := cfg.TranscriptionTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return engine.Transcribe(ctx, audioPath, workDir)
}
