package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wordglow/internal/captions"
	"wordglow/internal/config"
	"wordglow/internal/logging"
	"wordglow/internal/services"
	"wordglow/internal/staging"
	"wordglow/internal/transcribe"
	"wordglow/internal/transcript"
)

// Request describes one audio file to caption.
type Request struct {
	AudioPath string
	// OutputPath defaults to <output_dir>/<audio base>.ass.
	OutputPath string
	SaveJSON   bool
}

// Result reports what a run produced.
type Result struct {
	RequestID  string
	OutputPath string
	JSONPath   string
	WordCount  int
	CueCount   int
	Language   string
	Duration   float64
	Elapsed    time.Duration
}

// Pipeline turns audio or transcripts into karaoke subtitle files.
type Pipeline struct {
	cfg      *config.Config
	style    captions.StyleSpec
	maxWords int
	engine   transcribe.Transcriber
	logger   *slog.Logger
}

// New validates the caption settings in cfg. engine may be nil when only
// RunTranscript will be used.
func New(cfg *config.Config, engine transcribe.Transcriber, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, &captions.ConfigurationError{Field: "config", Reason: "missing"}
	}
	style, err := cfg.StyleSpec()
	if err != nil {
		return nil, err
	}
	maxWords := cfg.Captions.MaxWordsPerChunk
	if maxWords < 1 {
		return nil, &captions.ConfigurationError{
			Field:  "captions.max_words_per_chunk",
			Value:  strconv.Itoa(maxWords),
			Reason: "must be at least 1",
		}
	}
	return &Pipeline{
		cfg:      cfg,
		style:    style,
		maxWords: maxWords,
		engine:   engine,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Style returns the validated style the pipeline writes.
func (p *Pipeline) Style() captions.StyleSpec {
	return p.style
}

// DefaultOutputPath places the subtitle file for audioPath in outputDir.
func DefaultOutputPath(outputDir, audioPath string) string {
	base := filepath.Base(audioPath)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".ass")
}

// JSONPath is the transcript side output that accompanies outputPath.
func JSONPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".json"
}

// Run transcribes the request's audio and writes the subtitle file.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, p.logger)

	if p.engine == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "generate", "transcribe", "No transcription engine configured", nil)
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "generate", "request", "Audio path is required", nil)
	}
	output := req.OutputPath
	if output == "" {
		output = DefaultOutputPath(p.cfg.Paths.OutputDir, req.AudioPath)
	}

	if err := os.MkdirAll(p.cfg.Paths.StagingDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "generate", "staging", "create staging directory", err)
	}
	workDir, err := os.MkdirTemp(p.cfg.Paths.StagingDir, staging.GeneratePrefix)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "generate", "staging", "create work directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("work directory cleanup failed", logging.String("path", workDir), logging.Error(err))
		}
	}()

	logger.Info("transcription started",
		logging.String(logging.FieldEventType, "transcription_start"),
		logging.String("audio", req.AudioPath),
		logging.String("engine", p.engine.Name()),
		logging.String("model", p.engine.Model()),
	)
	result, err := transcribe.Run(ctx, p.cfg, p.engine, req.AudioPath, workDir)
	if err != nil {
		return Result{}, err
	}

	if len(result.Words()) == 0 {
		return Result{}, &captions.EmptyInputError{Segments: len(result.Segments)}
	}

	jsonPath := ""
	if req.SaveJSON {
		jsonPath = JSONPath(output)
		if err := saveTranscript(jsonPath, result); err != nil {
			return Result{}, err
		}
	}

	res, err := p.render(ctx, logger, result, output)
	if err != nil {
		return Result{}, err
	}
	res.RequestID = requestID
	res.JSONPath = jsonPath
	res.Elapsed = time.Since(start)
	return res, nil
}

// RunTranscript writes the subtitle file for an already transcribed input.
func (p *Pipeline) RunTranscript(ctx context.Context, t transcript.Transcript, outputPath string) (Result, error) {
	start := time.Now()
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	if strings.TrimSpace(outputPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "render", "request", "Output path is required", nil)
	}
	res, err := p.render(ctx, logging.WithContext(ctx, p.logger), t, outputPath)
	if err != nil {
		return Result{}, err
	}
	res.RequestID = requestID
	res.Elapsed = time.Since(start)
	return res, nil
}

func (p *Pipeline) render(ctx context.Context, logger *slog.Logger, t transcript.Transcript, outputPath string) (Result, error) {
	words := t.Words()
	if len(words) == 0 {
		return Result{}, &captions.EmptyInputError{Segments: len(t.Segments)}
	}
	if violations := transcript.CheckOrder(words); len(violations) > 0 {
		logger.Warn("word timing out of order",
			logging.String(logging.FieldEventType, "word_order_violation"),
			logging.Int("violations", len(violations)),
			logging.String("first", violations[0].String()),
			logging.String(logging.FieldImpact, "some highlights may fire early or late"),
		)
	}

	cues, err := captions.BuildChunks(words, p.maxWords)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, services.Wrap(services.ErrTimeout, "captioning", "assemble", "cancelled before write", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return Result{}, &captions.IOError{Op: "create directory", Path: filepath.Dir(outputPath), Err: err}
	}
	assembled, err := captions.Assemble(outputPath, cues, p.style)
	if err != nil {
		return Result{}, err
	}

	logger.Info("subtitle written",
		logging.String(logging.FieldEventType, "subtitle_written"),
		logging.String("output", outputPath),
		logging.Int("words", len(words)),
		logging.Int("cues", assembled.Cues),
		logging.Float64("duration_seconds", assembled.Duration),
	)
	return Result{
		OutputPath: outputPath,
		WordCount:  len(words),
		CueCount:   assembled.Cues,
		Language:   t.Language,
		Duration:   assembled.Duration,
	}, nil
}

func saveTranscript(path string, t transcript.Transcript) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &captions.IOError{Op: "create directory", Path: filepath.Dir(path), Err: err}
	}
	if err := transcript.Save(path, t); err != nil {
		return &captions.IOError{Op: "write transcript", Path: path, Err: err}
	}
	return nil
}

// String renders a one-line summary for CLI output.
func (r Result) String() string {
	return fmt.Sprintf("%s: %d words in %d cues (%.1fs)", r.OutputPath, r.WordCount, r.CueCount, r.Duration)
}
