package whisperx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"wordglow/internal/language"
	"wordglow/internal/services"
	"wordglow/internal/transcript"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	binary        string
	commandRunner CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, binary: UVXCommand}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	s.commandRunner = runner
}

// Name identifies the engine in logs and job records.
func (s *Service) Name() string {
	return "whisperx"
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs WhisperX over audioPath, writing its output under workDir,
// and returns the word-timed transcript.
func (s *Service) Transcribe(ctx context.Context, audioPath, workDir string) (transcript.Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return transcript.Transcript{}, services.Wrap(services.ErrValidation, "transcribing", "whisperx", "audio path required", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transcript.Transcript{}, services.Wrap(services.ErrNotFound, "transcribing", "whisperx", "audio file missing", err)
		}
		return transcript.Transcript{}, services.Wrap(services.ErrTransient, "transcribing", "whisperx", "stat audio", err)
	}
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTransient, "transcribing", "whisperx", "ensure output dir", err)
	}

	if err := s.run(ctx, s.binary, s.buildArgs(audioPath, workDir)...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return transcript.Transcript{}, services.Wrap(services.ErrTimeout, "transcribing", "whisperx", "transcription interrupted", ctxErr)
		}
		return transcript.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribing", "whisperx", "whisperx run failed", err)
	}

	jsonPath := OutputPath(audioPath, workDir)
	result, err := transcript.Load(jsonPath)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribing", "whisperx", "read whisperx output", err)
	}
	if result.Language == "" {
		result.Language = s.cfg.Language
	}
	return result, nil
}

// OutputPath returns where WhisperX writes the JSON result for audioPath.
func OutputPath(audioPath, workDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(workDir, base+".json")
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)

	cuda := strings.EqualFold(s.cfg.Device, CUDADevice)
	if cuda {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	beam := s.cfg.BeamSize
	if beam < 1 {
		beam = DefaultBeamSize
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--beam_size", strconv.Itoa(beam),
	)

	if lang := language.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	computeType := s.cfg.ComputeType
	if computeType == "" {
		computeType = DefaultComputeType
	}
	device := CPUDevice
	if cuda {
		device = CUDADevice
	}
	return append(args, "--device", device, "--compute_type", computeType)
}
