package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"wordglow/internal/config"
	"wordglow/internal/deps"
	"wordglow/internal/services"
	"wordglow/internal/services/openaiwhisper"
	"wordglow/internal/services/whisperx"
)

// CheckOpenAI verifies that the transcription API is reachable and the key
// is accepted. It makes a single attempt with a 30-second timeout.
func CheckOpenAI(ctx context.Context, apiKey, baseURL string) Result {
	const name = "OpenAI transcription"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	svc := openaiwhisper.NewService(openaiwhisper.Config{APIKey: apiKey, BaseURL: baseURL})
	if err := svc.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the configured engine
// needs. Both the daemon and the CLI health command use it.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil || cfg.Transcription.Engine != config.EngineWhisperX {
		return nil
	}
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "Required for WhisperX transcription",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Used by WhisperX to decode audio",
		},
		{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "Reports GPU availability for device = \"cuda\"",
			Optional:    true,
		},
	})
}

func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, services.ErrTimeout) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
