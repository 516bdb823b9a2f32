package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"wordglow/internal/captions"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Transcription selects and tunes the speech recognition engine.
type Transcription struct {
	Engine         string `toml:"engine"`
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	ComputeType    string `toml:"compute_type"`
	Language       string `toml:"language"`
	BeamSize       int    `toml:"beam_size"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	OpenAIBaseURL  string `toml:"openai_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Captions controls cue grouping and side outputs.
type Captions struct {
	MaxWordsPerChunk int  `toml:"max_words_per_chunk"`
	SaveJSON         bool `toml:"save_json"`
}

// Style mirrors captions.StyleSpec with colours kept in their ASS text form.
type Style struct {
	FontName       string  `toml:"font_name"`
	FontSize       float64 `toml:"font_size"`
	Bold           bool    `toml:"bold"`
	PrimaryColor   string  `toml:"primary_color"`
	SecondaryColor string  `toml:"secondary_color"`
	OutlineColor   string  `toml:"outline_color"`
	BackColor      string  `toml:"back_color"`
	Outline        float64 `toml:"outline"`
	Shadow         float64 `toml:"shadow"`
	Alignment      int     `toml:"alignment"`
	MarginL        int     `toml:"margin_l"`
	MarginR        int     `toml:"margin_r"`
	MarginV        int     `toml:"margin_v"`
}

// Workflow contains daemon timing, in seconds.
type Workflow struct {
	QueuePollInterval int `toml:"queue_poll_interval"`
	HeartbeatInterval int `toml:"heartbeat_interval"`
	HeartbeatTimeout  int `toml:"heartbeat_timeout"`
	JobTimeout        int `toml:"job_timeout"`
}

// Notifications configures ntfy delivery. An empty topic disables it.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for wordglow.
//
// Configuration sections by subsystem:
//   - Paths: staging, output and log directories
//   - Transcription: engine selection and model tuning
//   - Captions: cue size and transcript JSON output
//   - Style: the subtitle look
//   - Workflow: daemon polling intervals and timeouts
//   - Notifications: ntfy topic for job events
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Captions      Captions      `toml:"captions"`
	Style         Style         `toml:"style"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the staging, output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StyleSpec converts the [style] section into the caption style value.
func (c *Config) StyleSpec() (captions.StyleSpec, error) {
	s := c.Style
	spec := captions.StyleSpec{
		FontName:  strings.TrimSpace(s.FontName),
		FontSize:  s.FontSize,
		Bold:      s.Bold,
		Outline:   s.Outline,
		Shadow:    s.Shadow,
		Alignment: s.Alignment,
		MarginL:   s.MarginL,
		MarginR:   s.MarginR,
		MarginV:   s.MarginV,
	}
	colors := []struct {
		field string
		value string
		dst   *captions.Color
	}{
		{"style.primary_color", s.PrimaryColor, &spec.PrimaryColor},
		{"style.secondary_color", s.SecondaryColor, &spec.SecondaryColor},
		{"style.outline_color", s.OutlineColor, &spec.OutlineColor},
		{"style.back_color", s.BackColor, &spec.BackColor},
	}
	for _, entry := range colors {
		parsed, err := captions.ParseColor(entry.value)
		if err != nil {
			return captions.StyleSpec{}, &captions.ConfigurationError{Field: entry.field, Value: entry.value, Reason: err.Error()}
		}
		*entry.dst = parsed
	}
	if err := spec.Validate(); err != nil {
		return captions.StyleSpec{}, fmt.Errorf("style: %w", err)
	}
	return spec, nil
}

// QueueDBPath is the sqlite database backing the job queue.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.LogDir, "queue.db")
}

// LockPath is the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "wordglow.lock")
}

// PIDPath records the process id of the running daemon.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.LogDir, "wordglow.pid")
}

// LogPath is the daemon log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "wordglow.log")
}

// TranscriptionTimeout bounds a single engine invocation.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
