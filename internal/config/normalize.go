package config

import (
	"fmt"
	"os"
	"strings"

	"wordglow/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeStyle()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Engine = strings.ToLower(strings.TrimSpace(t.Engine))
	if t.Engine == "" {
		t.Engine = defaultEngine
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" {
		switch t.Engine {
		case EngineOpenAI:
			t.Model = defaultOpenAIModel
		default:
			t.Model = defaultWhisperXModel
		}
	}
	t.Device = strings.ToLower(strings.TrimSpace(t.Device))
	if t.Device == "" {
		t.Device = defaultDevice
	}
	t.ComputeType = strings.ToLower(strings.TrimSpace(t.ComputeType))
	t.Language = strings.ToLower(strings.TrimSpace(t.Language))
	if t.Language == "" {
		if value, ok := os.LookupEnv("WORDGLOW_LANGUAGE"); ok {
			t.Language = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if code, ok := language.Normalize(t.Language); ok {
		t.Language = code
	}
	t.OpenAIAPIKey = strings.TrimSpace(t.OpenAIAPIKey)
	if t.OpenAIAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			t.OpenAIAPIKey = strings.TrimSpace(value)
		}
	}
	t.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(t.OpenAIBaseURL), "/")
}

func (c *Config) normalizeStyle() {
	c.Style.FontName = strings.TrimSpace(c.Style.FontName)
	c.Style.PrimaryColor = strings.TrimSpace(c.Style.PrimaryColor)
	c.Style.SecondaryColor = strings.TrimSpace(c.Style.SecondaryColor)
	c.Style.OutlineColor = strings.TrimSpace(c.Style.OutlineColor)
	c.Style.BackColor = strings.TrimSpace(c.Style.BackColor)
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
