package config

import (
	"errors"
	"fmt"
	"net/url"

	"wordglow/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if _, err := c.StyleSpec(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	switch t.Engine {
	case EngineWhisperX, EngineOpenAI:
	default:
		return fmt.Errorf("transcription.engine: unsupported value %q (want %s or %s)", t.Engine, EngineWhisperX, EngineOpenAI)
	}
	switch t.Device {
	case "cpu", "cuda":
	default:
		return fmt.Errorf("transcription.device: unsupported value %q (want cpu or cuda)", t.Device)
	}
	switch t.ComputeType {
	case "", "int8", "int16", "float16", "float32":
	default:
		return fmt.Errorf("transcription.compute_type: unsupported value %q", t.ComputeType)
	}
	if _, ok := language.Normalize(t.Language); !ok {
		return fmt.Errorf("transcription.language: unrecognized language %q", t.Language)
	}
	if t.BeamSize < 1 {
		return errors.New("transcription.beam_size must be at least 1")
	}
	if t.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	if t.Engine == EngineOpenAI && t.OpenAIAPIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("transcription.openai_api_key is required for the openai engine. Set OPENAI_API_KEY env var or edit %s (create with 'wordglow config init')", defaultPath)
	}
	if t.OpenAIBaseURL != "" {
		parsed, err := url.Parse(t.OpenAIBaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("transcription.openai_base_url: invalid URL %q", t.OpenAIBaseURL)
		}
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.MaxWordsPerChunk < 1 {
		return fmt.Errorf("captions.max_words_per_chunk must be at least 1, got %d", c.Captions.MaxWordsPerChunk)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	if c.Workflow.JobTimeout <= 0 {
		return errors.New("workflow.job_timeout must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic: expected an http(s) URL, got %q", topic)
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
