package config

const (
	defaultConfigPath        = "~/.config/wordglow/config.toml"
	projectConfigName        = "wordglow.toml"
	defaultStagingDir        = "~/.local/share/wordglow/staging"
	defaultOutputDir         = "~/.local/share/wordglow/output"
	defaultLogDir            = "~/.local/share/wordglow/logs"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultEngine            = EngineWhisperX
	defaultWhisperXModel     = "base"
	defaultOpenAIModel       = "whisper-1"
	defaultDevice            = "cpu"
	defaultComputeType       = "int8"
	defaultBeamSize          = 5
	defaultTimeoutSeconds    = 1800
	defaultMaxWordsPerChunk  = 5
	defaultQueuePollInterval = 5
	defaultHeartbeatInterval = 15
	defaultHeartbeatTimeout  = 120
	defaultJobTimeout        = 3600
	defaultNtfyTimeout       = 10
)

// Transcription engines.
const (
	EngineWhisperX = "whisperx"
	EngineOpenAI   = "openai"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Transcription: Transcription{
			Engine:         defaultEngine,
			Device:         defaultDevice,
			ComputeType:    defaultComputeType,
			BeamSize:       defaultBeamSize,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Captions: Captions{
			MaxWordsPerChunk: defaultMaxWordsPerChunk,
		},
		Style: Style{
			FontName:       "Jumper",
			FontSize:       22,
			Bold:           true,
			PrimaryColor:   "&H00C8C8C8",
			SecondaryColor: "&H0000FFFF",
			OutlineColor:   "&H00000000",
			BackColor:      "&H64000000",
			Outline:        2,
			Shadow:         1,
			Alignment:      2,
			MarginL:        20,
			MarginR:        20,
			MarginV:        45,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			HeartbeatInterval: defaultHeartbeatInterval,
			HeartbeatTimeout:  defaultHeartbeatTimeout,
			JobTimeout:        defaultJobTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
