package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the Whisper model name (e.g., "base", "large-v3").
	Model string
	// Device is "cpu" or "cuda".
	Device string
	// ComputeType is the CTranslate2 precision ("int8", "float16", ...).
	ComputeType string
	// Language is an ISO 639-1 hint; empty enables detection.
	Language string
	BeamSize int
}

// WhisperX configuration constants.
const (
	DefaultModel       = "base"
	DefaultBeamSize    = 5
	CUDAIndexURL       = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL       = "https://pypi.org/simple"
	OutputFormat       = "json"
	SegmentResolution  = "sentence"
	CPUDevice          = "cpu"
	CUDADevice         = "cuda"
	DefaultComputeType = "int8"
)

// UVXCommand launches WhisperX in an isolated Python environment.
const UVXCommand = "uvx"
