package openaiwhisper

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"wordglow/internal/language"
	"wordglow/internal/services"
	"wordglow/internal/transcript"
)

// DefaultModel is the hosted Whisper model.
const DefaultModel = openai.Whisper1

// Config captures credentials and request options.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	// HTTPClient overrides the transport (tests, proxies).
	HTTPClient *http.Client
}

// Service performs transcription against the OpenAI API.
type Service struct {
	cfg    Config
	client *openai.Client
}

// NewService builds a client from cfg.
func NewService(cfg Config) *Service {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	return &Service{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

// Name identifies the engine in logs and job records.
func (s *Service) Name() string {
	return "openai"
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Transcribe uploads audioPath and converts the verbose response into a
// transcript. workDir is unused; the API returns the result inline.
func (s *Service) Transcribe(ctx context.Context, audioPath, _ string) (transcript.Transcript, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return transcript.Transcript{}, services.Wrap(services.ErrConfiguration, "transcribing", "openai", "api key not configured", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transcript.Transcript{}, services.Wrap(services.ErrNotFound, "transcribing", "openai", "audio file missing", err)
		}
		return transcript.Transcript{}, services.Wrap(services.ErrTransient, "transcribing", "openai", "stat audio", err)
	}

	req := openai.AudioRequest{
		Model:    s.Model(),
		FilePath: audioPath,
		Language: language.ToISO2(s.cfg.Language),
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	}
	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return transcript.Transcript{}, classify(ctx, err)
	}
	return fromResponse(resp, s.cfg.Language), nil
}

// HealthCheck lists the models visible to the key, which confirms the
// endpoint is reachable and the credentials are accepted.
func (s *Service) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "transcribing", "openai", "api key not configured", nil)
	}
	if _, err := s.client.ListModels(ctx); err != nil {
		return classify(ctx, err)
	}
	return nil
}

func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrTimeout, "transcribing", "openai", "request interrupted", ctxErr)
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "transcribing", "openai", "credentials rejected", err)
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
		return services.Wrap(services.ErrValidation, "transcribing", "openai", "audio rejected", err)
	case status == http.StatusTooManyRequests || status >= 500:
		return services.Wrap(services.ErrTransient, "transcribing", "openai", "service unavailable", err)
	default:
		return services.Wrap(services.ErrExternalTool, "transcribing", "openai", "transcription request failed", err)
	}
}

// fromResponse regroups the flat word list into the response segments. A
// word belongs to the first segment whose end lies after the word's start;
// words past the final segment attach to it.
func fromResponse(resp openai.AudioResponse, hint string) transcript.Transcript {
	out := transcript.Transcript{Language: language.ToISO2(resp.Language)}
	if out.Language == "" {
		out.Language = language.ToISO2(hint)
	}

	words := make([]transcript.Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, transcript.Word{Text: w.Word, Start: w.Start, End: w.End})
	}

	if len(resp.Segments) == 0 {
		if len(words) == 0 {
			return out
		}
		out.Segments = []transcript.Segment{{
			Start: words[0].Start,
			End:   words[len(words)-1].End,
			Text:  strings.TrimSpace(resp.Text),
			Words: words,
		}}
		return out
	}

	out.Segments = make([]transcript.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		out.Segments[i] = transcript.Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)}
	}
	idx := 0
	for _, w := range words {
		for idx < len(out.Segments)-1 && w.Start >= out.Segments[idx].End {
			idx++
		}
		out.Segments[idx].Words = append(out.Segments[idx].Words, w)
	}
	return out
}
