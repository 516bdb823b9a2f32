// Package services defines shared utilities consumed by the workflow stage
// handlers and the transcription engines.
//
// Key responsibilities:
//   - Context helpers that stamp queue job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent queue statuses (failed vs review).
//
// Engine integrations live in subpackages (whisperx, openaiwhisper).
package services
