// Package whisperx runs the WhisperX command line through uvx and converts its
// JSON output into a word-timed transcript.
//
// WhisperX performs forced alignment after transcription, so every word in
// its output carries start and end times. The command runner is injectable
// for tests.
package whisperx
