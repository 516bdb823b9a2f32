// Package transcript holds the word-timed speech recognition model shared by
// the transcription engines and the caption builder, plus its JSON form.
package transcript
