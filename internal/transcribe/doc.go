// Package transcribe selects the configured speech recognition engine and
// runs it as the first workflow stage.
//
// The Stage handler moves a job from pending to transcribed: it runs the
// engine under the transcription timeout, stores the resulting transcript as
// JSON in the job's staging directory, and records the language and word
// count on the job.
package transcribe
