// Package pipeline runs the caption job end to end: transcribe, flatten the
// words, chunk them into cues and write the karaoke subtitle document.
//
// Pipeline.Run covers a single audio file for the CLI. Stage exposes the
// caption half to the workflow manager, reading the transcript a prior
// transcription stage stored for the job.
package pipeline
