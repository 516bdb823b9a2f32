// Package workflow advances queue jobs through the transcribing and
// captioning stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// jobs into the registered stage handlers while capturing progress and
// failure metadata. Each stage run gets its own request id, a heartbeat
// goroutine and the per-job timeout from [workflow] job_timeout. Failures are
// classified with queue.FailureStatus so bad input lands in review rather than
// failed. A job interrupted by shutdown is returned to the start of its stage.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and registering the transition in ConfigureStages.
package workflow
