package stage

import (
	"context"

	"wordglow/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
//
// Prepare runs before the job moves into its processing status and may fill
// in fields the stage needs. Execute performs the work and records results on
// the job; the manager persists the job afterwards.
type Handler interface {
	Prepare(context.Context, *queue.Job) error
	Execute(context.Context, *queue.Job) error
	HealthCheck(context.Context) Health
}
