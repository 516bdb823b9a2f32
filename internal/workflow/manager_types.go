package workflow

import (
	"log/slog"

	"wordglow/internal/queue"
	"wordglow/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Transcriber stage.Handler
	Captioner   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// loggerAware handlers accept the job-scoped logger before each run.
type loggerAware interface {
	SetLogger(*slog.Logger)
}
