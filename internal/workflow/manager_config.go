package workflow

import (
	"wordglow/internal/queue"
	"wordglow/internal/stageexec"
)

// Steps lists the configured handlers in workflow order with the statuses
// each one moves a job between.
func (set StageSet) Steps() []stageexec.Step {
	var steps []stageexec.Step
	if set.Transcriber != nil {
		steps = append(steps, stageexec.Step{
			Name:       "transcribing",
			Handler:    set.Transcriber,
			Start:      queue.StatusPending,
			Processing: queue.StatusTranscribing,
			Done:       queue.StatusTranscribed,
		})
	}
	if set.Captioner != nil {
		steps = append(steps, stageexec.Step{
			Name:       "captioning",
			Handler:    set.Captioner,
			Start:      queue.StatusTranscribed,
			Processing: queue.StatusCaptioning,
			Done:       queue.StatusCompleted,
		})
	}
	return steps
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage
	for _, step := range set.Steps() {
		stages = append(stages, pipelineStage{
			name:             step.Name,
			handler:          step.Handler,
			startStatus:      step.Start,
			processingStatus: step.Processing,
			doneStatus:       step.Done,
		})
	}

	byStart := make(map[queue.Status]pipelineStage, len(stages))
	order := make([]queue.Status, 0, len(stages))
	processing := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		byStart[stg.startStatus] = stg
		order = append(order, stg.startStatus)
		processing = append(processing, stg.processingStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = byStart
	m.statusOrder = order
	m.processingStatuses = processing
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
