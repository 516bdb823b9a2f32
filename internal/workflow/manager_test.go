package workflow_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"wordglow/internal/config"
	"wordglow/internal/logging"
	"wordglow/internal/notifications"
	"wordglow/internal/queue"
	"wordglow/internal/services"
	"wordglow/internal/stage"
	"wordglow/internal/testsupport"
	"wordglow/internal/workflow"
)

type fakeStage struct {
	name    string
	execute func(context.Context, *queue.Job) error

	mu       sync.Mutex
	calls    int
	loggerOK bool
}

func (f *fakeStage) Prepare(_ context.Context, job *queue.Job) error {
	job.SetProgress(f.name, "preparing")
	return nil
}

func (f *fakeStage) Execute(ctx context.Context, job *queue.Job) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, job)
	}
	return nil
}

func (f *fakeStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(f.name)
}

func (f *fakeStage) SetLogger(logger *slog.Logger) {
	f.mu.Lock()
	f.loggerOK = logger != nil
	f.mu.Unlock()
}

func (f *fakeStage) hasLogger() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggerOK
}

func (f *fakeStage) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) has(event notifications.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 60
	cfg.Workflow.JobTimeout = 30
	return cfg
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if job != nil && job.Status == want {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	job, _ := store.GetByID(context.Background(), id)
	t.Fatalf("job %d did not reach %s (last %+v)", id, want, job)
	return nil
}

func startManager(t *testing.T, cfg *config.Config, store *queue.Store, set workflow.StageSet, notifier notifications.Service) *workflow.Manager {
	t.Helper()
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(set)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)
	return mgr
}

func TestManagerRunsJobThroughBothStages(t *testing.T) {
	cfg := newTestConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, cfg, "/music/song.mp3", "fp-1")

	transcriber := &fakeStage{name: "transcribing", execute: func(_ context.Context, j *queue.Job) error {
		j.TranscriptPath = "/staging/job-1/transcript.json"
		j.WordCount = 3
		return nil
	}}
	captioner := &fakeStage{name: "captioning", execute: func(_ context.Context, j *queue.Job) error {
		if j.TranscriptPath == "" {
			return errors.New("transcript path not carried between stages")
		}
		j.CueCount = 2
		return nil
	}}
	notifier := &recordingNotifier{}
	mgr := startManager(t, cfg, store, workflow.StageSet{Transcriber: transcriber, Captioner: captioner}, notifier)

	done := waitForStatus(t, store, job.ID, queue.StatusCompleted)
	if done.CueCount != 2 || done.WordCount != 3 {
		t.Fatalf("stage results not persisted: %+v", done)
	}
	if done.LastHeartbeat != nil {
		t.Fatal("heartbeat should be cleared after completion")
	}
	if transcriber.callCount() != 1 || captioner.callCount() != 1 {
		t.Fatalf("unexpected call counts %d/%d", transcriber.callCount(), captioner.callCount())
	}
	if !transcriber.hasLogger() {
		t.Fatal("expected stage logger to be injected")
	}

	deadline := time.Now().Add(5 * time.Second)
	for !notifier.has(notifications.EventQueueCompleted) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	for _, event := range []notifications.Event{notifications.EventQueueStarted, notifications.EventJobCompleted, notifications.EventQueueCompleted} {
		if !notifier.has(event) {
			t.Fatalf("expected %s notification", event)
		}
	}

	status := mgr.Status(context.Background())
	if !status.Running || len(status.StageHealth) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.LastJob == nil || status.LastJob.ID != job.ID {
		t.Fatalf("expected last job %d, got %+v", job.ID, status.LastJob)
	}
}

func TestManagerClassifiesFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want queue.Status
	}{
		{"validation goes to review", services.Wrap(services.ErrValidation, "transcribing", "execute", "no speech", nil), queue.StatusReview},
		{"tool crash fails", services.Wrap(services.ErrExternalTool, "transcribing", "execute", "uvx exited 1", nil), queue.StatusFailed},
		{"plain error fails", errors.New("disk full"), queue.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			store := testsupport.MustOpenStore(t, cfg)
			job := testsupport.NewJob(t, store, cfg, "/music/song.mp3", "fp")

			failing := &fakeStage{name: "transcribing", execute: func(context.Context, *queue.Job) error { return tt.err }}
			captioner := &fakeStage{name: "captioning"}
			notifier := &recordingNotifier{}
			startManager(t, cfg, store, workflow.StageSet{Transcriber: failing, Captioner: captioner}, notifier)

			got := waitForStatus(t, store, job.ID, tt.want)
			if got.ErrorMessage == "" {
				t.Fatal("expected error message to be recorded")
			}
			if captioner.callCount() != 0 {
				t.Fatal("captioning must not run after a failed transcription")
			}
			deadline := time.Now().Add(5 * time.Second)
			for !notifier.has(notifications.EventError) && time.Now().Before(deadline) {
				time.Sleep(20 * time.Millisecond)
			}
			if !notifier.has(notifications.EventError) {
				t.Fatal("expected error notification")
			}
		})
	}
}

func TestManagerAppliesJobTimeout(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Workflow.JobTimeout = 1
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, cfg, "/music/slow.mp3", "fp-slow")

	slow := &fakeStage{name: "transcribing", execute: func(ctx context.Context, _ *queue.Job) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	startManager(t, cfg, store, workflow.StageSet{Transcriber: slow}, nil)

	got := waitForStatus(t, store, job.ID, queue.StatusFailed)
	if got.ProgressStage != "Failed" {
		t.Fatalf("unexpected progress stage %q", got.ProgressStage)
	}
}

func TestManagerStopRollsBackInterruptedJob(t *testing.T) {
	cfg := newTestConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, cfg, "/music/long.mp3", "fp-long")

	started := make(chan struct{})
	blocking := &fakeStage{name: "transcribing", execute: func(ctx context.Context, _ *queue.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)
	mgr.ConfigureStages(workflow.StageSet{Transcriber: blocking})
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatal("stage never started")
	}
	mgr.Stop()

	got, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("expected rollback to pending, got %s", got.Status)
	}
	if got.ProgressMessage != queue.DaemonStopReason {
		t.Fatalf("unexpected progress message %q", got.ProgressMessage)
	}
	if mgr.Status(context.Background()).Running {
		t.Fatal("manager should report stopped")
	}
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := newTestConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManager(cfg, store, nil)
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error without stages")
	}
}

func TestStageSetStepsOrder(t *testing.T) {
	set := workflow.StageSet{Transcriber: &fakeStage{name: "t"}, Captioner: &fakeStage{name: "c"}}
	steps := set.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Start != queue.StatusPending || steps[0].Done != steps[1].Start || steps[1].Done != queue.StatusCompleted {
		t.Fatalf("steps do not chain: %+v", steps)
	}

	only := workflow.StageSet{Captioner: &fakeStage{name: "c"}}.Steps()
	if len(only) != 1 || only[0].Name != "captioning" {
		t.Fatalf("unexpected steps for captioner only: %+v", only)
	}
}
