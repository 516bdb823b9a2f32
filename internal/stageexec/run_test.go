package stageexec_test

import (
	"context"
	"errors"
	"testing"

	"wordglow/internal/queue"
	"wordglow/internal/services"
	"wordglow/internal/stage"
	"wordglow/internal/stageexec"
	"wordglow/internal/testsupport"
)

type stubHandler struct {
	err   error
	calls int
}

func (s *stubHandler) Prepare(context.Context, *queue.Job) error { return nil }

func (s *stubHandler) Execute(_ context.Context, job *queue.Job) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	job.CueCount++
	return nil
}

func (s *stubHandler) HealthCheck(context.Context) stage.Health { return stage.Healthy("stub") }

func steps(transcribe, caption *stubHandler) []stageexec.Step {
	return []stageexec.Step{
		{Name: "transcribing", Handler: transcribe, Start: queue.StatusPending, Processing: queue.StatusTranscribing, Done: queue.StatusTranscribed},
		{Name: "captioning", Handler: caption, Start: queue.StatusTranscribed, Processing: queue.StatusCaptioning, Done: queue.StatusCompleted},
	}
}

func TestRunStepsCompletesJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, cfg, "/music/a.mp3", "fp-a")

	transcribe, caption := &stubHandler{}, &stubHandler{}
	if err := stageexec.RunSteps(context.Background(), stageexec.Options{Store: store, Job: job}, steps(transcribe, caption)); err != nil {
		t.Fatalf("RunSteps: %v", err)
	}
	if transcribe.calls != 1 || caption.calls != 1 {
		t.Fatalf("unexpected calls %d/%d", transcribe.calls, caption.calls)
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != queue.StatusCompleted || stored.CueCount != 2 {
		t.Fatalf("unexpected stored job %+v", stored)
	}
	if stored.LastHeartbeat != nil {
		t.Fatal("heartbeat should be cleared")
	}
}

func TestRunStepsResumesFromTranscribed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, cfg, "/music/b.mp3", "fp-b")
	job.Status = queue.StatusTranscribed
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	transcribe, caption := &stubHandler{}, &stubHandler{}
	if err := stageexec.RunSteps(context.Background(), stageexec.Options{Store: store, Job: job}, steps(transcribe, caption)); err != nil {
		t.Fatalf("RunSteps: %v", err)
	}
	if transcribe.calls != 0 || caption.calls != 1 {
		t.Fatalf("expected only captioning to run, got %d/%d", transcribe.calls, caption.calls)
	}
}

func TestRunStepsRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, cfg, "/music/c.mp3", "fp-c")

	stageErr := services.Wrap(services.ErrNotFound, "transcribing", "whisperx", "audio file missing", nil)
	transcribe, caption := &stubHandler{err: stageErr}, &stubHandler{}
	err := stageexec.RunSteps(context.Background(), stageexec.Options{Store: store, Job: job}, steps(transcribe, caption))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if caption.calls != 0 {
		t.Fatal("captioning must not run after failure")
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != queue.StatusReview || stored.ErrorMessage == "" {
		t.Fatalf("expected review with message, got %+v", stored)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	if err := stageexec.Run(context.Background(), stageexec.Options{StageName: "captioning"}); err == nil {
		t.Fatal("expected error without handler")
	}
}
