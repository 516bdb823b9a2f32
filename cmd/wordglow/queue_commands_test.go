package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"wordglow/internal/config"
	"wordglow/internal/queue"
	"wordglow/internal/testsupport"
	"wordglow/internal/transcript"
)

func openEnvStore(t *testing.T, env *cliTestEnv) (*config.Config, *queue.Store) {
	t.Helper()
	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg, testsupport.MustOpenStore(t, cfg)
}

func TestQueueAddListShow(t *testing.T) {
	env := setupCLITestEnv(t, "")
	first := env.writeFile(t, "first.mp3", "first audio")
	second := env.writeFile(t, "second.flac", "second audio")

	out, _, err := env.run(t, "queue", "add", first, second)
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	requireContains(t, out, "Queued job #1 (first.mp3)")
	requireContains(t, out, "Queued job #2 (second.flac)")

	out, _, err = env.run(t, "queue", "add", first)
	if err != nil {
		t.Fatalf("queue add duplicate: %v", err)
	}
	requireContains(t, out, "Skipped first.mp3: already queued as job #1 (pending)")

	out, _, err = env.run(t, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "first.mp3")
	requireContains(t, out, "second.flac")
	requireContains(t, out, "pending")

	out, _, err = env.run(t, "queue", "list", "--status", "completed")
	if err != nil {
		t.Fatalf("queue list filtered: %v", err)
	}
	requireContains(t, out, "Queue is empty")

	out, _, err = env.run(t, "queue", "show", "1")
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, "Job #1")
	requireContains(t, out, filepath.Join(env.outputDir, "first.ass"))
}

func TestQueueAddRejectsOutputWithMultipleFiles(t *testing.T) {
	env := setupCLITestEnv(t, "")
	a := env.writeFile(t, "a.mp3", "a")
	b := env.writeFile(t, "b.mp3", "b")
	if _, _, err := env.run(t, "queue", "add", a, b, "-o", filepath.Join(env.baseDir, "x.ass")); err == nil {
		t.Fatal("expected error for --output with several files")
	}
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := env.run(t, "queue", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestQueueRetryRemoveClear(t *testing.T) {
	env := setupCLITestEnv(t, "")
	cfg, store := openEnvStore(t, env)
	ctx := context.Background()

	failed := testsupport.NewJob(t, store, cfg, "/music/failed.mp3", "fp-failed")
	failed.SetFailed(queue.StatusFailed, "boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatal(err)
	}
	done := testsupport.NewJob(t, store, cfg, "/music/done.mp3", "fp-done")
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatal(err)
	}
	busy := testsupport.NewJob(t, store, cfg, "/music/busy.mp3", "fp-busy")
	busy.Status = queue.StatusTranscribing
	if err := store.Update(ctx, busy); err != nil {
		t.Fatal(err)
	}

	out, _, err := env.run(t, "queue", "retry")
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retrying 1 job(s)")
	out, _, _ = env.run(t, "queue", "retry")
	requireContains(t, out, "No failed jobs to retry")

	out, _, err = env.run(t, "queue", "remove", "3", "42")
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Job 3 is transcribing")
	requireContains(t, out, "Job 42 not found")

	out, _, err = env.run(t, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 completed job(s)")

	if _, _, err := env.run(t, "queue", "clear", "--all", "--failed"); err == nil {
		t.Fatal("expected error for conflicting clear flags")
	}

	out, _, err = env.run(t, "queue", "remove", "1")
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Removed job 1")
}

func TestQueueRunCaptionsTranscribedJob(t *testing.T) {
	env := setupCLITestEnv(t, "[transcription]\nengine = \"openai\"\nopenai_api_key = \"sk-test\"\n")
	cfg, store := openEnvStore(t, env)
	ctx := context.Background()

	input := env.writeFile(t, "words.json", wordsJSON)
	tr, err := transcript.Load(input)
	if err != nil {
		t.Fatal(err)
	}
	transcriptPath := filepath.Join(env.stagingDir, "job-1", "transcript.json")
	if err := os.MkdirAll(filepath.Dir(transcriptPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := transcript.Save(transcriptPath, tr); err != nil {
		t.Fatal(err)
	}

	job := testsupport.NewJob(t, store, cfg, filepath.Join(env.baseDir, "song.mp3"), "fp-song")
	job.Status = queue.StatusTranscribed
	job.TranscriptPath = transcriptPath
	if err := store.Update(ctx, job); err != nil {
		t.Fatal(err)
	}

	out, _, err := env.run(t, "queue", "run")
	if err != nil {
		t.Fatalf("queue run: %v", err)
	}
	requireContains(t, out, "Job #1")

	got, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", got.Status, got.ErrorMessage)
	}
	data, err := os.ReadFile(got.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "WORLD.") {
		t.Fatalf("unexpected output:\n%s", data)
	}

	out, _, err = env.run(t, "queue", "run")
	if err != nil {
		t.Fatalf("queue run on empty queue: %v", err)
	}
	requireContains(t, out, "No jobs waiting")
}

func TestQueueRunRefusesWhileDaemonHoldsLock(t *testing.T) {
	env := setupCLITestEnv(t, "")
	cfg, _ := openEnvStore(t, env)

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = lock.Unlock() }()

	_, _, err = env.run(t, "queue", "run")
	if err == nil || !strings.Contains(err.Error(), "daemon is running") {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestQueueRunRejectsFinishedJob(t *testing.T) {
	env := setupCLITestEnv(t, "")
	cfg, store := openEnvStore(t, env)
	job := testsupport.NewJob(t, store, cfg, "/music/done.mp3", "fp")
	job.Status = queue.StatusCompleted
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	_, _, err := env.run(t, "queue", "run", "1")
	if err == nil || !strings.Contains(err.Error(), "queue retry 1") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestQueueHealth(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("uvx", "ffmpeg"))
	env := setupCLITestEnv(t, "")

	out, _, err := env.run(t, "queue", "health")
	if err != nil {
		t.Fatalf("queue health: %v\n%s", err, out)
	}
	requireContains(t, out, "Database exists: yes")
	requireContains(t, out, "Integrity check: yes")
	requireContains(t, out, "Jobs: 0 total")
	requireContains(t, out, "uvx")
}
