package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"wordglow/internal/config"
	"wordglow/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues a job for audioPath with an output next to it under the
// config's output directory.
func NewJob(t testing.TB, store *queue.Store, cfg *config.Config, audioPath, fingerprint string) *queue.Job {
	t.Helper()

	base := filepath.Base(audioPath)
	output := filepath.Join(cfg.Paths.OutputDir, base[:len(base)-len(filepath.Ext(base))]+".ass")
	job, err := store.NewJob(context.Background(), queue.JobRequest{
		AudioPath:   audioPath,
		OutputPath:  output,
		Fingerprint: fingerprint,
	})
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}
