package main

import (
	"strings"
	"testing"

	"wordglow/internal/queue"
)

func TestProgressText(t *testing.T) {
	tests := []struct {
		stage, message, want string
	}{
		{"transcribing", "uvx running", "transcribing: uvx running"},
		{"captioning", "captioning", "captioning"},
		{"", "Daemon stopped", "Daemon stopped"},
		{"", "", ""},
	}
	for _, tt := range tests {
		job := &queue.Job{ProgressStage: tt.stage, ProgressMessage: tt.message}
		if got := progressText(job); got != tt.want {
			t.Fatalf("progressText(%q, %q) = %q, want %q", tt.stage, tt.message, got, tt.want)
		}
	}
}

func TestBuildQueueListRowsAndTable(t *testing.T) {
	jobs := []*queue.Job{
		{ID: 7, AudioPath: "/music/song.mp3", Status: queue.StatusCompleted, CueCount: 12},
		{ID: 8, AudioPath: "/music/other.mp3", Status: queue.StatusPending},
	}
	rows := buildQueueListRows(jobs)
	if rows[0][0] != "7" || rows[0][1] != "song.mp3" || rows[0][4] != "12" || rows[0][5] != "-" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][4] != "" {
		t.Fatalf("expected empty cue count, got %q", rows[1][4])
	}

	table := renderTable([]string{"ID", "Audio", "Status", "Progress", "Cues", "Updated"}, rows, nil, 48)
	if !strings.Contains(table, "song.mp3") || !strings.HasSuffix(table, "\n") {
		t.Fatalf("unexpected table:\n%s", table)
	}
}

func TestShortFingerprint(t *testing.T) {
	if got := shortFingerprint("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("unexpected fingerprint %q", got)
	}
	if got := shortFingerprint(""); got != "-" {
		t.Fatalf("expected dash, got %q", got)
	}
}

func TestFormatQueueStats(t *testing.T) {
	got := formatQueueStats(queue.HealthSummary{Total: 5, Pending: 2, Processing: 1, Completed: 1, Failed: 1})
	want := "5 total: 2 pending, 1 processing, 1 completed, 1 failed, 0 review"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
