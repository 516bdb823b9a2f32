package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"wordglow/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordglow.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	chunk, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last returned error: %v", err)
	}
	if len(chunk.Lines) != 2 || chunk.Lines[0] != "b" || chunk.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}
	if chunk.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", chunk.Offset)
	}

	all, err := logs.Last(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Lines) != 3 || all.Lines[0] != "a" {
		t.Fatalf("unexpected lines for large limit: %#v", all.Lines)
	}
}

func TestLastHoldsBackPartialLine(t *testing.T) {
	path := writeLog(t, "done\nhalf")
	chunk, err := logs.Last(path, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "done" || chunk.Offset != 5 {
		t.Fatalf("unexpected chunk %#v", chunk)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(" written\r\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	next, err := logs.From(path, chunk.Offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "half written" {
		t.Fatalf("unexpected continuation %#v", next.Lines)
	}
}

func TestMissingFileIsEmpty(t *testing.T) {
	chunk, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || len(chunk.Lines) != 0 || chunk.Offset != 0 {
		t.Fatalf("expected empty chunk, got %#v err=%v", chunk, err)
	}
}

func TestFromRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, "x\n")
	chunk, err := logs.From(path, 500)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "x" {
		t.Fatalf("expected re-read from start, got %#v", chunk.Lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	initial, err := logs.Last(path, 1)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, initial.Offset, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected follow lines: %#v", got)
	}
}
