package captions

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordglow/internal/transcript"
)

func helloWorldCues(t *testing.T) []Cue {
	t.Helper()
	cues, err := BuildChunks([]transcript.Word{
		{Text: "HELLO", Start: 0.00, End: 0.40},
		{Text: "WORLD.", Start: 0.40, End: 0.90},
		{Text: "NEXT", Start: 1.20, End: 1.50},
	}, 5)
	if err != nil {
		t.Fatalf("BuildChunks: %v", err)
	}
	return cues
}

func TestAssembleWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "subs.ass")
	result, err := Assemble(path, helloWorldCues(t), DefaultStyle())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.Cues != 2 {
		t.Fatalf("cues = %d, want 2", result.Cues)
	}
	if result.Duration != 1.5 {
		t.Fatalf("duration = %v, want 1.5", result.Duration)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != helloWorldDocument {
		t.Fatalf("document mismatch:\n%s\nwant:\n%s", got, helloWorldDocument)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.ass")
	second := filepath.Join(dir, "b.ass")
	cues := helloWorldCues(t)

	if _, err := Assemble(first, cues, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	if _, err := Assemble(second, cues, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Fatal("repeated assembly produced different bytes")
	}

	if _, err := Assemble(first, cues, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	again, _ := os.ReadFile(first)
	if !bytes.Equal(a, again) {
		t.Fatal("overwriting changed bytes")
	}
}

func TestAssembleErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Assemble(filepath.Join(dir, "empty.ass"), nil, DefaultStyle()); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "empty.ass")); !os.IsNotExist(err) {
		t.Fatal("empty input should not create a file")
	}

	bad := DefaultStyle()
	bad.FontSize = -1
	if _, err := Assemble(filepath.Join(dir, "bad.ass"), helloWorldCues(t), bad); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Assemble(filepath.Join(blocker, "out.ass"), helloWorldCues(t), DefaultStyle())
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Err == nil {
		t.Fatalf("expected wrapped cause, got %#v", err)
	}
}

func TestRepair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.ass")
	if err := os.WriteFile(path, []byte(genericDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Repair(path, DefaultStyle()); err != nil {
		t.Fatalf("Repair: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(string(data), DefaultStyle()); err != nil {
		t.Fatalf("repaired file failed verification: %v", err)
	}

	floats := strings.Replace(genericDocument,
		",0,0,0,0,100,100,0,0,1,2,1,2,20,20,20,1",
		",0,0,0,0,100.0,100.0,0.0,0.0,1,2.0,1.0,2,20,20,20,1", 1)
	floatPath := filepath.Join(t.TempDir(), "floats.ass")
	if err := os.WriteFile(floatPath, []byte(floats), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Repair(floatPath, DefaultStyle()); err != nil {
		t.Fatalf("Repair with float-formatted fields: %v", err)
	}
	data, err = os.ReadFile(floatPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ",100.0,100.0,0.0,0.0,1,2.0,1.0,2,20,20,45,1") {
		t.Fatalf("unpatched fields should keep their formatting:\n%s", data)
	}
	if err := VerifyPatched(string(data), DefaultStyle()); err != nil {
		t.Fatalf("VerifyPatched: %v", err)
	}

	if err := Repair(filepath.Join(t.TempDir(), "missing.ass"), DefaultStyle()); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO for missing file, got %v", err)
	}
}
