package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordglow/internal/captions"
)

const wordsJSON = `[
  {"start": 0.0, "end": 0.9, "text": "hello world.", "words": [
    {"word": " hello", "start": 0.0, "end": 0.4, "probability": 0.9},
    {"word": " world.", "start": 0.4, "end": 0.9, "probability": 0.8}
  ]},
  {"start": 1.2, "end": 1.5, "text": "next", "words": [
    {"word": " next", "start": 1.2, "end": 1.5, "probability": 0.7}
  ]}
]`

func TestRenderWritesSubtitleFromTranscript(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := env.writeFile(t, "words.json", wordsJSON)

	out, _, err := env.run(t, "render", input)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	target := filepath.Join(env.outputDir, "words.ass")
	requireContains(t, out, "Wrote "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc := string(data)
	requireContains(t, doc, "WrapStyle: 2")
	requireContains(t, doc, `{\c&H00FFFF&}HELLO {\c&HC8C8C8&\t(400,400,\c&H00FFFF&)}WORLD.`)
	if strings.Count(doc, "\nDialogue: ") != 2 {
		t.Fatalf("expected two dialogue lines:\n%s", doc)
	}
}

func TestRenderHonoursOutputFlag(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := env.writeFile(t, "words.json", wordsJSON)
	target := filepath.Join(env.baseDir, "custom", "song.ass")

	if _, _, err := env.run(t, "render", input, "-o", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected output at %s: %v", target, err)
	}
}

func TestRenderRejectsMissingInput(t *testing.T) {
	env := setupCLITestEnv(t, "")
	_, _, err := env.run(t, "render", filepath.Join(env.baseDir, "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestRepairRewritesStyle(t *testing.T) {
	env := setupCLITestEnv(t, "")
	generic := "[Script Info]\nWrapStyle: 0\nScriptType: v4.00+\n\n" +
		"[V4+ Styles]\n" +
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n" +
		"Style: Default,Arial,20,&H00FFFFFF,&H0000FFFF,&H00000000,&H64000000,0,0,0,0,100,100,0,0,1,2,1,2,20,20,20,1\n\n" +
		"[Events]\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
		"Dialogue: 0,0:00:00.00,0:00:00.90,Default,,0,0,0,,{\\c&H00FFFF&}HELLO\n"
	path := env.writeFile(t, "song.ass", generic)

	out, _, err := env.run(t, "repair", path)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	requireContains(t, out, "Repaired "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, string(data), "\nWrapStyle: 2\n")
	requireContains(t, string(data), captions.DefaultStyle().Record(captions.DefaultStyleName))
}

func TestGenerateWithOpenAIEngine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "task": "transcribe",
  "language": "english",
  "duration": 1.6,
  "text": "Hello world.",
  "segments": [{"id": 0, "start": 0.0, "end": 1.6, "text": " Hello world."}],
  "words": [
    {"word": "Hello", "start": 0.2, "end": 0.6},
    {"word": "world.", "start": 0.7, "end": 1.5}
  ]
}`))
	}))
	defer server.Close()

	env := setupCLITestEnv(t, "[transcription]\nengine = \"openai\"\nopenai_api_key = \"sk-test\"\nopenai_base_url = \""+server.URL+"/v1\"\n")
	audio := env.writeFile(t, "clip.wav", "RIFF")

	out, _, err := env.run(t, "generate", audio, "--save-json")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	target := filepath.Join(env.outputDir, "clip.ass")
	requireContains(t, out, "Wrote "+target)
	requireContains(t, out, "Transcript: "+filepath.Join(env.outputDir, "clip.json"))

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, string(data), "WORLD.")
}

func TestGenerateRejectsUnknownExtension(t *testing.T) {
	env := setupCLITestEnv(t, "")
	path := env.writeFile(t, "notes.txt", "hello")
	_, _, err := env.run(t, "generate", path)
	if err == nil || !strings.Contains(err.Error(), "unsupported audio extension") {
		t.Fatalf("expected extension error, got %v", err)
	}
}
