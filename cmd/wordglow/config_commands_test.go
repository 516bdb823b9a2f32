package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t, "")
	target := filepath.Join(env.baseDir, "fresh", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transcription]") {
		t.Fatalf("sample missing transcription section:\n%s", data)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t, "[transcription]\nengine = \"whisperx\"\n")
	out, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Transcription engine: whisperx")
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsUnknownKeys(t *testing.T) {
	env := setupCLITestEnv(t, "[captions]\nmax_words = 3\n")
	if _, _, err := env.run(t, "config", "validate"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestConfigValidateRequiresOpenAIKey(t *testing.T) {
	env := setupCLITestEnv(t, "[transcription]\nengine = \"openai\"\n")
	_, _, err := env.run(t, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "openai_api_key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
