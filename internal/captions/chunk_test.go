package captions

import (
	"errors"
	"fmt"
	"testing"

	"wordglow/internal/transcript"
)

func words(texts ...string) []transcript.Word {
	out := make([]transcript.Word, len(texts))
	for i, text := range texts {
		start := float64(i) * 0.5
		out[i] = transcript.Word{Text: text, Start: start, End: start + 0.4, Confidence: 0.9}
	}
	return out
}

func cueTexts(cues []Cue) [][]string {
	out := make([][]string, len(cues))
	for i, cue := range cues {
		for _, w := range cue.Words {
			out[i] = append(out[i], w.Text)
		}
	}
	return out
}

func TestBuildChunks(t *testing.T) {
	tests := []struct {
		name     string
		input    []transcript.Word
		maxWords int
		want     [][]string
	}{
		{
			name:     "terminal period closes cue",
			input:    words("HELLO", "WORLD.", "NEXT"),
			maxWords: 5,
			want:     [][]string{{"HELLO", "WORLD."}, {"NEXT"}},
		},
		{
			name:     "cap closes cue",
			input:    words("one", "two", "three", "four", "five", "six"),
			maxWords: 5,
			want:     [][]string{{"one", "two", "three", "four", "five"}, {"six"}},
		},
		{
			name:     "cap and punctuation on same word close once",
			input:    words("one", "two", "three", "four", "five!", "six"),
			maxWords: 5,
			want:     [][]string{{"one", "two", "three", "four", "five!"}, {"six"}},
		},
		{
			name:     "single word cap with punctuation",
			input:    words("done?"),
			maxWords: 1,
			want:     [][]string{{"done?"}},
		},
		{
			name:     "question and exclamation",
			input:    words("why?", "because!", "ok"),
			maxWords: 5,
			want:     [][]string{{"why?"}, {"because!"}, {"ok"}},
		},
		{
			name:     "trailing whitespace ignored for punctuation",
			input:    words("end. ", "start"),
			maxWords: 5,
			want:     [][]string{{"end. "}, {"start"}},
		},
		{
			name:     "commas do not close cue",
			input:    words("well,", "maybe", "not"),
			maxWords: 5,
			want:     [][]string{{"well,", "maybe", "not"}},
		},
		{
			name:     "cap of one",
			input:    words("a", "b", "c"),
			maxWords: 1,
			want:     [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:     "final word closes with punctuation leaves no remainder",
			input:    words("last", "one."),
			maxWords: 5,
			want:     [][]string{{"last", "one."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cues, err := BuildChunks(tt.input, tt.maxWords)
			if err != nil {
				t.Fatalf("BuildChunks: %v", err)
			}
			got := cueTexts(cues)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("cues = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildChunksPartitionsInput(t *testing.T) {
	texts := []string{"a", "b.", "c", "d", "e", "f", "g", "h!", "i", "j", "k", "l?", "m"}
	input := words(texts...)
	for maxWords := 1; maxWords <= len(texts)+1; maxWords++ {
		cues, err := BuildChunks(input, maxWords)
		if err != nil {
			t.Fatalf("max=%d: %v", maxWords, err)
		}
		var flat []transcript.Word
		for i, cue := range cues {
			if len(cue.Words) == 0 {
				t.Fatalf("max=%d: cue %d is empty", maxWords, i)
			}
			if len(cue.Words) > maxWords {
				t.Fatalf("max=%d: cue %d has %d words", maxWords, i, len(cue.Words))
			}
			if i < len(cues)-1 {
				last := cue.Words[len(cue.Words)-1]
				if len(cue.Words) != maxWords && !endsSentence(last.Text) {
					t.Fatalf("max=%d: cue %d closed without cap or punctuation", maxWords, i)
				}
			}
			flat = append(flat, cue.Words...)
		}
		if len(flat) != len(input) {
			t.Fatalf("max=%d: got %d words, want %d", maxWords, len(flat), len(input))
		}
		for i := range input {
			if flat[i] != input[i] {
				t.Fatalf("max=%d: word %d = %+v, want %+v", maxWords, i, flat[i], input[i])
			}
		}
	}
}

func TestBuildChunksErrors(t *testing.T) {
	if _, err := BuildChunks(nil, 5); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	_, err := BuildChunks(words("a"), 0)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "max_words_per_chunk" {
		t.Fatalf("expected max_words_per_chunk field, got %#v", err)
	}
}

func TestCueBounds(t *testing.T) {
	cue := Cue{Words: []transcript.Word{
		{Text: "HELLO", Start: 0, End: 0.4},
		{Text: "WORLD.", Start: 0.4, End: 0.9},
	}}
	if cue.Start() != 0 || cue.End() != 0.9 {
		t.Fatalf("bounds = %v..%v", cue.Start(), cue.End())
	}
	if cue.Text() != "HELLO WORLD." {
		t.Fatalf("text = %q", cue.Text())
	}
	if (Cue{}).Start() != 0 || (Cue{}).End() != 0 {
		t.Fatal("empty cue should have zero bounds")
	}
}
