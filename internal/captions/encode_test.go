package captions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"wordglow/internal/transcript"
)

func TestEncodeCueExample(t *testing.T) {
	cue := Cue{Words: []transcript.Word{
		{Text: "hello", Start: 0.0, End: 0.4},
		{Text: "world.", Start: 0.4, End: 0.9},
	}}
	got := EncodeCue(cue, DefaultStyle().Palette())

	if got.StartMs != 0 || got.EndMs != 900 {
		t.Fatalf("bounds = %d..%d, want 0..900", got.StartMs, got.EndMs)
	}
	want := `{\c&H00FFFF&}HELLO {\c&HC8C8C8&\t(400,400,\c&H00FFFF&)}WORLD.`
	if got.Text != want {
		t.Fatalf("text =\n%s\nwant\n%s", got.Text, want)
	}
}

func TestEncodeCueOffsetsRelativeToCueStart(t *testing.T) {
	cue := Cue{Words: []transcript.Word{
		{Text: "a", Start: 2.5, End: 2.7},
		{Text: "b", Start: 2.75, End: 3.0},
		{Text: "c", Start: 3.125, End: 3.5},
	}}
	got := EncodeCue(cue, DefaultStyle().Palette())
	want := `{\c&H00FFFF&}A {\c&HC8C8C8&\t(250,250,\c&H00FFFF&)}B {\c&HC8C8C8&\t(625,625,\c&H00FFFF&)}C`
	if got.Text != want {
		t.Fatalf("text =\n%s\nwant\n%s", got.Text, want)
	}
	if got.StartMs != 2500 || got.EndMs != 3500 {
		t.Fatalf("bounds = %d..%d", got.StartMs, got.EndMs)
	}
}

func TestEncodeCueUsesPalette(t *testing.T) {
	palette := Palette{
		Spoken:   Color{R: 0xFF, G: 0x00, B: 0x00},
		Unspoken: Color{R: 0x10, G: 0x20, B: 0x30},
	}
	cue := Cue{Words: []transcript.Word{
		{Text: "one", Start: 1, End: 1.5},
		{Text: "two", Start: 1.5, End: 2},
	}}
	got := EncodeCue(cue, palette).Text
	want := `{\c&H0000FF&}ONE {\c&H302010&\t(500,500,\c&H0000FF&)}TWO`
	if got != want {
		t.Fatalf("text = %s, want %s", got, want)
	}
}

func TestEncodeCueUppercasesUnicode(t *testing.T) {
	cue := Cue{Words: []transcript.Word{{Text: "straße", Start: 0, End: 1}, {Text: "привіт", Start: 1, End: 2}}}
	got := EncodeCue(cue, DefaultStyle().Palette()).Text
	if !strings.Contains(got, "STRASSE") {
		t.Fatalf("expected full upper-casing, got %s", got)
	}
	if !strings.Contains(got, "ПРИВІТ") {
		t.Fatalf("expected cyrillic upper-casing, got %s", got)
	}
}

func TestEncodeCueNeutralisesOverrideBraces(t *testing.T) {
	cue := Cue{Words: []transcript.Word{{Text: "{x}", Start: 0, End: 1}}}
	got := EncodeCue(cue, DefaultStyle().Palette()).Text
	if got != `{\c&H00FFFF&}(X)` {
		t.Fatalf("text = %s", got)
	}
}

var transitionPattern = regexp.MustCompile(`\\t\((\d+),(\d+),`)

func TestEncodeCueTransitionOffsets(t *testing.T) {
	cues, err := BuildChunks([]transcript.Word{
		{Text: "we", Start: 10.010, End: 10.2},
		{Text: "all", Start: 10.25, End: 10.5},
		{Text: "live", Start: 10.6, End: 10.9},
		{Text: "in", Start: 11.0, End: 11.1},
		{Text: "a", Start: 11.125, End: 11.2},
		{Text: "yellow", Start: 11.5, End: 12.0},
	}, 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, cue := range cues {
		event := EncodeCue(cue, DefaultStyle().Palette())
		matches := transitionPattern.FindAllStringSubmatch(event.Text, -1)
		if len(matches) != len(cue.Words)-1 {
			t.Fatalf("expected %d transitions, got %d in %s", len(cue.Words)-1, len(matches), event.Text)
		}
		for i, m := range matches {
			word := cue.Words[i+1]
			want := toMillis(word.Start) - toMillis(cue.Start())
			got, _ := strconv.Atoi(m[1])
			if got != want || m[1] != m[2] {
				t.Fatalf("word %q: transition %s,%s, want %d", word.Text, m[1], m[2], want)
			}
		}
		if !strings.HasPrefix(event.Text, fmt.Sprintf(`{\c%s}`, DefaultStyle().SecondaryColor.Inline())) {
			t.Fatalf("first word not pre-coloured: %s", event.Text)
		}
	}
}

func TestToMillisTruncates(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{0, 0},
		{0.4, 400},
		{1.2345, 1234},
		{1.2349, 1234},
		{59.9999, 59999},
	}
	for _, tt := range tests {
		if got := toMillis(tt.seconds); got != tt.want {
			t.Fatalf("toMillis(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}
