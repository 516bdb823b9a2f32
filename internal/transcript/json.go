package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"wordglow/internal/fileutil"
)

type wordJSON struct {
	Word        string   `json:"word"`
	Start       *float64 `json:"start,omitempty"`
	End         *float64 `json:"end,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

type segmentJSON struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Text  string     `json:"text"`
	Words []wordJSON `json:"words"`
}

type documentJSON struct {
	Language            string        `json:"language"`
	LanguageProbability float64       `json:"language_probability"`
	Segments            []segmentJSON `json:"segments"`
}

// Decode parses either a bare segment array or an object with a "segments"
// key. Word confidence is read from "probability" or, failing that, "score".
// Words missing a start inherit the previous word's end; words missing an
// end collapse to their start.
func Decode(data []byte) (Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Transcript{}, fmt.Errorf("decode transcript: empty document")
	}

	var doc documentJSON
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Segments); err != nil {
			return Transcript{}, fmt.Errorf("decode transcript: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}

	t := Transcript{
		Language:            doc.Language,
		LanguageProbability: doc.LanguageProbability,
		Segments:            make([]Segment, 0, len(doc.Segments)),
	}
	for _, raw := range doc.Segments {
		seg := Segment{Start: raw.Start, End: raw.End, Text: raw.Text}
		cursor := raw.Start
		for _, w := range raw.Words {
			word := Word{Text: w.Word, Start: cursor}
			if w.Start != nil {
				word.Start = *w.Start
			}
			word.End = word.Start
			if w.End != nil {
				word.End = *w.End
			}
			switch {
			case w.Probability != nil:
				word.Confidence = *w.Probability
			case w.Score != nil:
				word.Confidence = *w.Score
			}
			cursor = word.End
			seg.Words = append(seg.Words, word)
		}
		t.Segments = append(t.Segments, seg)
	}
	return t, nil
}

// Encode renders the transcript as an indented object with language,
// language_probability and segments, the shape Decode reads back. Non-ASCII
// text is kept as-is.
func Encode(t Transcript) ([]byte, error) {
	out := documentJSON{
		Language:            t.Language,
		LanguageProbability: t.LanguageProbability,
		Segments:            make([]segmentJSON, 0, len(t.Segments)),
	}
	for _, seg := range t.Segments {
		raw := segmentJSON{Start: seg.Start, End: seg.End, Text: seg.Text, Words: make([]wordJSON, 0, len(seg.Words))}
		for _, w := range seg.Words {
			start, end, prob := w.Start, w.End, w.Confidence
			raw.Words = append(raw.Words, wordJSON{Word: w.Text, Start: &start, End: &end, Probability: &prob})
		}
		out.Segments = append(out.Segments, raw)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads a transcript JSON file.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript %s: %w", path, err)
	}
	t, err := Decode(data)
	if err != nil {
		return Transcript{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Save writes the transcript to path atomically.
func Save(path string, t Transcript) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", path, err)
	}
	return nil
}
