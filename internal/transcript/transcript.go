package transcript

import (
	"fmt"
	"strings"
)

// Word is a single recognised token with absolute timing in seconds.
type Word struct {
	Text       string
	Start      float64
	End        float64
	Confidence float64
}

// Segment is a recognition unit as produced by the speech engine.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Words []Word
}

// Transcript is the full engine output for one audio file.
type Transcript struct {
	Language            string
	LanguageProbability float64
	Segments            []Segment
}

// Words flattens every segment into a single ordered word sequence.
// Surrounding whitespace is stripped and words with no text are dropped.
func (t Transcript) Words() []Word {
	var total int
	for _, seg := range t.Segments {
		total += len(seg.Words)
	}
	out := make([]Word, 0, total)
	for _, seg := range t.Segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			w.Text = text
			out = append(out, w)
		}
	}
	return out
}

// TimedSegments returns the segments that carry at least one word.
func (t Transcript) TimedSegments() []Segment {
	out := make([]Segment, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if len(seg.Words) == 0 {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Duration is the end time of the last segment, or zero.
func (t Transcript) Duration() float64 {
	var end float64
	for _, seg := range t.Segments {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}

// OrderViolation describes a word whose timing breaks the expected ordering.
type OrderViolation struct {
	Index  int
	Word   Word
	Reason string
}

func (v OrderViolation) String() string {
	return fmt.Sprintf("word %d %q: %s", v.Index, v.Word.Text, v.Reason)
}

// CheckOrder reports words whose start precedes the previous word or whose
// end precedes their own start. Engines occasionally emit both; callers
// decide whether to warn or reject.
func CheckOrder(words []Word) []OrderViolation {
	var violations []OrderViolation
	for i, w := range words {
		if w.End < w.Start {
			violations = append(violations, OrderViolation{Index: i, Word: w, Reason: "ends before it starts"})
		}
		if i > 0 && w.Start < words[i-1].Start {
			violations = append(violations, OrderViolation{Index: i, Word: w, Reason: "starts before the previous word"})
		}
	}
	return violations
}
