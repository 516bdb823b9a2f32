package captions

import (
	"strconv"
	"strings"

	"wordglow/internal/transcript"
)

// DefaultMaxWordsPerChunk is the cue size used when none is configured.
const DefaultMaxWordsPerChunk = 5

// Cue is a contiguous run of words rendered as one subtitle event.
type Cue struct {
	Words []transcript.Word
}

// Start is the first word's start time in seconds.
func (c Cue) Start() float64 {
	if len(c.Words) == 0 {
		return 0
	}
	return c.Words[0].Start
}

// End is the last word's end time in seconds.
func (c Cue) End() float64 {
	if len(c.Words) == 0 {
		return 0
	}
	return c.Words[len(c.Words)-1].End
}

// Text joins the cue words with single spaces.
func (c Cue) Text() string {
	parts := make([]string, len(c.Words))
	for i, w := range c.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// BuildChunks groups an ordered word sequence into cues. A cue closes after
// a word ending in '.', '!' or '?', or once it holds maxWords words. Any
// remainder becomes the final cue. Cues preserve input order and cover every
// word exactly once. An empty word sequence is an EmptyInputError.
func BuildChunks(words []transcript.Word, maxWords int) ([]Cue, error) {
	if maxWords < 1 {
		return nil, configErr("max_words_per_chunk", strconv.Itoa(maxWords), "must be at least 1")
	}
	if len(words) == 0 {
		return nil, &EmptyInputError{}
	}

	cues := make([]Cue, 0, len(words)/maxWords+1)
	start := 0
	for i, w := range words {
		if endsSentence(w.Text) || i-start+1 >= maxWords {
			cues = append(cues, Cue{Words: words[start : i+1 : i+1]})
			start = i + 1
		}
	}
	if start < len(words) {
		cues = append(cues, Cue{Words: words[start:len(words):len(words)]})
	}
	return cues, nil
}

func endsSentence(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
