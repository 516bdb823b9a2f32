package captions

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Palette holds the two inline colours of the highlight effect.
type Palette struct {
	Spoken   Color
	Unspoken Color
}

// MarkupEvent is one encoded cue: millisecond bounds plus override-tagged
// text ready for a dialogue line.
type MarkupEvent struct {
	StartMs int
	EndMs   int
	Text    string
}

var markupEscaper = strings.NewReplacer("{", "(", "}", ")")

// EncodeCue renders a cue as karaoke markup. Each word is upper-cased. The
// first word is shown in the spoken colour immediately when it starts at or
// before the cue start. Every other word starts in the unspoken colour and
// switches to the spoken colour at its offset from the cue start via an
// instantaneous \t transition. Offsets are truncated to whole milliseconds.
func EncodeCue(cue Cue, palette Palette) MarkupEvent {
	startMs := toMillis(cue.Start())
	event := MarkupEvent{StartMs: startMs, EndMs: toMillis(cue.End())}

	upper := cases.Upper(language.Und)
	spoken := palette.Spoken.Inline()
	unspoken := palette.Unspoken.Inline()

	var b strings.Builder
	for i, w := range cue.Words {
		text := markupEscaper.Replace(upper.String(w.Text))
		rel := toMillis(w.Start) - startMs
		if i == 0 && rel <= 0 {
			b.WriteString(`{\c`)
			b.WriteString(spoken)
			b.WriteString(`}`)
		} else {
			offset := strconv.Itoa(rel)
			b.WriteString(`{\c`)
			b.WriteString(unspoken)
			b.WriteString(`\t(`)
			b.WriteString(offset)
			b.WriteByte(',')
			b.WriteString(offset)
			b.WriteString(`,\c`)
			b.WriteString(spoken)
			b.WriteString(`)}`)
		}
		b.WriteString(text)
		b.WriteByte(' ')
	}
	event.Text = strings.TrimSpace(b.String())
	return event
}

// EncodeCues encodes every cue with the palette derived from style.
func EncodeCues(cues []Cue, style StyleSpec) []MarkupEvent {
	palette := style.Palette()
	events := make([]MarkupEvent, 0, len(cues))
	for _, cue := range cues {
		events = append(events, EncodeCue(cue, palette))
	}
	return events
}

func toMillis(seconds float64) int {
	return int(math.Floor(seconds * 1000))
}
