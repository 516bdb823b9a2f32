package captions

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const (
	styleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	eventFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
)

// WrapStyleNone disables automatic line wrapping. Only explicit \N breaks
// split a line.
const WrapStyleNone = 2

// ScriptInfo carries the [Script Info] header fields.
type ScriptInfo struct {
	WrapStyle             int
	ScaledBorderAndShadow bool
}

// Dialogue is one event line.
type Dialogue struct {
	Layer   int
	StartMs int
	EndMs   int
	Style   string
	Text    string
}

// Document is an in-memory Advanced SubStation Alpha v4+ script with a
// single named style.
type Document struct {
	Info      ScriptInfo
	StyleName string
	Style     StyleSpec
	Events    []Dialogue
}

// NewDocument builds a document that references style for every event.
func NewDocument(style StyleSpec, events []MarkupEvent) *Document {
	doc := &Document{
		Info: ScriptInfo{
			WrapStyle:             WrapStyleNone,
			ScaledBorderAndShadow: true,
		},
		StyleName: DefaultStyleName,
		Style:     style,
		Events:    make([]Dialogue, 0, len(events)),
	}
	for _, ev := range events {
		doc.Events = append(doc.Events, Dialogue{
			StartMs: ev.StartMs,
			EndMs:   ev.EndMs,
			Style:   DefaultStyleName,
			Text:    ev.Text,
		})
	}
	return doc
}

// WriteTo serialises the document. Output is deterministic for equal input.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	buf.WriteString("[Script Info]\n")
	buf.WriteString("; Script generated by wordglow\n")
	fmt.Fprintf(&buf, "WrapStyle: %d\n", d.Info.WrapStyle)
	fmt.Fprintf(&buf, "ScaledBorderAndShadow: %s\n", yesNo(d.Info.ScaledBorderAndShadow))
	buf.WriteString("Collisions: Normal\n")
	buf.WriteString("ScriptType: v4.00+\n")

	buf.WriteString("\n[V4+ Styles]\n")
	buf.WriteString(styleFormat)
	buf.WriteByte('\n')
	buf.WriteString(d.Style.Record(d.StyleName))
	buf.WriteByte('\n')

	buf.WriteString("\n[Events]\n")
	buf.WriteString(eventFormat)
	buf.WriteByte('\n')
	for _, ev := range d.Events {
		style := ev.Style
		if style == "" {
			style = d.StyleName
		}
		fmt.Fprintf(&buf, "Dialogue: %d,%s,%s,%s,,0,0,0,,%s\n",
			ev.Layer, FormatTimestamp(ev.StartMs), FormatTimestamp(ev.EndMs), style, ev.Text)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Bytes returns the serialised document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// FormatTimestamp renders milliseconds as H:MM:SS.cc, truncating to whole
// centiseconds. Negative values clamp to zero.
func FormatTimestamp(ms int) string {
	if ms < 0 {
		ms = 0
	}
	cs := ms / 10
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s) + "." + pad2(cs)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
