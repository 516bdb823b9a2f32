package captions

import (
	"testing"
)

const helloWorldDocument = `[Script Info]
; Script generated by wordglow
WrapStyle: 2
ScaledBorderAndShadow: yes
Collisions: Normal
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Jumper,22,&H00C8C8C8,&H0000FFFF,&H00000000,&H64000000,-1,0,0,0,100,100,0,0,1,2,1,2,20,20,45,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:00.00,0:00:00.90,Default,,0,0,0,,{\c&H00FFFF&}HELLO {\c&HC8C8C8&\t(400,400,\c&H00FFFF&)}WORLD.
Dialogue: 0,0:00:01.20,0:00:01.50,Default,,0,0,0,,{\c&H00FFFF&}NEXT
`

func TestDocumentBytes(t *testing.T) {
	doc := NewDocument(DefaultStyle(), []MarkupEvent{
		{StartMs: 0, EndMs: 900, Text: `{\c&H00FFFF&}HELLO {\c&HC8C8C8&\t(400,400,\c&H00FFFF&)}WORLD.`},
		{StartMs: 1200, EndMs: 1500, Text: `{\c&H00FFFF&}NEXT`},
	})
	if got := string(doc.Bytes()); got != helloWorldDocument {
		t.Fatalf("document mismatch:\n%s\nwant:\n%s", got, helloWorldDocument)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{0, "0:00:00.00"},
		{9, "0:00:00.00"},
		{10, "0:00:00.01"},
		{999, "0:00:00.99"},
		{61_234, "0:01:01.23"},
		{3_599_999, "0:59:59.99"},
		{3_600_000, "1:00:00.00"},
		{36_000_000 + 5, "10:00:00.00"},
		{-40, "0:00:00.00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.ms); got != tt.want {
			t.Fatalf("FormatTimestamp(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestStyleRecord(t *testing.T) {
	style := DefaultStyle()
	style.FontName = "Arial"
	style.FontSize = 18.5
	style.Bold = false
	style.MarginV = 10
	want := "Style: Default,Arial,18.5,&H00C8C8C8,&H0000FFFF,&H00000000,&H64000000,0,0,0,0,100,100,0,0,1,2,1,2,20,20,10,1"
	if got := style.Record(DefaultStyleName); got != want {
		t.Fatalf("record = %s\nwant %s", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    Color
		wantErr bool
	}{
		{input: "&H00C8C8C8", want: Color{R: 200, G: 200, B: 200}},
		{input: "&H0000FFFF", want: Color{R: 255, G: 255}},
		{input: "&H64000000", want: Color{A: 100}},
		{input: "&H00FFFF&", want: Color{R: 255, G: 255}},
		{input: "&hc8c8c8", want: Color{R: 200, G: 200, B: 200}},
		{input: "C8C8C8", wantErr: true},
		{input: "&H12345", wantErr: true},
		{input: "&HZZZZZZ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseColor(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}

	c := MustParseColor("&H64102030")
	if c.String() != "&H64102030" {
		t.Fatalf("round trip = %s", c.String())
	}
	if c.Inline() != "&H102030&" {
		t.Fatalf("inline = %s", c.Inline())
	}
}

func TestStyleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StyleSpec)
		field  string
	}{
		{"empty font", func(s *StyleSpec) { s.FontName = " " }, "font_name"},
		{"comma in font", func(s *StyleSpec) { s.FontName = "Foo,Bar" }, "font_name"},
		{"zero size", func(s *StyleSpec) { s.FontSize = 0 }, "font_size"},
		{"negative outline", func(s *StyleSpec) { s.Outline = -1 }, "outline"},
		{"negative shadow", func(s *StyleSpec) { s.Shadow = -1 }, "shadow"},
		{"alignment zero", func(s *StyleSpec) { s.Alignment = 0 }, "alignment"},
		{"alignment ten", func(s *StyleSpec) { s.Alignment = 10 }, "alignment"},
		{"negative margin", func(s *StyleSpec) { s.MarginV = -5 }, "margin_v"},
	}
	if err := DefaultStyle().Validate(); err != nil {
		t.Fatalf("default style invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultStyle()
			tt.mutate(&style)
			err := style.Validate()
			cfgErr, ok := err.(*ConfigurationError)
			if !ok {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("field = %s, want %s", cfgErr.Field, tt.field)
			}
		})
	}
}
