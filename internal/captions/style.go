package captions

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an ASS colour. Alpha follows the ASS convention where 0x00 is
// opaque and 0xFF is fully transparent.
type Color struct {
	R, G, B, A uint8
}

// ParseColor accepts the ASS forms "&HAABBGGRR", "&HBBGGRR" and the inline
// variants with a trailing "&".
func ParseColor(value string) (Color, error) {
	raw := strings.TrimSpace(value)
	upper := strings.ToUpper(raw)
	if !strings.HasPrefix(upper, "&H") {
		return Color{}, fmt.Errorf("color %q: missing &H prefix", value)
	}
	hex := strings.TrimSuffix(upper[2:], "&")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("color %q: expected 6 or 8 hex digits", value)
	}
	packed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", value, err)
	}
	c := Color{
		R: uint8(packed),
		G: uint8(packed >> 8),
		B: uint8(packed >> 16),
	}
	if len(hex) == 8 {
		c.A = uint8(packed >> 24)
	}
	return c, nil
}

// MustParseColor is ParseColor for package-level constants.
func MustParseColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the style-record form &HAABBGGRR.
func (c Color) String() string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", c.A, c.B, c.G, c.R)
}

// Inline renders the override-tag form &HBBGGRR& used inside \c tags.
func (c Color) Inline() string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.B, c.G, c.R)
}

// StyleSpec describes the single "Default" style every cue references.
//
// PrimaryColor is the unspoken word colour and SecondaryColor the spoken
// highlight colour. The karaoke encoder derives its inline colours from them.
type StyleSpec struct {
	FontName       string
	FontSize       float64
	Bold           bool
	PrimaryColor   Color
	SecondaryColor Color
	OutlineColor   Color
	BackColor      Color
	Outline        float64
	Shadow         float64
	Alignment      int
	MarginL        int
	MarginR        int
	MarginV        int
}

// DefaultStyleName is the name of the only style a document carries.
const DefaultStyleName = "Default"

// DefaultStyle returns the bottom-centred light-grey on yellow look.
func DefaultStyle() StyleSpec {
	return StyleSpec{
		FontName:       "Jumper",
		FontSize:       22,
		Bold:           true,
		PrimaryColor:   MustParseColor("&H00C8C8C8"),
		SecondaryColor: MustParseColor("&H0000FFFF"),
		OutlineColor:   MustParseColor("&H00000000"),
		BackColor:      MustParseColor("&H64000000"),
		Outline:        2,
		Shadow:         1,
		Alignment:      2,
		MarginL:        20,
		MarginR:        20,
		MarginV:        45,
	}
}

// Validate rejects values no renderer can honour.
func (s StyleSpec) Validate() error {
	name := strings.TrimSpace(s.FontName)
	switch {
	case name == "":
		return configErr("font_name", s.FontName, "must not be empty")
	case strings.ContainsAny(s.FontName, ",\r\n"):
		return configErr("font_name", s.FontName, "must not contain commas or line breaks")
	case s.FontSize <= 0:
		return configErr("font_size", formatNumber(s.FontSize), "must be positive")
	case s.Outline < 0:
		return configErr("outline", formatNumber(s.Outline), "must not be negative")
	case s.Shadow < 0:
		return configErr("shadow", formatNumber(s.Shadow), "must not be negative")
	case s.Alignment < 1 || s.Alignment > 9:
		return configErr("alignment", strconv.Itoa(s.Alignment), "must be a numpad position between 1 and 9")
	case s.MarginL < 0:
		return configErr("margin_l", strconv.Itoa(s.MarginL), "must not be negative")
	case s.MarginR < 0:
		return configErr("margin_r", strconv.Itoa(s.MarginR), "must not be negative")
	case s.MarginV < 0:
		return configErr("margin_v", strconv.Itoa(s.MarginV), "must not be negative")
	}
	return nil
}

// Palette returns the inline colours used by the karaoke encoder.
func (s StyleSpec) Palette() Palette {
	return Palette{Spoken: s.SecondaryColor, Unspoken: s.PrimaryColor}
}

// Record renders the V4+ style record for the given style name.
func (s StyleSpec) Record(name string) string {
	fields := []string{
		name,
		s.FontName,
		formatNumber(s.FontSize),
		s.PrimaryColor.String(),
		s.SecondaryColor.String(),
		s.OutlineColor.String(),
		s.BackColor.String(),
		assBool(s.Bold),
		"0", // italic
		"0", // underline
		"0", // strikeout
		"100",
		"100",
		"0",
		"0",
		"1", // border style: outline + drop shadow
		formatNumber(s.Outline),
		formatNumber(s.Shadow),
		strconv.Itoa(s.Alignment),
		strconv.Itoa(s.MarginL),
		strconv.Itoa(s.MarginR),
		strconv.Itoa(s.MarginV),
		"1", // encoding
	}
	return "Style: " + strings.Join(fields, ",")
}

func assBool(v bool) string {
	if v {
		return "-1"
	}
	return "0"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
