package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supported lists the ISO 639-1 codes Whisper models accept as a hint.
var supported = strings.Fields(`
	af am ar as az ba be bg bn bo br bs ca cs cy da de el en es et eu fa fi fo fr
	gl gu ha he hi hr ht hu hy id is it ja ka kk km kn ko la lb ln lo lt lv mg mi
	mk ml mn mr ms mt my ne nl nn no oc pa pl ps pt ro ru sa sd si sk sl sn so sq
	sr su sv sw ta te tg th tk tl tr tt uk ur uz vi yi yo zh`)

// ISO 639-2/B codes that x/text does not resolve on its own.
var bibliographic = map[string]string{
	"alb": "sq", "arm": "hy", "baq": "eu", "bur": "my", "chi": "zh", "cze": "cs",
	"dut": "nl", "fre": "fr", "geo": "ka", "ger": "de", "gre": "el", "ice": "is",
	"mac": "mk", "mao": "mi", "may": "ms", "per": "fa", "rum": "ro", "slo": "sk",
	"tib": "bo", "wel": "cy",
}

var (
	names  = display.English.Languages()
	known  = make(map[string]struct{}, len(supported))
	byName = make(map[string]string, len(supported))
)

func init() {
	for _, code := range supported {
		known[code] = struct{}{}
		if name := names.Name(language.MustParseBase(code)); name != "" {
			byName[strings.ToLower(name)] = code
		}
	}
}

// resolve accepts a 2- or 3-letter code or an English language name and
// returns the supported ISO 639-1 code, or "".
func resolve(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if code, ok := byName[value]; ok {
		return code
	}
	if code, ok := bibliographic[value]; ok {
		return code
	}
	if len(value) != 2 && len(value) != 3 {
		return ""
	}
	base, err := language.ParseBase(value)
	if err != nil {
		return ""
	}
	code := base.String()
	if _, ok := known[code]; !ok {
		return ""
	}
	return code
}

// ToISO2 converts a language code or English name to the ISO 639-1 code
// engines expect. Languages Whisper cannot transcribe return "".
func ToISO2(code string) string {
	return resolve(code)
}

// DisplayName returns the English name for a language, "Unknown" for empty
// input and the upper-cased input when it is not recognized.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if iso := resolve(trimmed); iso != "" {
		return names.Name(language.MustParseBase(iso))
	}
	return strings.ToUpper(trimmed)
}

// Normalize maps a configured language (code or English name) to the ISO
// 639-1 code passed to transcription engines. "auto" and empty input mean
// detection and return ("", true). Unknown values return ("", false).
func Normalize(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" {
		return "", true
	}
	if code := resolve(value); code != "" {
		return code, true
	}
	return "", false
}
