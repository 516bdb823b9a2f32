package captions

import (
	"regexp"
	"strconv"
	"strings"
)

// patchRule rewrites one field of a serialised document in place.
type patchRule struct {
	name    string
	pattern *regexp.Regexp
	rewrite func(groups []string, style StyleSpec) string
}

var patchRules = []patchRule{
	{
		name:    "wrap_style",
		pattern: regexp.MustCompile(`(?m)^WrapStyle:[ \t]*-?\d+[ \t]*(\r?)$`),
		rewrite: func(groups []string, _ StyleSpec) string {
			return "WrapStyle: " + strconv.Itoa(WrapStyleNone) + groups[1]
		},
	},
	{
		name:    "font_and_primary",
		pattern: regexp.MustCompile(`(?m)^Style: Default,[^,\n]*,[^,\n]*,[^,\n]*,`),
		rewrite: func(_ []string, style StyleSpec) string {
			return "Style: Default," + style.FontName + "," + formatNumber(style.FontSize) + "," + style.PrimaryColor.String() + ","
		},
	},
	{
		name:    "bold",
		pattern: regexp.MustCompile(`(?m)^(Style: Default,(?:[^,\n]*,){6})-?\d+,`),
		rewrite: func(groups []string, style StyleSpec) string {
			return groups[1] + assBool(style.Bold) + ","
		},
	},
	{
		name:    "margin_v",
		pattern: regexp.MustCompile(`(?m)^(Style: Default,(?:[^,\n]*,){20})-?\d+(,[^,\n]*)$`),
		rewrite: func(groups []string, style StyleSpec) string {
			return groups[1] + strconv.Itoa(style.MarginV) + groups[2]
		},
	},
}

// Patch rewrites an existing document so its script info and Default style
// match style: wrap style, font name, font size, primary colour, bold flag
// and vertical margin. Documents from generic serialisers that lack support
// for these fields can be repaired this way.
//
// Each rewrite is anchored to a fixed field position. A rewrite that matches
// nothing means the layout is not what it expects, and Patch returns a
// SerializationFidelityError naming the rule rather than silently leaving
// the field untouched.
func Patch(content string, style StyleSpec) (string, error) {
	if err := style.Validate(); err != nil {
		return "", err
	}
	out := content
	for _, rule := range patchRules {
		var matched int
		out = rule.pattern.ReplaceAllStringFunc(out, func(match string) string {
			matched++
			groups := rule.pattern.FindStringSubmatch(match)
			return rule.rewrite(groups, style)
		})
		if matched == 0 {
			return "", &SerializationFidelityError{
				Rule:   rule.name,
				Detail: "pattern matched no occurrences: " + rule.pattern.String(),
			}
		}
	}
	return out, nil
}

// Verify checks that serialised content declares WrapStyle 2 and carries a
// Default style record identical to style.
func Verify(content string, style StyleSpec) error {
	want := style.Record(DefaultStyleName)
	return verify(content, func(line string) error {
		if line != want {
			return &SerializationFidelityError{Rule: "style_record", Detail: "got " + line + ", want " + want}
		}
		return nil
	})
}

// Field positions in a V4+ style record, counting the name as 0.
const (
	fieldFontName     = 1
	fieldFontSize     = 2
	fieldPrimaryColor = 3
	fieldBold         = 7
	fieldMarginV      = 21
	styleFieldCount   = 23
)

// VerifyPatched checks only what Patch rewrites: WrapStyle and the Default
// style's font name, font size, primary colour, bold flag and vertical
// margin. Other style fields keep whatever formatting the source writer used,
// so "100.0" and "100" are both accepted there.
func VerifyPatched(content string, style StyleSpec) error {
	return verify(content, func(line string) error {
		fields := strings.Split(strings.TrimPrefix(line, "Style: "), ",")
		if len(fields) != styleFieldCount {
			return &SerializationFidelityError{Rule: "style_record", Detail: "expected " + strconv.Itoa(styleFieldCount) + " fields, got " + strconv.Itoa(len(fields))}
		}
		checks := []struct {
			rule string
			ok   bool
			got  string
			want string
		}{
			{"font_and_primary", fields[fieldFontName] == style.FontName, fields[fieldFontName], style.FontName},
			{"font_and_primary", sameNumber(fields[fieldFontSize], style.FontSize), fields[fieldFontSize], formatNumber(style.FontSize)},
			{"font_and_primary", strings.EqualFold(fields[fieldPrimaryColor], style.PrimaryColor.String()), fields[fieldPrimaryColor], style.PrimaryColor.String()},
			{"bold", fields[fieldBold] == assBool(style.Bold), fields[fieldBold], assBool(style.Bold)},
			{"margin_v", sameNumber(fields[fieldMarginV], float64(style.MarginV)), fields[fieldMarginV], strconv.Itoa(style.MarginV)},
		}
		for _, c := range checks {
			if !c.ok {
				return &SerializationFidelityError{Rule: c.rule, Detail: "got " + c.got + ", want " + c.want}
			}
		}
		return nil
	})
}

func sameNumber(field string, want float64) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	return err == nil && v == want
}

func verify(content string, checkStyle func(line string) error) error {
	var (
		styleFound bool
		wrapFound  bool
	)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "WrapStyle:"):
			wrapFound = true
			value := strings.TrimSpace(strings.TrimPrefix(line, "WrapStyle:"))
			if value != strconv.Itoa(WrapStyleNone) {
				return &SerializationFidelityError{Rule: "wrap_style", Detail: "got WrapStyle " + value}
			}
		case strings.HasPrefix(line, "Style: "+DefaultStyleName+","):
			styleFound = true
			if err := checkStyle(line); err != nil {
				return err
			}
		}
	}
	if !wrapFound {
		return &SerializationFidelityError{Rule: "wrap_style", Detail: "WrapStyle line missing"}
	}
	if !styleFound {
		return &SerializationFidelityError{Rule: "style_record", Detail: "Default style record missing"}
	}
	return nil
}
