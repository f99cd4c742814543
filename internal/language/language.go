package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the ISO 639-2 code for an unknown language.
const Undetermined = "und"

var words = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"dutch":      "nl",
}

var titleCaser = cases.Title(xlanguage.English)

func parse(code string) (xlanguage.Base, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Undetermined {
		return xlanguage.Base{}, false
	}
	if mapped, ok := words[code]; ok {
		code = mapped
	}
	base, err := xlanguage.ParseBase(code)
	if err != nil {
		return xlanguage.Base{}, false
	}
	return base, true
}

// Known reports whether code names a registered language.
func Known(code string) bool {
	_, ok := parse(code)
	return ok
}

// ToISO2 converts a language code or word to ISO 639-1. Languages without a
// two-letter code, and unrecognized input, return the empty string.
func ToISO2(code string) string {
	base, ok := parse(code)
	if !ok {
		return ""
	}
	if s := base.String(); len(s) == 2 {
		return s
	}
	return ""
}

// ToISO3 converts a language code or word to ISO 639-2. Unrecognized input
// returns "und".
func ToISO3(code string) string {
	base, ok := parse(code)
	if !ok {
		return Undetermined
	}
	return base.ISO3()
}

// DisplayName returns the English name of the language, "Unknown" for empty
// or undetermined input, and the upper-cased code for anything unrecognized.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || strings.EqualFold(trimmed, Undetermined) {
		return "Unknown"
	}
	base, ok := parse(trimmed)
	if !ok {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(base)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return titleCaser.String(name)
}

// NormalizeList deduplicates and normalizes a list of language codes to
// ISO 639-2, dropping unrecognized entries.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		iso3 := ToISO3(code)
		if iso3 == Undetermined {
			continue
		}
		if _, ok := seen[iso3]; ok {
			continue
		}
		seen[iso3] = struct{}{}
		normalized = append(normalized, iso3)
	}
	return normalized
}
