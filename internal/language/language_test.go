package language

import (
	"slices"
	"testing"
)

func TestConversions(t *testing.T) {
	tests := []struct {
		in      string
		iso2    string
		iso3    string
		display string
	}{
		{in: "en", iso2: "en", iso3: "eng", display: "English"},
		{in: "EN", iso2: "en", iso3: "eng", display: "English"},
		{in: "eng", iso2: "en", iso3: "eng", display: "English"},
		{in: "spa", iso2: "es", iso3: "spa", display: "Spanish"},
		{in: "fra", iso2: "fr", iso3: "fra", display: "French"},
		{in: "deu", iso2: "de", iso3: "deu", display: "German"},
		{in: "ja", iso2: "ja", iso3: "jpn", display: "Japanese"},
		{in: "french", iso2: "fr", iso3: "fra", display: "French"},
		{in: "GERMAN", iso2: "de", iso3: "deu", display: "German"},
		{in: "", iso2: "", iso3: "und", display: "Unknown"},
		{in: " ", iso2: "", iso3: "und", display: "Unknown"},
		{in: "und", iso2: "", iso3: "und", display: "Unknown"},
		{in: "q1", iso2: "", iso3: "und", display: "Q1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToISO2(tt.in); got != tt.iso2 {
				t.Fatalf("ToISO2(%q) = %q, want %q", tt.in, got, tt.iso2)
			}
			if got := ToISO3(tt.in); got != tt.iso3 {
				t.Fatalf("ToISO3(%q) = %q, want %q", tt.in, got, tt.iso3)
			}
			if got := DisplayName(tt.in); got != tt.display {
				t.Fatalf("DisplayName(%q) = %q, want %q", tt.in, got, tt.display)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, code := range []string{"eng", "de", "Japanese"} {
		if !Known(code) {
			t.Fatalf("Known(%q) = false", code)
		}
	}
	for _, code := range []string{"", "und", "q1"} {
		if Known(code) {
			t.Fatalf("Known(%q) = true", code)
		}
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{"en", "eng", "English", "fr", "q1", ""})
	if want := []string{"eng", "fra"}; !slices.Equal(got, want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
	if NormalizeList(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}
