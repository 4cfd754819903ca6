// Package extract recovers identifiers, passenger lists and schedule fields
// from OCR transcripts. All rules are ordered first-match-wins; extraction
// never fails, it only leaves fields empty.
package extract

import (
	"regexp"
	"strings"
)

var (
	reSpacedDigits = regexp.MustCompile(`(?:\d\s+){9}\d`)
	reLabeledPNR   = regexp.MustCompile(`(?i)PNR[:=\s]*([A-Z0-9]{6,10})\b`)
	reBareTenDigit = regexp.MustCompile(`\b\d{10}\b`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// excludedPNRPrefixes filters bare 10-digit candidates that are really
// dates (201x/202x/203x) or phone numbers (982x, 100x).
var excludedPNRPrefixes = []string{"201", "202", "203", "982", "100"}

// pnrRules is the ordered rule chain; the first rule returning a non-empty
// value wins and later rules are not consulted.
var pnrRules = []func(string) string{
	spacedDigitPNR,
	labeledPNR,
	bareTenDigitPNR,
}

// PNR extracts a booking reference from a transcript, or "" if none of the
// rules match.
func PNR(text string) string {
	for _, rule := range pnrRules {
		if pnr := rule(text); pnr != "" {
			return pnr
		}
	}
	return ""
}

// spacedDigitPNR handles segmented digit rendering, e.g. "6 5 6 2 5 2 6 4 9 6".
func spacedDigitPNR(text string) string {
	for _, m := range reSpacedDigits.FindAllString(text, -1) {
		pnr := reWhitespace.ReplaceAllString(m, "")
		if len(pnr) == 10 {
			return pnr
		}
	}
	return ""
}

func labeledPNR(text string) string {
	if m := reLabeledPNR.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func bareTenDigitPNR(text string) string {
	for _, c := range reBareTenDigit.FindAllString(text, -1) {
		if !hasExcludedPrefix(c) {
			return c
		}
	}
	return ""
}

func hasExcludedPrefix(s string) bool {
	for _, p := range excludedPNRPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
