package extract

import (
	"regexp"
	"strings"
)

// Layout/label lines that must never be read as passenger names.
var trainLineDenylist = []string{
	"CHECK TIMINGS", "PASSENGER DETAILS", "ELECTRONIC RESERVATION",
	"BOOKED FROM", "BOARDING AT", "TRANSACTION ID", "ACRONYMS",
	"NAME", "AGE", "GENDER", "BOOKING STATUS", "CURRENT STATUS",
	"PASSENGER STATUS", "COACH", "SEAT", "BERTH", "CHART NOT PREPARED",
	"CATERING SERVICE",
}

// OCR garbage that survives the line rules but is not a name.
var nameDenylist = []string{"CONFIRMED", "AVAILABLE", "BOOKING", "STATUS", "PASSENGER", "OPTION"}

var (
	// "1. NAME AGE GENDER | CNF" — IRCTC e-reservation slip. ! | and I are
	// interchangeable in the name because OCR confuses them.
	reNumberedRow = regexp.MustCompile(`(?i)^\d+\.\s+([A-Z!|I][A-Z!\s|I]+?)\s+(\d{1,3})\s+([MFmf|I])\s+[|\s]*(CNF|WL|RAC|VEG)`)
	// "1. Name, Age, Gender" — ixigo layout.
	reCommaRow = regexp.MustCompile(`(?i)^\d+\.\s+([A-Z][A-Za-z\s]+?),\s*(\d{1,3})\s*,\s*([MF])\s*$`)
	// Bare uppercase line — app screenshot cards with no delimiters at all.
	reBareNameLine = regexp.MustCompile(`^[A-Z][A-Z\s]{3,40}$`)

	reDigit     = regexp.MustCompile(`\d`)
	reCamelWord = regexp.MustCompile(`[A-Z][a-z]+`)
)

const minLineLen = 4 // short names like "SONAL" still pass

// TrainPassengers extracts passenger names from a train-ticket transcript,
// preserving document order. Order matters: index i is later paired with
// index i of the PNR lookup's passenger list.
func TrainPassengers(text string) []string {
	var names []string

	for _, raw := range strings.Split(text, "\n") {
		line := reWhitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
		if line == "" || len(line) < minLineLen {
			continue
		}
		if lineContainsAny(strings.ToUpper(line), trainLineDenylist) {
			continue
		}

		if m := reNumberedRow.FindStringSubmatch(line); m != nil {
			names = appendName(names, CleanName(m[1]))
			continue
		}
		if m := reCommaRow.FindStringSubmatch(line); m != nil {
			names = appendName(names, CleanName(m[1]))
			continue
		}
		if reBareNameLine.MatchString(line) && allWordsAtLeast(line, 2) {
			names = appendName(names, CleanName(line))
		}
	}
	return names
}

// CleanName repairs OCR artifacts in a raw matched name. Returns "" when
// the candidate is not a plausible name.
func CleanName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.ReplaceAll(name, "!", "I")
	name = strings.ReplaceAll(name, "|", "I")
	name = reWhitespace.ReplaceAllString(name, " ")

	if reDigit.MatchString(name) || len(name) < 3 {
		return ""
	}
	if lineContainsAny(strings.ToUpper(name), nameDenylist) {
		return ""
	}

	// "AnilSanthalia" style concatenation: no internal space but long enough
	// to be two words, split on capitalization boundaries.
	if !strings.Contains(name, " ") && len(name) > 8 {
		parts := reCamelWord.FindAllString(name, -1)
		if len(parts) >= 2 {
			return strings.Join(parts, " ")
		}
		return titleCase(name)
	}
	return titleCase(name)
}

func appendName(names []string, name string) []string {
	if name == "" {
		return names
	}
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func lineContainsAny(upper string, words []string) bool {
	for _, w := range words {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}

func allWordsAtLeast(line string, minLen int) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if len(w) < minLen {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
