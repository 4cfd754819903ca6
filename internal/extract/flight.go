package extract

import (
	"regexp"
	"strings"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
)

// FlightDetails holds everything recoverable from a flight-ticket transcript.
type FlightDetails struct {
	Airline       string
	FlightNumber  string
	PNR           string
	Route         string
	Date          string
	DepartureTime string
	ArrivalTime   string
	Passengers    []entity.Passenger
}

// Substring lookup table; longer keys first so "air india express" wins
// over "air india".
var airlineTable = []struct{ key, name string }{
	{"air india express", "Air India Express"},
	{"air india", "Air India"},
	{"indigo", "IndiGo"},
	{"6e", "IndiGo"},
	{"vistara", "Vistara"},
	{"spicejet", "SpiceJet"},
}

var (
	reCodedFlightNo   = regexp.MustCompile(`\b(IX|I5|AI|6E|UK|SG|QP)\s*[-\s]*(\d{3,4})\b`)
	reLabeledFlightNo = regexp.MustCompile(`(?i)Flight\s+(?:No\.?|Number)?\s*[:=\s]*([A-Z0-9]{2,3}[-\s]?\d{3,4})`)
	reFlightPNR       = regexp.MustCompile(`(?i)PNR[:=\s]*([A-Z0-9]{6})\b`)
	reRoute           = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s*[-→–]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	reTimes           = regexp.MustCompile(`\b(\d{1,2}:\d{2})\s*(?:hrs|HRS)?\b`)

	// Three date forms, tried in order: "13 Feb 2026", "Fri, 13 Feb 2026",
	// "13/02/2026".
	flightDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+[,']?(\d{2,4})\b`),
		regexp.MustCompile(`(?i)\b(Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*,?\s+(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`),
	}

	rePaxAdult  = regexp.MustCompile(`(?i)\b(M[rs]s?\.?\s+[A-Z][A-Z\s]+?)\s*\(ADULT\)`)
	rePaxTitled = regexp.MustCompile(`\b(M[rs]\.?\s+[A-Z][a-z]+\s+[A-Z][a-z]+)\b`)
)

// Document-layout vocabulary that the passenger patterns are known to
// false-positive on; rejecting these outweighs recall on edge-case names.
var flightNameDenylist = []string{
	"ALLOWED", "ITEMS", "BAGGAGE", "BOOKING", "DETAILS", "PAYMENT",
	"TICKET", "FLIGHT", "TERMINAL", "CHECK", "INFORMATION", "IMPORTANT",
	"CONTACT", "CUSTOMER", "SUPPORT", "YATRA", "DIGI", "AVOID",
}

// Flight extracts all flight fields from a transcript. Missing fields stay
// empty; the caller decides whether that makes the record an error.
func Flight(text string) FlightDetails {
	var d FlightDetails

	lower := strings.ToLower(text)
	for _, a := range airlineTable {
		if strings.Contains(lower, a.key) {
			d.Airline = a.name
			break
		}
	}

	if m := reCodedFlightNo.FindStringSubmatch(text); m != nil {
		d.FlightNumber = m[1] + " " + m[2]
	} else if m := reLabeledFlightNo.FindStringSubmatch(text); m != nil {
		d.FlightNumber = reWhitespace.ReplaceAllString(m[1], " ")
	}

	if m := reFlightPNR.FindStringSubmatch(text); m != nil {
		d.PNR = strings.ToUpper(m[1])
	}

	if m := reRoute.FindStringSubmatch(text); m != nil {
		d.Route = m[1] + " → " + m[2]
	}

	for _, re := range flightDatePatterns {
		if m := re.FindString(text); m != "" {
			d.Date = m
			break
		}
	}

	// First two clock occurrences are taken positionally as dep/arr. There
	// is no semantic check that these are the labelled fields; a transcript
	// with a check-in time first will misassign. Known fragility.
	times := reTimes.FindAllStringSubmatch(text, -1)
	if len(times) >= 2 {
		d.DepartureTime = times[0][1]
		d.ArrivalTime = times[1][1]
	}

	d.Passengers = FlightPassengers(text)
	return d
}

// FlightPassengers extracts validated passenger names, deduplicated
// case-insensitively on the full name.
func FlightPassengers(text string) []entity.Passenger {
	var out []entity.Passenger

	for _, re := range []*regexp.Regexp{rePaxAdult, rePaxTitled} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := reWhitespace.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			name = strings.NewReplacer("Mr.", "Mr", "Ms.", "Ms", "Mrs.", "Mrs").Replace(name)
			if !validFlightName(name) {
				continue
			}
			if hasPassenger(out, name) {
				continue
			}
			out = append(out, entity.Passenger{Name: name})
		}
	}
	return out
}

func validFlightName(name string) bool {
	upper := strings.ToUpper(name)
	if lineContainsAny(upper, flightNameDenylist) {
		return false
	}
	if !strings.Contains(name, " ") {
		return false
	}
	if len(name) < 5 || len(name) > 40 {
		return false
	}
	return !reDigit.MatchString(name)
}

func hasPassenger(list []entity.Passenger, name string) bool {
	for _, p := range list {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}
