package pnrapi

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
)

var reClock = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)?`)

// BuildTrainRecord merges the authoritative status payload with the
// OCR-extracted passenger names by position: index i of the payload's list
// pairs with index i of names. When names run short a "Passenger N"
// placeholder is fabricated. The pairing is ordinal, not identity-based —
// if either list's order diverges, names misalign silently, which is why
// the shortfall is logged rather than papered over.
func BuildTrainRecord(data *StatusData, names []string, filename string, logger *slog.Logger) entity.TicketRecord {
	if logger == nil {
		logger = slog.Default()
	}

	journeyDate, departureTime := splitDateTime(data.DateOfJourney)
	arrivalDate, arrivalTime := splitDateTime(data.ArrivalDate)

	if len(names) < len(data.PassengerList) {
		logger.Warn("pnrapi.merge.shortfall",
			"pnr", data.PNRNumber,
			"extracted_names", len(names),
			"lookup_passengers", len(data.PassengerList),
		)
	}

	passengers := make([]entity.Passenger, 0, len(data.PassengerList))
	for i, p := range data.PassengerList {
		name := fmt.Sprintf("Passenger %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		passengers = append(passengers, entity.Passenger{
			Name:   name,
			Seat:   seatDescriptor(p),
			Status: p.CurrentStatusDetails,
		})
	}

	return entity.TicketRecord{
		Mode:          entity.ModeTrain,
		SourceFile:    filename,
		PNR:           data.PNRNumber,
		TrainNumber:   data.TrainNumber,
		TrainName:     data.TrainName,
		JourneyDate:   journeyDate,
		DepartureTime: departureTime,
		ArrivalDate:   arrivalDate,
		ArrivalTime:   arrivalTime,
		Details:       fmt.Sprintf("%s / %s", data.TrainNumber, data.TrainName),
		Passengers:    passengers,
	}
}

// seatDescriptor folds coach/berth fields into "coach/seat/berth", current
// assignment winning over the booking one.
func seatDescriptor(p StatusPassenger) string {
	coach := p.CurrentCoachID
	if coach == "" {
		coach = p.BookingCoachID
	}
	berthNo := p.CurrentBerthNo.String()
	if berthNo == "" || berthNo == "0" {
		berthNo = p.BookingBerthNo.String()
	}
	if berthNo == "" {
		berthNo = "0"
	}
	berthCode := p.CurrentBerthCode
	if berthCode == "" {
		berthCode = p.BookingBerthCode
	}
	return fmt.Sprintf("%s/%s/%s", coach, berthNo, berthCode)
}

// splitDateTime parses a free-form datetime like "Feb 13, 2026 4:25:00 PM"
// into ("2026-02-13", "16:25"). If general parsing fails the raw string is
// kept as the date and the time is recovered with a clock regex.
func splitDateTime(s string) (date, clock string) {
	if s == "" {
		return "", ""
	}
	if dt, err := dateparse.ParseAny(s); err == nil {
		return dt.Format("2006-01-02"), dt.Format("15:04")
	}
	return s, extractClock(s)
}

// extractClock pulls an HH:MM out of a string the general parser rejected,
// applying AM/PM arithmetic explicitly.
func extractClock(s string) string {
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	hour := 0
	fmt.Sscanf(m[1], "%d", &hour)
	switch strings.ToUpper(m[4]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return fmt.Sprintf("%02d:%s", hour, m[2])
}
