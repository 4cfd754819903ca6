package entity

// Mode tags a ticket record with its transport variant. ERROR records carry
// a reason instead of schedule fields and still land in the ticket sheet.
type Mode string

const (
	ModeTrain   Mode = "TRAIN"
	ModeFlight  Mode = "FLIGHT"
	ModeError   Mode = "ERROR"
	ModeUnknown Mode = "UNKNOWN"
)

// Passenger is one traveller on a ticket. For TRAIN tickets the slice index
// pairs the OCR-extracted name with the lookup's passenger at the same index.
type Passenger struct {
	Name   string `json:"name"`
	Seat   string `json:"seat"` // coach/seat/berth for trains, seat for flights
	Status string `json:"status"`
}

// TicketRecord is the consolidated result of processing one document.
// Exactly one is produced per document and appended to the ticket sheet;
// records are never mutated afterwards.
type TicketRecord struct {
	Mode       Mode        `json:"mode"`
	SourceFile string      `json:"source_file"`
	PNR        string      `json:"pnr"`
	Passengers []Passenger `json:"passengers"`
	Details    string      `json:"details"`
	Err        string      `json:"error,omitempty"`

	// TRAIN fields
	JourneyDate   string `json:"journey_date,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	ArrivalDate   string `json:"arrival_date,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	TrainNumber   string `json:"train_number,omitempty"`
	TrainName     string `json:"train_name,omitempty"`

	// FLIGHT fields
	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
	Route        string `json:"route,omitempty"`
	Date         string `json:"date,omitempty"`
}

// ErrorRecord builds the ERROR variant, keeping the filename and any
// partially extracted PNR so the failure is still auditable in the sheet.
func ErrorRecord(filename, pnr, reason string) TicketRecord {
	return TicketRecord{
		Mode:       ModeError,
		SourceFile: filename,
		PNR:        pnr,
		Err:        reason,
	}
}

// IsError reports whether the record is the ERROR variant.
func (r TicketRecord) IsError() bool {
	return r.Mode == ModeError || r.Err != ""
}
