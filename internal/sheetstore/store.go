// Package sheetstore persists ticket rows and the master guest registry in
// a spreadsheet workbook. The ticket sheet is append-only; reconciliation
// owns columns N-Q and the master write blocks.
package sheetstore

import (
	"context"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
)

// TicketRow is one row of the ticket sheet: the 13 extraction columns (A-M)
// plus the 4 reconciliation columns (N-Q).
type TicketRow struct {
	RowNo int // 1-based sheet row address; 0 on rows not yet appended

	JourneyDate   string
	DepartureTime string
	ArrivalDate   string
	ArrivalTime   string
	Mode          string
	Seat          string
	Details       string
	Name          string
	VehicleNumber string // train number / flight number
	VehicleName   string // train name / airline
	Status        string // passenger status for trains, route for flights, ERROR: reason
	PNR           string
	Source        string

	entity.RowState
}

// StatusUpdate sets the commit-status cell of one ticket row.
type StatusUpdate struct {
	RowNo  int
	Status string
}

// FieldUpdate sets one cell of the master sheet, addressed by column letter
// and row number.
type FieldUpdate struct {
	RowNo int
	Col   string
	Value string
}

// TicketStore is the append-only ticket table plus its reconciliation tail.
type TicketStore interface {
	Append(ctx context.Context, rows []TicketRow) error
	List(ctx context.Context) ([]TicketRow, error)
	WriteSuggestion(ctx context.Context, rowNo int, suggested string, score int) error
	WriteApproved(ctx context.Context, rowNo int, approved string) error
	WriteStatuses(ctx context.Context, updates []StatusUpdate) error
}

// RegistryStore reads canonical guest rows and applies commit write batches.
type RegistryStore interface {
	LoadGuests(ctx context.Context) ([]entity.Guest, error)
	ApplyUpdates(ctx context.Context, updates []FieldUpdate) error
}

// Master-sheet column blocks. ARRIVAL and DEPARTURE each take six columns:
// date, mode, seat, vehicle number, vehicle name, time.
var (
	ArrivalCols   = [6]string{"I", "J", "K", "L", "M", "N"}
	DepartureCols = [6]string{"AE", "AF", "AG", "AH", "AI", "AJ"}
)

// RowsForRecord converts a ticket record into sheet rows, one per
// passenger. ERROR records produce a single mostly-blank row carrying the
// reason, so failures stay visible in the sheet.
func RowsForRecord(rec entity.TicketRecord) []TicketRow {
	if rec.IsError() {
		return []TicketRow{{
			Mode:   string(entity.ModeError),
			Status: "ERROR: " + rec.Err,
			PNR:    rec.PNR,
			Source: rec.SourceFile,
		}}
	}

	rows := make([]TicketRow, 0, len(rec.Passengers))
	for _, pax := range rec.Passengers {
		row := TicketRow{
			JourneyDate:   rec.JourneyDate,
			DepartureTime: rec.DepartureTime,
			ArrivalDate:   rec.ArrivalDate,
			ArrivalTime:   rec.ArrivalTime,
			Mode:          string(rec.Mode),
			Seat:          pax.Seat,
			Details:       rec.Details,
			Name:          pax.Name,
			PNR:           rec.PNR,
			Source:        rec.SourceFile,
		}
		switch rec.Mode {
		case entity.ModeTrain:
			row.VehicleNumber = rec.TrainNumber
			row.VehicleName = rec.TrainName
			row.Status = pax.Status
		case entity.ModeFlight:
			row.JourneyDate = rec.Date
			row.VehicleNumber = rec.FlightNumber
			row.VehicleName = rec.Airline
			row.Status = rec.Route
		}
		rows = append(rows, row)
	}
	return rows
}

func (r TicketRow) cells() []string {
	return []string{
		r.JourneyDate, r.DepartureTime, r.ArrivalDate, r.ArrivalTime,
		r.Mode, r.Seat, r.Details, r.Name,
		r.VehicleNumber, r.VehicleName, r.Status, r.PNR, r.Source,
	}
}
