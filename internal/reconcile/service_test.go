package reconcile

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
	"github.com/guestlist-ops/ticket-reconciler/internal/match"
	"github.com/guestlist-ops/ticket-reconciler/internal/sheetstore"
)

// fakeTickets keeps ticket rows in memory and mutates them in place the way
// the workbook store does.
type fakeTickets struct {
	rows []sheetstore.TicketRow
	log  *[]string
}

func (f *fakeTickets) Append(ctx context.Context, rows []sheetstore.TicketRow) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeTickets) List(ctx context.Context) ([]sheetstore.TicketRow, error) {
	out := make([]sheetstore.TicketRow, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeTickets) WriteSuggestion(ctx context.Context, rowNo int, suggested string, score int) error {
	r := f.row(rowNo)
	r.Suggested = suggested
	r.Score = strconv.Itoa(score)
	return nil
}

func (f *fakeTickets) WriteApproved(ctx context.Context, rowNo int, approved string) error {
	f.row(rowNo).Approved = approved
	return nil
}

func (f *fakeTickets) WriteStatuses(ctx context.Context, updates []sheetstore.StatusUpdate) error {
	if f.log != nil {
		*f.log = append(*f.log, "statuses")
	}
	for _, u := range updates {
		f.row(u.RowNo).CommitStatus = u.Status
	}
	return nil
}

func (f *fakeTickets) row(rowNo int) *sheetstore.TicketRow {
	for i := range f.rows {
		if f.rows[i].RowNo == rowNo {
			return &f.rows[i]
		}
	}
	panic("unknown row " + strconv.Itoa(rowNo))
}

type fakeRegistry struct {
	guests  []entity.Guest
	updates []sheetstore.FieldUpdate
	log     *[]string
}

func (f *fakeRegistry) LoadGuests(ctx context.Context) ([]entity.Guest, error) {
	return f.guests, nil
}

func (f *fakeRegistry) ApplyUpdates(ctx context.Context, updates []sheetstore.FieldUpdate) error {
	if f.log != nil {
		*f.log = append(*f.log, "fields")
	}
	f.updates = append(f.updates, updates...)
	return nil
}

func guest(name string, rowNo int) entity.Guest {
	return entity.Guest{Name: name, Norm: match.Normalize(name), RowNo: rowNo}
}

var testCutoff = time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

func newTestService(tickets *fakeTickets, registry *fakeRegistry) *Service {
	return NewService(tickets, registry, match.NewMatcher(85, 3), testCutoff, nil)
}

func TestSuggest(t *testing.T) {
	registry := &fakeRegistry{guests: []entity.Guest{
		guest("Rahul Sharma", 2),
		guest("Sonal", 3),
		guest("Sonal", 4), // same normalized form, forces ambiguity
	}}
	tickets := &fakeTickets{rows: []sheetstore.TicketRow{
		{RowNo: 2, Mode: "TRAIN", Name: "Mr Rahul Sharma"},
		{RowNo: 3, Mode: "TRAIN", Name: "Sonal Sharma"},
		{RowNo: 4, Mode: "TRAIN", Name: "Zzyzx Quux"},
		{RowNo: 5, Mode: "ERROR", Name: ""},
		{RowNo: 6, Mode: "TRAIN", Name: "Old Row", RowState: entity.RowState{CommitStatus: entity.StatusCommitted}},
	}}

	stats, err := newTestService(tickets, registry).Suggest(context.Background())
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	if stats.Matched != 1 || stats.Duplicates != 1 || stats.Unmatched != 1 || stats.Skipped != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if got := tickets.row(2).Suggested; got != "Rahul Sharma" {
		t.Errorf("row 2 suggested = %q", got)
	}
	if got := tickets.row(3).Suggested; got != "DUPLICATE: Sonal" {
		t.Errorf("row 3 suggested = %q", got)
	}
	if got := tickets.row(4).Suggested; got != "" {
		t.Errorf("row 4 suggested = %q, want empty", got)
	}
	if got := tickets.row(6).Suggested; got != "" {
		t.Errorf("committed row rewritten: suggested = %q", got)
	}
}

func TestCommitRouting(t *testing.T) {
	registry := &fakeRegistry{guests: []entity.Guest{
		guest("Asha Verma", 5),
		guest("Vikram Rao", 7),
		guest("Neha Gupta", 9),
	}}
	tickets := &fakeTickets{rows: []sheetstore.TicketRow{
		{
			RowNo: 2, Mode: "TRAIN", JourneyDate: "2026-02-20", DepartureTime: "16:25",
			ArrivalDate: "2026-02-21", ArrivalTime: "06:10", Seat: "B2/32/LB",
			VehicleNumber: "12817", VehicleName: "JHARKHAND SJ EXP",
			RowState: entity.RowState{Approved: "Asha Verma"},
		},
		{
			RowNo: 3, Mode: "TRAIN", JourneyDate: "2026-02-10", DepartureTime: "16:25",
			ArrivalDate: "2026-02-11", ArrivalTime: "06:10", Seat: "S1/12/SU",
			VehicleNumber: "12817", VehicleName: "JHARKHAND SJ EXP",
			RowState: entity.RowState{Approved: "Vikram Rao"},
		},
		{
			RowNo: 4, Mode: "FLIGHT", JourneyDate: "2026-02-10",
			VehicleNumber: "6E 123", VehicleName: "IndiGo",
			RowState: entity.RowState{Approved: "Neha Gupta"},
		},
	}}

	stats, err := newTestService(tickets, registry).Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if stats.Committed != 3 || stats.Errors != 0 {
		t.Errorf("stats = %+v", stats)
	}

	byCell := map[string]string{}
	for _, u := range registry.updates {
		byCell[u.Col+strconv.Itoa(u.RowNo)] = u.Value
	}

	// Journey on or past the cutoff lands in the departure block with the
	// journey date and departure time.
	if byCell["AE5"] != "02/20/26" || byCell["AJ5"] != "16:25" {
		t.Errorf("departure block = AE5 %q AJ5 %q", byCell["AE5"], byCell["AJ5"])
	}
	// Earlier train journeys land in the arrival block with the arrival
	// date and arrival time.
	if byCell["I7"] != "02/11/26" || byCell["N7"] != "06:10" {
		t.Errorf("arrival block = I7 %q N7 %q", byCell["I7"], byCell["N7"])
	}
	// Flights only have one date; the arrival block takes the journey date.
	if byCell["I9"] != "02/10/26" {
		t.Errorf("flight arrival date = %q", byCell["I9"])
	}
	if _, leaked := byCell["AE7"]; leaked {
		t.Error("arrival-bound row wrote into the departure block")
	}

	for _, rowNo := range []int{2, 3, 4} {
		if got := tickets.row(rowNo).CommitStatus; got != entity.StatusCommitted {
			t.Errorf("row %d commit status = %q", rowNo, got)
		}
	}
}

func TestCommitWritesFieldsBeforeStatuses(t *testing.T) {
	var log []string
	registry := &fakeRegistry{guests: []entity.Guest{guest("Asha Verma", 5)}, log: &log}
	tickets := &fakeTickets{rows: []sheetstore.TicketRow{
		{RowNo: 2, Mode: "TRAIN", JourneyDate: "2026-02-20", ArrivalDate: "2026-02-21",
			RowState: entity.RowState{Approved: "Asha Verma"}},
	}, log: &log}

	if _, err := newTestService(tickets, registry).Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(log) != 2 || log[0] != "fields" || log[1] != "statuses" {
		t.Errorf("write order = %v, want fields then statuses", log)
	}
}

func TestCommitIdempotent(t *testing.T) {
	registry := &fakeRegistry{guests: []entity.Guest{guest("Asha Verma", 5)}}
	tickets := &fakeTickets{rows: []sheetstore.TicketRow{
		{RowNo: 2, Mode: "TRAIN", JourneyDate: "2026-02-20", ArrivalDate: "2026-02-21",
			RowState: entity.RowState{Approved: "Asha Verma"}},
	}}
	svc := newTestService(tickets, registry)

	if _, err := svc.Commit(context.Background()); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	firstWrites := len(registry.updates)

	stats, err := svc.Commit(context.Background())
	if err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	if stats.Committed != 0 {
		t.Errorf("second commit committed %d rows, want 0", stats.Committed)
	}
	if len(registry.updates) != firstWrites {
		t.Errorf("second commit wrote %d more master cells", len(registry.updates)-firstWrites)
	}
}

func TestCommitAutofillSkipsDuplicates(t *testing.T) {
	registry := &fakeRegistry{guests: []entity.Guest{guest("Asha Verma", 5)}}
	tickets := &fakeTickets{rows: []sheetstore.TicketRow{
		{RowNo: 2, Mode: "TRAIN", JourneyDate: "2026-02-20", ArrivalDate: "2026-02-21",
			RowState: entity.RowState{Suggested: "Asha Verma"}},
		{RowNo: 3, Mode: "TRAIN", JourneyDate: "2026-02-20",
			RowState: entity.RowState{Suggested: "DUPLICATE: Asha Verma"}},
	}}

	stats, err := newTestService(tickets, registry).Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if stats.Autofilled != 1 {
		t.Errorf("autofilled = %d, want 1", stats.Autofilled)
	}
	if got := tickets.row(3).Approved; got != "" {
		t.Errorf("duplicate row autofilled with %q", got)
	}
	if got := tickets.row(2).CommitStatus; got != entity.StatusCommitted {
		t.Errorf("autofilled row status = %q", got)
	}
	if got := tickets.row(3).CommitStatus; got == entity.StatusCommitted {
		t.Error("duplicate row was committed")
	}
}

func TestCommitUnknownApprovedName(t *testing.T) {
	registry := &fakeRegistry{guests: []entity.Guest{guest("Asha Verma", 5)}}
	tickets := &fakeTickets{rows: []sheetstore.TicketRow{
		{RowNo: 2, Mode: "TRAIN", JourneyDate: "2026-02-20",
			RowState: entity.RowState{Approved: "Nobody Known"}},
	}}

	stats, err := newTestService(tickets, registry).Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if stats.Errors != 1 || stats.Committed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if got := tickets.row(2).CommitStatus; got != "ERROR: 'Nobody Known' not found" {
		t.Errorf("status = %q", got)
	}
	if len(registry.updates) != 0 {
		t.Errorf("unexpected master writes: %v", registry.updates)
	}
}
