// Package reconcile runs the two-step guest reconciliation workflow:
// suggest registry matches for extracted passenger rows, then commit
// approved rows into the master registry's arrival or departure block.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
	"github.com/guestlist-ops/ticket-reconciler/internal/match"
	"github.com/guestlist-ops/ticket-reconciler/internal/sheetstore"
)

type Service struct {
	tickets  sheetstore.TicketStore
	registry sheetstore.RegistryStore
	matcher  *match.Matcher
	cutoff   time.Time // journey dates at or past this route to DEPARTURE
	logger   *slog.Logger
}

func NewService(tickets sheetstore.TicketStore, registry sheetstore.RegistryStore, matcher *match.Matcher, cutoff time.Time, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tickets:  tickets,
		registry: registry,
		matcher:  matcher,
		cutoff:   cutoff,
		logger:   logger,
	}
}

type SuggestStats struct {
	Matched    int `json:"matched"`
	Duplicates int `json:"duplicates"`
	Unmatched  int `json:"unmatched"`
	Skipped    int `json:"skipped"`
}

// Suggest scores every pending ticket row against the registry and writes
// the suggestion and score columns. Committed rows, error rows and rows
// without a passenger name are left untouched, so the step can be re-run.
func (s *Service) Suggest(ctx context.Context) (SuggestStats, error) {
	var stats SuggestStats

	guests, err := s.registry.LoadGuests(ctx)
	if err != nil {
		return stats, fmt.Errorf("load registry: %w", err)
	}
	rows, err := s.tickets.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list tickets: %w", err)
	}
	s.logger.Info("reconcile.suggest.start", "guests", len(guests), "tickets", len(rows))

	for _, row := range rows {
		if row.CommitStatus == entity.StatusCommitted ||
			row.Mode == string(entity.ModeError) ||
			row.Name == "" {
			stats.Skipped++
			continue
		}

		candidates, best := s.matcher.Against(row.Name, guests)
		switch s.matcher.Resolve(candidates) {
		case match.Duplicate:
			suggested := "DUPLICATE: " + candidates[0].Guest.Name
			if err := s.tickets.WriteSuggestion(ctx, row.RowNo, suggested, best); err != nil {
				return stats, err
			}
			s.logger.Warn("reconcile.suggest.duplicate",
				"row", row.RowNo, "name", row.Name, "candidates", len(candidates), "score", best)
			stats.Duplicates++
		case match.Matched:
			if err := s.tickets.WriteSuggestion(ctx, row.RowNo, candidates[0].Guest.Name, best); err != nil {
				return stats, err
			}
			stats.Matched++
		default:
			if err := s.tickets.WriteSuggestion(ctx, row.RowNo, "", best); err != nil {
				return stats, err
			}
			s.logger.Debug("reconcile.suggest.nomatch", "row", row.RowNo, "name", row.Name, "best", best)
			stats.Unmatched++
		}
	}

	s.logger.Info("reconcile.suggest.done",
		"matched", stats.Matched, "duplicates", stats.Duplicates,
		"unmatched", stats.Unmatched, "skipped", stats.Skipped)
	return stats, nil
}

type CommitStats struct {
	Autofilled int `json:"autofilled"`
	Committed  int `json:"committed"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// Commit copies unambiguous suggestions into the approved column, then
// writes every approved row into its guest's arrival or departure block.
// Master field updates land before any status flips to COMMITTED, so a
// crash between the two re-commits rather than losing data.
func (s *Service) Commit(ctx context.Context) (CommitStats, error) {
	var stats CommitStats

	guests, err := s.registry.LoadGuests(ctx)
	if err != nil {
		return stats, fmt.Errorf("load registry: %w", err)
	}

	rows, err := s.tickets.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list tickets: %w", err)
	}

	// Phase 1: autofill approvals. Duplicates stay blank for manual input.
	for _, row := range rows {
		if row.Mode == string(entity.ModeError) {
			continue
		}
		if strings.Contains(row.Suggested, "DUPLICATE") {
			continue
		}
		if row.Approved == "" && row.Suggested != "" {
			if err := s.tickets.WriteApproved(ctx, row.RowNo, row.Suggested); err != nil {
				return stats, err
			}
			stats.Autofilled++
		}
	}

	// Reload to pick up the approvals just written.
	rows, err = s.tickets.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list tickets: %w", err)
	}

	var fieldUpdates []sheetstore.FieldUpdate
	var statusUpdates []sheetstore.StatusUpdate

	for _, row := range rows {
		if row.Approved == "" || row.Mode == string(entity.ModeError) {
			stats.Skipped++
			continue
		}
		if row.CommitStatus == entity.StatusCommitted {
			stats.Skipped++
			continue
		}

		guest, ok := lookupExact(guests, row.Approved)
		if !ok {
			statusUpdates = append(statusUpdates, sheetstore.StatusUpdate{
				RowNo:  row.RowNo,
				Status: fmt.Sprintf("ERROR: '%s' not found", row.Approved),
			})
			s.logger.Warn("reconcile.commit.not_found", "row", row.RowNo, "approved", row.Approved)
			stats.Errors++
			continue
		}

		fieldUpdates = append(fieldUpdates, s.blockUpdates(row, guest)...)
		statusUpdates = append(statusUpdates, sheetstore.StatusUpdate{
			RowNo:  row.RowNo,
			Status: entity.StatusCommitted,
		})
		stats.Committed++
	}

	if len(fieldUpdates) > 0 {
		if err := s.registry.ApplyUpdates(ctx, fieldUpdates); err != nil {
			return stats, fmt.Errorf("update registry: %w", err)
		}
	}
	if len(statusUpdates) > 0 {
		if err := s.tickets.WriteStatuses(ctx, statusUpdates); err != nil {
			return stats, fmt.Errorf("update statuses: %w", err)
		}
	}

	s.logger.Info("reconcile.commit.done",
		"autofilled", stats.Autofilled, "committed", stats.Committed,
		"skipped", stats.Skipped, "errors", stats.Errors)
	return stats, nil
}

// blockUpdates builds the six cell writes for one committed row. Journey
// dates at or past the cutoff route to the departure block; everything
// else, including unparseable dates, routes to arrival.
func (s *Service) blockUpdates(row sheetstore.TicketRow, guest entity.Guest) []sheetstore.FieldUpdate {
	var cols [6]string
	var dateValue, timeValue string

	if s.isDeparture(row.JourneyDate) {
		cols = sheetstore.DepartureCols
		dateValue = row.JourneyDate
		timeValue = row.DepartureTime
		if timeValue == "" {
			timeValue = row.ArrivalTime
		}
	} else {
		cols = sheetstore.ArrivalCols
		// Flights carry a single date; trains arrive on the arrival date.
		if row.Mode == string(entity.ModeFlight) {
			dateValue = row.JourneyDate
		} else {
			dateValue = row.ArrivalDate
		}
		timeValue = row.ArrivalTime
		if timeValue == "" {
			timeValue = row.DepartureTime
		}
	}

	values := [6]string{
		formatMMDDYY(dateValue), row.Mode, row.Seat,
		row.VehicleNumber, row.VehicleName, timeValue,
	}
	updates := make([]sheetstore.FieldUpdate, 0, len(cols))
	for i, col := range cols {
		updates = append(updates, sheetstore.FieldUpdate{
			RowNo: guest.RowNo,
			Col:   col,
			Value: values[i],
		})
	}
	return updates
}

func (s *Service) isDeparture(journeyDate string) bool {
	if journeyDate == "" {
		return false
	}
	t, err := dateparse.ParseAny(journeyDate)
	if err != nil {
		return false
	}
	return !t.Before(s.cutoff)
}

// lookupExact finds the registry row whose raw name equals the approved
// name, ignoring case. Fuzzy scores never reach this point; approvals bind
// to exactly one guest or fail.
func lookupExact(guests []entity.Guest, name string) (entity.Guest, bool) {
	for _, g := range guests {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return entity.Guest{}, false
}

// formatMMDDYY normalizes any parseable date into MM/DD/YY; unparseable
// input passes through unchanged.
func formatMMDDYY(s string) string {
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format("01/02/06")
}
