package sheetstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/guestlist-ops/ticket-reconciler/internal/common"
	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
	"github.com/guestlist-ops/ticket-reconciler/internal/match"
)

var ticketHeaders = []string{
	"Journey Date", "Departure Time", "Arrival Date", "Arrival Time",
	"Mode", "Seat", "Details", "Name", "Number", "Train/Airline",
	"Status/Route", "PNR", "Source", "Suggested", "Score", "Approved",
	"Commit Status",
}

// Workbook implements TicketStore and RegistryStore on one XLSX file.
// Every operation is a full open-mutate-save cycle; the store is a stand-in
// for a remote spreadsheet, not a database, and its read-modify-write is
// not atomic. The mutex serializes writers within the process.
type Workbook struct {
	path        string
	ticketSheet string
	masterSheet string
	logger      *slog.Logger

	mu sync.Mutex
}

func NewWorkbook(path, ticketSheet, masterSheet string, logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{
		path:        path,
		ticketSheet: ticketSheet,
		masterSheet: masterSheet,
		logger:      logger,
	}
}

func (w *Workbook) open() (*excelize.File, error) {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if _, err := f.NewSheet(w.ticketSheet); err != nil {
			return nil, err
		}
		if _, err := f.NewSheet(w.masterSheet); err != nil {
			return nil, err
		}
		// excelize seeds new files with "Sheet1"; the workbook holds exactly
		// the two declared sheets. Indexes shift on delete, so the active
		// sheet is resolved afterwards.
		if w.ticketSheet != "Sheet1" && w.masterSheet != "Sheet1" {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return nil, err
			}
		}
		idx, err := f.GetSheetIndex(w.ticketSheet)
		if err != nil {
			return nil, err
		}
		f.SetActiveSheet(idx)
		for i, h := range ticketHeaders {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(w.ticketSheet, cell, h); err != nil {
				return nil, err
			}
		}
		if err := f.SaveAs(w.path); err != nil {
			return nil, common.WrapError(err, "create workbook")
		}
		w.logger.Info("sheetstore.created", "path", w.path)
		return f, nil
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "opening workbook", common.ErrStoreUnavailable)
	}
	return f, nil
}

// Append writes rows after the current last ticket row. Only the 13
// extraction columns are written; the reconciliation tail starts blank.
func (w *Workbook) Append(ctx context.Context, rows []TicketRow) error {
	if len(rows) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer closeQuietly(f, w.logger)

	existing, err := f.GetRows(w.ticketSheet)
	if err != nil {
		return common.WrapError(err, "read ticket sheet")
	}
	next := len(existing) + 1

	for _, row := range rows {
		for col, v := range row.cells() {
			cell, _ := excelize.CoordinatesToCellName(col+1, next)
			if err := f.SetCellValue(w.ticketSheet, cell, v); err != nil {
				return common.WrapError(err, "write ticket cell")
			}
		}
		next++
	}

	if err := f.Save(); err != nil {
		return common.WrapError(err, "save workbook")
	}
	w.logger.Info("sheetstore.append.ok", "rows", len(rows))
	return nil
}

// List reads every ticket row below the header. Rows with fewer than 8
// populated columns (no passenger name possible) are skipped, matching how
// the sheet is read by the reconciliation batch.
func (w *Workbook) List(ctx context.Context) ([]TicketRow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer closeQuietly(f, w.logger)

	raw, err := f.GetRows(w.ticketSheet)
	if err != nil {
		return nil, common.WrapError(err, "read ticket sheet")
	}

	var rows []TicketRow
	for i, cells := range raw {
		if i == 0 { // header
			continue
		}
		if len(cells) < 8 {
			continue
		}
		rows = append(rows, rowFromCells(i+1, cells))
	}
	return rows, nil
}

func (w *Workbook) WriteSuggestion(ctx context.Context, rowNo int, suggested string, score int) error {
	return w.writeTicketCells(rowNo, map[string]string{
		"N": suggested,
		"O": strconv.Itoa(score),
	})
}

func (w *Workbook) WriteApproved(ctx context.Context, rowNo int, approved string) error {
	return w.writeTicketCells(rowNo, map[string]string{"P": approved})
}

func (w *Workbook) WriteStatuses(ctx context.Context, updates []StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer closeQuietly(f, w.logger)

	for _, u := range updates {
		cell := fmt.Sprintf("Q%d", u.RowNo)
		if err := f.SetCellValue(w.ticketSheet, cell, u.Status); err != nil {
			return common.WrapError(err, "write commit status")
		}
	}
	if err := f.Save(); err != nil {
		return common.WrapError(err, "save workbook")
	}
	return nil
}

// LoadGuests reads the master registry (name, place, venue) and computes
// each guest's normalized form once, up front.
func (w *Workbook) LoadGuests(ctx context.Context) ([]entity.Guest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer closeQuietly(f, w.logger)

	raw, err := f.GetRows(w.masterSheet)
	if err != nil {
		return nil, common.WrapError(err, "read master sheet")
	}

	var guests []entity.Guest
	for i, cells := range raw {
		if i == 0 {
			continue
		}
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		g := entity.Guest{
			Name:  cells[0],
			Norm:  match.Normalize(cells[0]),
			RowNo: i + 1,
		}
		if len(cells) > 2 {
			g.Place = cells[2]
		}
		if len(cells) > 3 {
			g.Venue = cells[3]
		}
		guests = append(guests, g)
	}
	w.logger.Info("sheetstore.master.loaded", "guests", len(guests))
	return guests, nil
}

// ApplyUpdates writes a commit batch into the master sheet.
func (w *Workbook) ApplyUpdates(ctx context.Context, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer closeQuietly(f, w.logger)

	for _, u := range updates {
		cell := fmt.Sprintf("%s%d", u.Col, u.RowNo)
		if err := f.SetCellValue(w.masterSheet, cell, u.Value); err != nil {
			return common.WrapError(err, "write master cell")
		}
	}
	if err := f.Save(); err != nil {
		return common.WrapError(err, "save workbook")
	}
	w.logger.Info("sheetstore.master.updated", "cells", len(updates))
	return nil
}

func (w *Workbook) writeTicketCells(rowNo int, cells map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer closeQuietly(f, w.logger)

	for col, v := range cells {
		if err := f.SetCellValue(w.ticketSheet, fmt.Sprintf("%s%d", col, rowNo), v); err != nil {
			return common.WrapError(err, "write ticket cell")
		}
	}
	return f.Save()
}

func rowFromCells(rowNo int, cells []string) TicketRow {
	at := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return TicketRow{
		RowNo:         rowNo,
		JourneyDate:   at(0),
		DepartureTime: at(1),
		ArrivalDate:   at(2),
		ArrivalTime:   at(3),
		Mode:          at(4),
		Seat:          at(5),
		Details:       at(6),
		Name:          at(7),
		VehicleNumber: at(8),
		VehicleName:   at(9),
		Status:        at(10),
		PNR:           at(11),
		Source:        at(12),
		RowState: entity.RowState{
			Suggested:    at(13),
			Score:        at(14),
			Approved:     at(15),
			CommitStatus: at(16),
		},
	}
}

func closeQuietly(f *excelize.File, logger *slog.Logger) {
	if err := f.Close(); err != nil {
		logger.Warn("sheetstore.close_error", "error", err)
	}
}
