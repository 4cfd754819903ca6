// Package pipeline drives extraction end to end: fetch a document, OCR it,
// classify it, extract its facts and append the result to the ticket sheet.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/guestlist-ops/ticket-reconciler/internal/classify"
	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
	"github.com/guestlist-ops/ticket-reconciler/internal/extract"
	"github.com/guestlist-ops/ticket-reconciler/internal/ledger"
	"github.com/guestlist-ops/ticket-reconciler/internal/ocr"
	"github.com/guestlist-ops/ticket-reconciler/internal/pnrapi"
	"github.com/guestlist-ops/ticket-reconciler/internal/sheetstore"
	"github.com/guestlist-ops/ticket-reconciler/internal/source"
)

// TrainLookup resolves a PNR to its reservation status.
type TrainLookup interface {
	Lookup(ctx context.Context, pnr string) (*pnrapi.StatusData, error)
}

type Processor struct {
	src        source.Source
	textifier  ocr.Textifier
	classifier *classify.Classifier
	lookup     TrainLookup
	tickets    sheetstore.TicketStore
	ledger     *ledger.Ledger // optional
	workers    int
	logger     *slog.Logger

	mu sync.Mutex // serializes sheet appends and ledger writes
}

func NewProcessor(src source.Source, textifier ocr.Textifier, classifier *classify.Classifier,
	lookup TrainLookup, tickets sheetstore.TicketStore, ldg *ledger.Ledger,
	workers int, logger *slog.Logger) *Processor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		src:        src,
		textifier:  textifier,
		classifier: classifier,
		lookup:     lookup,
		tickets:    tickets,
		ledger:     ldg,
		workers:    workers,
		logger:     logger,
	}
}

type Stats struct {
	Documents int      `json:"documents"`
	Succeeded int      `json:"succeeded"`
	Errors    int      `json:"errors"`
	Failures  []string `json:"failures,omitempty"`
}

// Run processes every document the source lists. Documents extract in
// parallel; the sheet append, ledger write and relocation of each document
// happen under one lock so rows land whole. Error records are appended like
// any other row, but their documents stay in the inbox for another attempt.
func (p *Processor) Run(ctx context.Context) (Stats, error) {
	docs, err := p.src.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	batchID := ledger.NewBatchID()
	p.logger.Info("pipeline.run.start", "batch", batchID, "documents", len(docs))

	var stats Stats
	stats.Documents = len(docs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, doc := range docs {
		g.Go(func() error {
			rec := p.process(ctx, doc)

			p.mu.Lock()
			defer p.mu.Unlock()

			if err := p.tickets.Append(ctx, sheetstore.RowsForRecord(rec)); err != nil {
				return err
			}
			p.record(ctx, batchID, doc, rec)

			if rec.IsError() {
				stats.Errors++
				stats.Failures = append(stats.Failures, doc.Name+": "+rec.Err)
				return nil
			}
			stats.Succeeded++
			if err := p.src.Relocate(ctx, doc.ID); err != nil {
				p.logger.Warn("pipeline.relocate.failed", "document", doc.ID, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	p.logger.Info("pipeline.run.done",
		"batch", batchID, "succeeded", stats.Succeeded, "errors", stats.Errors)
	return stats, nil
}

func (p *Processor) process(ctx context.Context, doc source.Document) entity.TicketRecord {
	data, err := p.src.Fetch(ctx, doc.ID)
	if err != nil {
		return entity.ErrorRecord(doc.Name, "", "fetch failed: "+err.Error())
	}

	text, err := p.textifier.Text(ctx, doc.Name, data)
	if err != nil {
		return entity.ErrorRecord(doc.Name, "", "OCR failed: "+err.Error())
	}

	switch p.classifier.Classify(text) {
	case entity.ModeTrain:
		return p.processTrain(ctx, doc.Name, text)
	case entity.ModeFlight:
		return p.processFlight(doc.Name, text)
	default:
		return entity.ErrorRecord(doc.Name, "", "unknown ticket type (not a valid train/flight ticket)")
	}
}

func (p *Processor) processTrain(ctx context.Context, filename, text string) entity.TicketRecord {
	pnr := extract.PNR(text)
	if pnr == "" {
		return entity.ErrorRecord(filename, "", "PNR not found in ticket")
	}

	names := extract.TrainPassengers(text)

	status, err := p.lookup.Lookup(ctx, pnr)
	if err != nil {
		p.logger.Error("pipeline.train.lookup_failed", "file", filename, "pnr", pnr, "error", err)
		return entity.ErrorRecord(filename, pnr, "lookup failed for PNR "+pnr)
	}

	rec := pnrapi.BuildTrainRecord(status, names, filename, p.logger)
	if len(rec.Passengers) == 0 {
		// A lookup can succeed and still carry no passenger list. Without
		// this the record produces zero sheet rows and the ticket vanishes.
		return entity.ErrorRecord(filename, pnr, "no passengers found for PNR "+pnr)
	}
	return rec
}

func (p *Processor) processFlight(filename, text string) entity.TicketRecord {
	d := extract.Flight(text)
	if len(d.Passengers) == 0 {
		return entity.ErrorRecord(filename, d.PNR, "no passengers found in flight ticket")
	}

	return entity.TicketRecord{
		Mode:          entity.ModeFlight,
		SourceFile:    filename,
		PNR:           d.PNR,
		Passengers:    d.Passengers,
		Details:       strings.TrimSpace(d.Airline + " " + d.FlightNumber),
		DepartureTime: d.DepartureTime,
		ArrivalTime:   d.ArrivalTime,
		Airline:       d.Airline,
		FlightNumber:  d.FlightNumber,
		Route:         d.Route,
		Date:          d.Date,
	}
}

// record logs the document into the batch ledger. Ledger failures are
// reported but never fail the batch; the sheet row is already in place.
func (p *Processor) record(ctx context.Context, batchID string, doc source.Document, rec entity.TicketRecord) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.Record(ctx, batchID, ledger.Entry{
		DocumentID: doc.ID,
		Filename:   doc.Name,
		Mode:       string(rec.Mode),
		PNR:        rec.PNR,
		Passengers: len(rec.Passengers),
		Error:      rec.Err,
	})
	if err != nil {
		p.logger.Warn("pipeline.ledger.record_failed", "document", doc.ID, "error", err)
	}
}
