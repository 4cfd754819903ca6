package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guestlist-ops/ticket-reconciler/internal/classify"
	"github.com/guestlist-ops/ticket-reconciler/internal/common"
	"github.com/guestlist-ops/ticket-reconciler/internal/ledger"
	"github.com/guestlist-ops/ticket-reconciler/internal/match"
	"github.com/guestlist-ops/ticket-reconciler/internal/ocr"
	"github.com/guestlist-ops/ticket-reconciler/internal/pipeline"
	"github.com/guestlist-ops/ticket-reconciler/internal/pnrapi"
	"github.com/guestlist-ops/ticket-reconciler/internal/reconcile"
	"github.com/guestlist-ops/ticket-reconciler/internal/server"
	"github.com/guestlist-ops/ticket-reconciler/internal/sheetstore"
	"github.com/guestlist-ops/ticket-reconciler/internal/source"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("ticketd.config.invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := newSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("ticketd.source.init_failed", "error", err)
		os.Exit(1)
	}
	defer closeSrc()

	ldg, err := ledger.Open(ctx, cfg.Ledger.DSN, logger)
	if err != nil {
		logger.Error("ticketd.ledger.open_failed", "error", err)
		os.Exit(1)
	}
	defer ldg.Close()

	workbook := sheetstore.NewWorkbook(cfg.Sheet.Path, cfg.Sheet.TicketSheet, cfg.Sheet.MasterSheet, logger)
	textifier := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	lookup := pnrapi.NewClient(cfg.Lookup.Host, cfg.Lookup.APIKey, cfg.Lookup.Timeout, logger)

	processor := pipeline.NewProcessor(src, textifier, classify.New(logger), lookup,
		workbook, ldg, cfg.Reconcile.Workers, logger)

	// Validate() already checked the format.
	cutoff, _ := time.Parse("2006-01-02", cfg.Reconcile.CutoffDate)
	matcher := match.NewMatcher(cfg.Reconcile.MatchThreshold, cfg.Reconcile.DuplicateBand)
	reconciler := reconcile.NewService(workbook, workbook, matcher, cutoff, logger)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.New(processor, reconciler, logger).Handler(),
	}

	go func() {
		logger.Info("ticketd.http.serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ticketd.http.serve_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("ticketd.shutdown.start")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ticketd.shutdown.failed", "error", err)
	}
	logger.Info("ticketd.shutdown.done")
}

func newSource(ctx context.Context, cfg *common.Config, logger *slog.Logger) (source.Source, func(), error) {
	if cfg.Source.Kind == "gcs" {
		gcs, err := source.NewGCS(ctx, cfg.Source.Bucket, cfg.Source.Prefix, cfg.Source.DonePrefix, logger)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() {
			if err := gcs.Close(); err != nil {
				logger.Warn("source.gcs.close_failed", "error", err)
			}
		}, nil
	}
	return source.NewFS(cfg.Source.InboxDir, cfg.Source.ProcessedDir, logger), func() {}, nil
}
