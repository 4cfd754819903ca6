// ticket-batch runs the workflow steps once and exits. It exists for cron
// jobs and manual runs; ticketd exposes the same operations over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
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
	"github.com/guestlist-ops/ticket-reconciler/internal/sheetstore"
	"github.com/guestlist-ops/ticket-reconciler/internal/source"
)

func main() {
	// "all" is extract then suggest. Commit stays separate: it is only safe
	// after a human has reviewed the suggested and approved columns.
	mode := flag.String("mode", "all", "which step to run: extract | suggest | commit | all (extract+suggest)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*mode, logger); err != nil {
		logger.Error("batch.failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func run(mode string, logger *slog.Logger) error {
	switch mode {
	case "extract", "suggest", "commit", "all":
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workbook := sheetstore.NewWorkbook(cfg.Sheet.Path, cfg.Sheet.TicketSheet, cfg.Sheet.MasterSheet, logger)
	cutoff, _ := time.Parse("2006-01-02", cfg.Reconcile.CutoffDate)
	matcher := match.NewMatcher(cfg.Reconcile.MatchThreshold, cfg.Reconcile.DuplicateBand)
	reconciler := reconcile.NewService(workbook, workbook, matcher, cutoff, logger)

	if mode == "extract" || mode == "all" {
		src, closeSrc, err := newSource(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSrc()

		ldg, err := ledger.Open(ctx, cfg.Ledger.DSN, logger)
		if err != nil {
			return err
		}
		defer ldg.Close()

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

		stats, err := processor.Run(ctx)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		logger.Info("batch.extract.done",
			"documents", stats.Documents, "succeeded", stats.Succeeded, "errors", stats.Errors)
		for _, f := range stats.Failures {
			logger.Warn("batch.extract.failure", "detail", f)
		}
	}

	if mode == "suggest" || mode == "all" {
		stats, err := reconciler.Suggest(ctx)
		if err != nil {
			return fmt.Errorf("suggest: %w", err)
		}
		logger.Info("batch.suggest.done",
			"matched", stats.Matched, "duplicates", stats.Duplicates,
			"unmatched", stats.Unmatched, "skipped", stats.Skipped)
	}

	if mode == "commit" {
		stats, err := reconciler.Commit(ctx)
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		logger.Info("batch.commit.done",
			"autofilled", stats.Autofilled, "committed", stats.Committed,
			"skipped", stats.Skipped, "errors", stats.Errors)
	}

	return nil
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
