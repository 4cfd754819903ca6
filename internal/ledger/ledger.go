// Package ledger records which documents a batch has processed. It sits
// behind database/sql so the same code runs against a local sqlite file in
// development and Postgres in deployment.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Statements run one at a time; pgx's extended protocol rejects
// multi-statement execs.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS processed_documents (
		id           TEXT PRIMARY KEY,
		batch_id     TEXT NOT NULL,
		document_id  TEXT NOT NULL,
		filename     TEXT NOT NULL,
		mode         TEXT NOT NULL,
		pnr          TEXT,
		passengers   INTEGER NOT NULL,
		error        TEXT,
		processed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processed_documents_batch ON processed_documents (batch_id)`,
}

// Entry is one processed document within a batch.
type Entry struct {
	DocumentID string
	Filename   string
	Mode       string
	PNR        string
	Passengers int
	Error      string
}

// Ledger appends processed-document entries keyed by batch.
type Ledger struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var reOrdinalParam = regexp.MustCompile(`\$\d+`)

// rebind converts $N placeholders to ? for the sqlite driver. Queries are
// written with arguments in ordinal sequence, so a plain substitution is
// enough.
func (l *Ledger) rebind(query string) string {
	if l.driver == "pgx" {
		return query
	}
	return reOrdinalParam.ReplaceAllString(query, "?")
}

// Open connects to the ledger database and ensures the schema exists.
// Postgres DSNs select the pgx driver; anything else is treated as a
// sqlite file path or URI.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger (%s): %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init ledger schema: %w", err)
		}
	}

	logger.Info("ledger.open", "driver", driver)
	return &Ledger{db: db, driver: driver, logger: logger}, nil
}

// NewBatchID returns an identifier shared by all entries of one run.
func NewBatchID() string {
	return uuid.NewString()
}

// Record appends one entry. A ledger write failure is logged by callers
// but must not undo the sheet append that already happened.
func (l *Ledger) Record(ctx context.Context, batchID string, e Entry) error {
	_, err := l.db.ExecContext(ctx, l.rebind(
		`INSERT INTO processed_documents
		 (id, batch_id, document_id, filename, mode, pnr, passengers, error, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`),
		uuid.NewString(), batchID, e.DocumentID, e.Filename, e.Mode, e.PNR, e.Passengers, e.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record processed document: %w", err)
	}
	return nil
}

// BatchCount reports how many documents a batch recorded.
func (l *Ledger) BatchCount(ctx context.Context, batchID string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, l.rebind(
		`SELECT COUNT(*) FROM processed_documents WHERE batch_id = $1`), batchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count batch: %w", err)
	}
	return n, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
