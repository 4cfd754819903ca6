package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Source    SourceConfig
	Sheet     SheetConfig
	Lookup    LookupConfig
	Ledger    LedgerConfig
	OCR       OCRConfig
	Reconcile ReconcileConfig
	Server    ServerConfig
}

// SourceConfig selects and configures the document source.
type SourceConfig struct {
	Kind         string // "fs" | "gcs"
	InboxDir     string
	ProcessedDir string
	Bucket       string
	Prefix       string
	DonePrefix   string
}

// SheetConfig locates the XLSX workbook and its two sheets.
type SheetConfig struct {
	Path        string
	TicketSheet string
	MasterSheet string
}

// LookupConfig configures the PNR status lookup client.
type LookupConfig struct {
	Host    string
	APIKey  string
	Timeout time.Duration
}

// LedgerConfig configures the processed-document ledger.
type LedgerConfig struct {
	DSN string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	MaxPages      int
}

// ReconcileConfig carries the matching and routing policy knobs. These are
// policy values, not derived numbers.
type ReconcileConfig struct {
	MatchThreshold int
	DuplicateBand  int
	CutoffDate     string // YYYY-MM-DD; journey dates on/after route DEPARTURE
	Workers        int
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:         getEnv("SOURCE_KIND", "fs"),
			InboxDir:     getEnv("INBOX_DIR", "./inbox"),
			ProcessedDir: getEnv("PROCESSED_DIR", "./processed"),
			Bucket:       getEnv("GCS_BUCKET", ""),
			Prefix:       getEnv("GCS_PREFIX", "inbox/"),
			DonePrefix:   getEnv("GCS_DONE_PREFIX", "processed/"),
		},
		Sheet: SheetConfig{
			Path:        getEnv("SHEET_PATH", "./tickets.xlsx"),
			TicketSheet: getEnv("TICKET_SHEET", "Tickets"),
			MasterSheet: getEnv("MASTER_SHEET", "Master"),
		},
		Lookup: LookupConfig{
			Host:    getEnv("PNR_API_HOST", "irctc-indian-railway-pnr-status.p.rapidapi.com"),
			APIKey:  getEnv("PNR_API_KEY", ""),
			Timeout: getEnvAsDuration("PNR_API_TIMEOUT", 10*time.Second),
		},
		Ledger: LedgerConfig{
			DSN: getEnv("LEDGER_DSN", "file:ledger.db"),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Reconcile: ReconcileConfig{
			MatchThreshold: getEnvAsInt("MATCH_THRESHOLD", 85),
			DuplicateBand:  getEnvAsInt("DUPLICATE_BAND", 3),
			CutoffDate:     getEnv("DEPARTURE_CUTOFF", "2026-02-13"),
			Workers:        getEnvAsInt("EXTRACT_WORKERS", 4),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Sheet.Path == "" {
		return NewAppError("CONFIG_ERROR", "SHEET_PATH is required", ErrInvalidInput)
	}
	if c.Lookup.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "PNR_API_KEY is required", ErrInvalidInput)
	}
	if c.Source.Kind == "gcs" && c.Source.Bucket == "" {
		return NewAppError("CONFIG_ERROR", "GCS_BUCKET is required for gcs source", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", c.Reconcile.CutoffDate); err != nil {
		return NewAppError("CONFIG_ERROR", "DEPARTURE_CUTOFF must be YYYY-MM-DD", ErrInvalidInput)
	}
	return nil
}
