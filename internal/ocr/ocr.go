// Package ocr turns ticket documents into plain text using the poppler and
// tesseract command line tools.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
}

// Textifier produces the transcript of one document.
type Textifier interface {
	Text(ctx context.Context, filename string, data []byte) (string, error)
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Text writes the document to a temp file and picks a strategy by extension.
// PDFs try the embedded text layer first; scanned PDFs and images go through
// tesseract.
func (e *Extractor) Text(ctx context.Context, filename string, data []byte) (string, error) {
	start := time.Now()
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	tmpDir, err := os.MkdirTemp("", "tr-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tmpdir.remove_failed", "dir", tmpDir, "error", err)
		}
	}()

	path := filepath.Join(tmpDir, "doc."+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}

	var text, method string
	switch ext {
	case "pdf":
		text, method, err = e.extractPDF(ctx, path, tmpDir)
	case "jpg", "jpeg", "png":
		method = "image-ocr"
		text, err = e.tesseractOCR(ctx, path)
	default:
		return "", fmt.Errorf("unsupported extension: %q", ext)
	}
	if err != nil {
		return "", err
	}

	e.logger.Debug("ocr.extract.ok",
		"file", filename,
		"method", method,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// Scanned tickets have no text layer; anything shorter than this after
// pdftotext gets re-run through rasterize-and-OCR.
const minTextLayerChars = 40

func (e *Extractor) extractPDF(ctx context.Context, path, tmpDir string) (string, string, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err == nil && len(strings.TrimSpace(string(out))) >= minTextLayerChars {
		return string(out), "pdf-text", nil
	}

	text, err := e.pdfToOCR(ctx, path, tmpDir)
	if err != nil {
		return "", "", err
	}
	return text, "pdf-ocr", nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path, tmpDir string) (string, error) {
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix); err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// generated as prefix-1.png, prefix-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := e.tesseractOCR(ctx, img)
		if err != nil {
			e.logger.Warn("ocr.page.failed", "image", img, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
