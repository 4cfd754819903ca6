package source

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Extensions the pipeline can turn into text.
var allowedExts = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// FS reads documents from a local inbox directory and relocates processed
// ones into a sibling directory.
type FS struct {
	InboxDir     string
	ProcessedDir string
	logger       *slog.Logger
}

func NewFS(inboxDir, processedDir string, logger *slog.Logger) *FS {
	if logger == nil {
		logger = slog.Default()
	}
	return &FS{InboxDir: inboxDir, ProcessedDir: processedDir, logger: logger}
}

func (s *FS) List(ctx context.Context) ([]Document, error) {
	entries, err := os.ReadDir(s.InboxDir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := normalizeExt(filepath.Ext(e.Name()))
		if _, ok := allowedExts[ext]; !ok {
			continue
		}
		docs = append(docs, Document{
			ID:          filepath.Join(s.InboxDir, e.Name()),
			Name:        e.Name(),
			ContentType: mime.TypeByExtension("." + ext),
		})
	}
	return docs, nil
}

func (s *FS) Fetch(ctx context.Context, id string) ([]byte, error) {
	return os.ReadFile(id)
}

func (s *FS) Relocate(ctx context.Context, id string) error {
	if s.ProcessedDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.ProcessedDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(s.ProcessedDir, filepath.Base(id))
	if err := os.Rename(id, dest); err != nil {
		return fmt.Errorf("relocate %s: %w", id, err)
	}
	s.logger.Debug("source.fs.relocated", "from", id, "to", dest)
	return nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
