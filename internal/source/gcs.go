package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS reads documents from a bucket prefix and relocates processed objects
// under a done-prefix via copy-then-delete.
type GCS struct {
	client     *storage.Client
	bucket     string
	prefix     string
	donePrefix string
	logger     *slog.Logger
}

func NewGCS(ctx context.Context, bucket, prefix, donePrefix string, logger *slog.Logger) (*GCS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		donePrefix: donePrefix,
		logger:     logger,
	}, nil
}

func (s *GCS) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		name := path.Base(attrs.Name)
		ext := normalizeExt(path.Ext(name))
		if _, ok := allowedExts[ext]; !ok {
			continue
		}
		docs = append(docs, Document{
			ID:          attrs.Name,
			Name:        name,
			ContentType: attrs.ContentType,
		})
	}
	return docs, nil
}

func (s *GCS) Fetch(ctx context.Context, id string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(id).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", id, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Warn("source.gcs.reader_close_error", "object", id, "error", err)
		}
	}()
	return io.ReadAll(r)
}

func (s *GCS) Relocate(ctx context.Context, id string) error {
	if s.donePrefix == "" {
		return nil
	}
	bkt := s.client.Bucket(s.bucket)
	src := bkt.Object(id)
	dst := bkt.Object(s.donePrefix + path.Base(id))

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("copy %s: %w", id, err)
	}
	if err := src.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.logger.Debug("source.gcs.relocated", "object", id)
	return nil
}

// Close releases the underlying storage client.
func (s *GCS) Close() error {
	return s.client.Close()
}
