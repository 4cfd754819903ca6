// Package source abstracts where ticket documents come from. A source
// yields byte content for named documents and relocates them after
// successful processing.
package source

import "context"

// Document is one listed item in the source. Names are not deduplicated;
// identity is the source-specific ID.
type Document struct {
	ID          string
	Name        string
	ContentType string
}

// Source lists, fetches and relocates documents. Relocate is post-success
// housekeeping only; failures there never fail the batch.
type Source interface {
	List(ctx context.Context) ([]Document, error)
	Fetch(ctx context.Context, id string) ([]byte, error)
	Relocate(ctx context.Context, id string) error
}
