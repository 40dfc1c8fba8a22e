package driven

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// CatalogLoader reads the authoritative list of documents to ingest.
type CatalogLoader interface {
	// Load returns the catalog records in file order.
	// Returns domain.ErrMissingCatalog when the catalog does not exist
	// and domain.ErrSchema when a required column is absent.
	Load(ctx context.Context) ([]domain.SourceRecord, error)

	// Path returns the catalog location.
	Path() string
}
