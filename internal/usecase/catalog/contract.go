package catalog

import (
	"context"

	domcatalog "github.com/kailas-cloud/petsearch/internal/domain/catalog"
)

// Writer persists products into the vector index.
type Writer interface {
	EnsureIndex(ctx context.Context) error
	Put(ctx context.Context, product domcatalog.Product, vector []float32) error
}
