// Package catalog loads the product catalog into the vector index: it embeds
// each product's descriptive text and writes the hash with its metadata
// fields and precomputed allergen flags.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain"
	domcatalog "github.com/kailas-cloud/petsearch/internal/domain/catalog"
)

// Service ingests products from a JSON file.
type Service struct {
	writer Writer
	embed  domain.Embedder
	logger *zap.Logger
}

// New creates an ingestion service.
func New(writer Writer, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{writer: writer, embed: embed, logger: logger}
}

// IngestFile loads products from path and indexes them. The index is created
// first when missing. Ingestion stops at the first failing product so a
// partial load is visible in the error rather than silently skipped.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read products file: %w", err)
	}

	var products []domcatalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return 0, fmt.Errorf("parse products file: %w", err)
	}

	return s.Ingest(ctx, products)
}

// Ingest embeds and writes the given products.
func (s *Service) Ingest(ctx context.Context, products []domcatalog.Product) (int, error) {
	if err := s.writer.EnsureIndex(ctx); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}

	for i, p := range products {
		res, err := s.embed.Embed(ctx, p.EmbeddingText())
		if err != nil {
			return i, fmt.Errorf("embed product %s: %w", p.ID, err)
		}
		if err := s.writer.Put(ctx, p, res.Embedding); err != nil {
			return i, fmt.Errorf("index product %s: %w", p.ID, err)
		}
	}

	s.logger.Info("catalog ingested", zap.Int("products", len(products)))
	return len(products), nil
}
