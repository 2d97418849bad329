package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/db"
	dbRedis "github.com/kailas-cloud/petsearch/internal/db/redis"
	domcatalog "github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
	catalogrepo "github.com/kailas-cloud/petsearch/internal/repository/catalog"
	openaiEmb "github.com/kailas-cloud/petsearch/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/petsearch/internal/usecase/catalog"
	"github.com/kailas-cloud/petsearch/internal/usecase/compose"
	searchuc "github.com/kailas-cloud/petsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultModel            = "text-embedding-3-small"
	defaultDimensions       = 1536
)

// Client is the embedded petsearch entry point.
type Client struct {
	store     db.Store
	searchSvc *searchuc.Service
	ingestSvc *cataloguc.Service
	repo      *catalogrepo.Repo
}

// New creates a Client and connects to the vector store.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		model:      defaultModel,
		dimensions: defaultDimensions,
		alpha:      compose.DefaultAlpha,
	}
	for _, o := range opts {
		o(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("at least one store address is required")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.apiKey,
		BaseURL:    cfg.baseURL,
		Model:      cfg.model,
		Dimensions: cfg.dimensions,
		Provider:   "openai",
		Logger:     cfg.logger,
	})

	repo := catalogrepo.New(store, embedder, cfg.dimensions)
	composer := compose.New(embedder).WithAlpha(cfg.alpha)

	return &Client{
		store:     store,
		searchSvc: searchuc.New(repo, composer, cfg.logger),
		ingestSvc: cataloguc.New(repo, embedder, cfg.logger),
		repo:      repo,
	}, nil
}

// EnsureIndex creates the product index when missing.
func (c *Client) EnsureIndex(ctx context.Context) error {
	return c.repo.EnsureIndex(ctx)
}

// Ingest embeds and indexes the given products.
func (c *Client) Ingest(ctx context.Context, products []domcatalog.Product) (int, error) {
	return c.ingestSvc.Ingest(ctx, products)
}

// IngestFile loads products from a JSON file and indexes them.
func (c *Client) IngestFile(ctx context.Context, path string) (int, error) {
	return c.ingestSvc.IngestFile(ctx, path)
}

// Product reads one indexed product by id.
func (c *Client) Product(ctx context.Context, id string) (domcatalog.Product, error) {
	return c.repo.Get(ctx, id)
}

// DeleteProduct removes a product from the index.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.repo.Delete(ctx, id)
}

// Search runs one hybrid constraint search.
func (c *Client) Search(
	ctx context.Context, it intent.Intent, maxResults int,
) ([]result.Match, error) {
	return c.searchSvc.Search(ctx, it, maxResults)
}

// Close releases the store connection.
func (c *Client) Close() {
	c.store.Close()
}
