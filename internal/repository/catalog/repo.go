// Package catalog is the Redis-backed product index: it writes product
// hashes with their metadata fields, allergen flags and embedding vector,
// and serves filtered k-NN retrieval for the search usecase.
package catalog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/petsearch/internal/db"
	"github.com/kailas-cloud/petsearch/internal/domain"
	domcatalog "github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

const (
	// KeyPrefix namespaces product hashes.
	KeyPrefix = "petsearch:product:"
	// IndexName is the FT index over product hashes.
	IndexName = "petsearch:products:idx"

	// docField carries the full product JSON; the remaining hash fields
	// exist only for index-level filtering.
	docField = "doc"

	hnswM           = 16
	hnswEFConstruct = 200
)

// store is the consumer interface for product index operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the catalog writer and the search retriever.
type Repo struct {
	store store
	embed domain.Embedder
	dim   int
}

// New creates a catalog repository. dim is the embedding dimension the
// index is built for.
func New(s store, embed domain.Embedder, dim int) *Repo {
	return &Repo{store: s, embed: embed, dim: dim}
}

// EnsureIndex creates the product FT index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	builder := db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Tag("species").
		Tag("brand").
		Tag("life_stage").
		Tag("size_category").
		Numeric("price")
	for _, field := range domcatalog.AllergenFields() {
		builder = builder.Tag(field)
	}
	def, err := builder.
		VectorHNSW("vector", r.dim, db.DistanceCosine, hnswM, hnswEFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Put writes one product hash with its metadata, allergen flags and vector.
func (r *Repo) Put(ctx context.Context, p domcatalog.Product, vector []float32) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product %s: %w", p.ID, err)
	}

	fields := map[string]string{
		docField:        string(doc),
		"species":       p.Species,
		"brand":         p.Brand,
		"life_stage":    p.LifeStage,
		"size_category": p.SizeCategory,
		"price":         strconv.FormatFloat(p.Price, 'f', -1, 64),
		"vector":        vectorToBytes(vector),
	}
	for _, term := range domcatalog.FlagTerms() {
		field, _ := domcatalog.FlagField(term)
		if domcatalog.HasAllergen(p, term) {
			fields[field] = "1"
		} else {
			fields[field] = "0"
		}
	}

	if err := r.store.HSet(ctx, KeyPrefix+p.ID, fields); err != nil {
		return fmt.Errorf("write product %s: %w", p.ID, err)
	}
	return nil
}

// Get reads one product back from its hash. A missing key surfaces as
// ErrProductNotFound; Redis reports it as an empty field map, not an error.
func (r *Repo) Get(ctx context.Context, id string) (domcatalog.Product, error) {
	fields, err := r.store.HGetAll(ctx, KeyPrefix+id)
	if err != nil {
		return domcatalog.Product{}, fmt.Errorf("read product %s: %w", id, err)
	}
	doc, ok := fields[docField]
	if !ok {
		return domcatalog.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}

	var p domcatalog.Product
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return domcatalog.Product{}, fmt.Errorf("parse product %s: %w", id, err)
	}
	return p, nil
}

// Delete removes a product hash. The FT index drops the document with it.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

// Retrieve runs one filtered k-NN query. When no composed vector is given
// the raw query text is embedded here, since the index stores only vectors.
// Candidates keep the store's distance-ascending order with raw distances.
func (r *Repo) Retrieve(
	ctx context.Context, text string, vector []float32,
	filters filter.Expression, k int,
) ([]result.Candidate, error) {
	if len(vector) == 0 {
		res, err := r.embed.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
		}
		vector = res.Embedding
	}

	q := &db.KNNQuery{
		IndexName:    IndexName,
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{docField},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	candidates := make([]result.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc, ok := entry.Fields[docField]
		if !ok {
			continue
		}
		var p domcatalog.Product
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("parse product %s: %w", entry.Key, err)
		}
		candidates = append(candidates, result.NewCandidate(p, entry.Distance))
	}
	return candidates, nil
}

// vectorToBytes serializes a vector the way the FT index expects it.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
