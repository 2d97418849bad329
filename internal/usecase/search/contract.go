package search

import (
	"context"

	"github.com/kailas-cloud/petsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

// Retriever issues one filtered k-NN query against the vector store.
// Either vector or text is set: a composed vector is searched as-is, raw
// query text is embedded at the retrieval layer first. Candidates come back
// in store order (distance-ascending) with raw distances.
type Retriever interface {
	Retrieve(
		ctx context.Context, text string, vector []float32,
		filters filter.Expression, k int,
	) ([]result.Candidate, error)
}

// Composer builds a contrastive query vector from a base query plus
// exclusion and requirement terms.
type Composer interface {
	Compose(ctx context.Context, query string, exclusions, requirements []string) ([]float32, error)
}
