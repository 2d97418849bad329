package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
	"github.com/kailas-cloud/petsearch/internal/metrics"
)

const (
	// OverFetchFactor is how many times more candidates than requested are
	// pulled from the index, leaving the post-filter headroom to still fill
	// the result even when raw neighbors get rejected on text grounds.
	OverFetchFactor = 3

	// DefaultMaxResults is the result count when the caller does not specify one.
	DefaultMaxResults = 5
)

// Service runs the hybrid constraint search: metadata pre-filter plus
// contrastive vector ranking plus literal text post-filter.
type Service struct {
	retriever Retriever
	composer  Composer
	logger    *zap.Logger
}

// New creates a search service.
func New(retriever Retriever, composer Composer, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, composer: composer, logger: logger}
}

// Search executes one turn's search for the given resolved intent.
//
// An empty result is a normal terminal outcome, not an error. Store and
// embedding failures surface as errors; nothing is swallowed into a default
// search, because a search that cannot verify exclusion safety must fail
// loudly rather than return potentially-unsafe matches.
func (s *Service) Search(
	ctx context.Context, it intent.Intent, maxResults int,
) ([]result.Match, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	it = it.Normalized().ResolveConflicts()
	if it.Query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidIntent)
	}

	expr, err := BuildFilter(it)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidIntent, err)
	}

	// Contrastive composition only applies when constraint terms exist;
	// otherwise the raw query text goes to the retriever as-is.
	var vector []float32
	if it.HasConstraintTerms() {
		vector, err = s.composer.Compose(ctx, it.Query, it.Exclusions, it.Requirements)
		if err != nil {
			return nil, fmt.Errorf("compose query: %w", err)
		}
	}

	k := OverFetchFactor * maxResults
	candidates, err := s.retriever.Retrieve(ctx, it.Query, vector, expr, k)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	matches := postFilter(candidates, it.Exclusions, it.Requirements, maxResults)

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchCandidatesTotal.WithLabelValues("fetched").Add(float64(len(candidates)))
	metrics.SearchCandidatesTotal.WithLabelValues("accepted").Add(float64(len(matches)))

	s.logger.Debug("search completed",
		zap.String("query", it.Query),
		zap.Strings("exclusions", it.Exclusions),
		zap.Strings("requirements", it.Requirements),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}
