package compose

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/petsearch/internal/domain"
)

// DefaultAlpha is the default contrast weight: how hard exclusion terms push
// the query vector away and requirement terms pull it toward their concepts.
const DefaultAlpha = 0.7

// Expansions maps generic requirement terms to the canonical phrase embedded
// in their place. Seeded with the grain entry; extend as new generic
// categories show up.
var Expansions = map[string]string{
	"grain": "grain wheat corn rice barley oatmeal",
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Composer builds a single query vector from a base query plus exclusion and
// requirement terms via weighted vector arithmetic. The result is a soft
// ranking signal only; exclusion enforcement stays with the text post-filter.
type Composer struct {
	embed Embedder
	alpha float32
}

// New creates a composer with the default contrast weight.
func New(embed Embedder) *Composer {
	return &Composer{embed: embed, alpha: DefaultAlpha}
}

// WithAlpha overrides the contrast weight.
func (c *Composer) WithAlpha(alpha float64) *Composer {
	c.alpha = float32(alpha)
	return c
}

// Compose embeds the base query, subtracts alpha-weighted exclusion term
// embeddings, adds alpha-weighted requirement term embeddings (expanded via
// Expansions when available) and L2-normalizes the result. A zero-norm
// vector is returned unchanged.
//
// Term embeddings are fetched concurrently; all calls are joined before any
// combination happens, so a failed call aborts the whole composition.
func (c *Composer) Compose(
	ctx context.Context, query string, exclusions, requirements []string,
) ([]float32, error) {
	texts := make([]string, 0, 1+len(exclusions)+len(requirements))
	texts = append(texts, query)
	texts = append(texts, exclusions...)
	for _, req := range requirements {
		texts = append(texts, expandTerm(req))
	}

	vecs, err := c.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	base := vecs[0]
	vec := make([]float32, len(base))
	copy(vec, base)

	for i := range exclusions {
		term := vecs[1+i]
		if len(term) != len(vec) {
			return nil, fmt.Errorf("exclusion embedding dimension mismatch: %d != %d", len(term), len(vec))
		}
		for j := range vec {
			vec[j] -= c.alpha * term[j]
		}
	}

	for i := range requirements {
		term := vecs[1+len(exclusions)+i]
		if len(term) != len(vec) {
			return nil, fmt.Errorf("requirement embedding dimension mismatch: %d != %d", len(term), len(vec))
		}
		for j := range vec {
			vec[j] += c.alpha * term[j]
		}
	}

	return normalize(vec), nil
}

// embedAll fetches embeddings for all texts concurrently, preserving order.
func (c *Composer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for i, text := range texts {
		g.Go(func() error {
			res, err := c.embed.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed %q: %w", text, err)
			}
			vecs[i] = res.Embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vecs, nil
}

func expandTerm(term string) string {
	if expanded, ok := Expansions[term]; ok {
		return expanded
	}
	return term
}

// normalize scales the vector to unit L2 norm; a zero vector stays unchanged.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
