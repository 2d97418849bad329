package result

import "github.com/kailas-cloud/petsearch/internal/domain/catalog"

// Candidate is a raw retrieval hit: stable identifier, raw index distance
// and the resolved metadata snapshot. Candidates arrive in store order
// (distance-ascending) and are not re-sorted downstream.
type Candidate struct {
	product  catalog.Product
	distance float64
}

// NewCandidate creates a retrieval candidate.
func NewCandidate(product catalog.Product, distance float64) Candidate {
	return Candidate{product: product, distance: distance}
}

// Product returns the metadata snapshot.
func (c Candidate) Product() catalog.Product { return c.product }

// Distance returns the raw distance from the index.
func (c Candidate) Distance() float64 { return c.distance }

// Similarity converts distance to a similarity score: 1 - distance under a
// normalized-vector cosine space. Values are deliberately not clamped; an
// out-of-range similarity is a diagnostic signal of a non-unit metric.
func (c Candidate) Similarity() float64 { return 1 - c.distance }

// Match is a candidate that survived post-filtering, carrying its
// similarity score.
type Match struct {
	product    catalog.Product
	similarity float64
}

// NewMatch creates a post-filter match.
func NewMatch(product catalog.Product, similarity float64) Match {
	return Match{product: product, similarity: similarity}
}

// Product returns the metadata snapshot.
func (m Match) Product() catalog.Product { return m.product }

// Similarity returns the similarity score.
func (m Match) Similarity() float64 { return m.similarity }
