package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain"
	"github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

// --- Mocks ---

type mockRetriever struct {
	candidates []result.Candidate
	err        error

	gotText   string
	gotVector []float32
	gotK      int
}

func (m *mockRetriever) Retrieve(
	_ context.Context, text string, vector []float32, _ filter.Expression, k int,
) ([]result.Candidate, error) {
	m.gotText = text
	m.gotVector = vector
	m.gotK = k
	return m.candidates, m.err
}

type mockComposer struct {
	vector []float32
	err    error
	called bool
}

func (m *mockComposer) Compose(
	_ context.Context, _ string, _, _ []string,
) ([]float32, error) {
	m.called = true
	return m.vector, m.err
}

// --- Tests ---

func TestSearch_EmptyQuery(t *testing.T) {
	svc := New(&mockRetriever{}, &mockComposer{}, zap.NewNop())

	_, err := svc.Search(context.Background(), intent.Intent{}, 5)
	if !errors.Is(err, domain.ErrInvalidIntent) {
		t.Fatalf("error = %v, want ErrInvalidIntent", err)
	}
}

func TestSearch_PlainQuerySkipsComposer(t *testing.T) {
	retriever := &mockRetriever{}
	composer := &mockComposer{vector: []float32{1}}
	svc := New(retriever, composer, zap.NewNop())

	_, err := svc.Search(context.Background(), intent.Intent{Query: "dog food"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if composer.called {
		t.Error("composer must not run without constraint terms")
	}
	if retriever.gotText != "dog food" || retriever.gotVector != nil {
		t.Errorf("retriever got text=%q vector=%v", retriever.gotText, retriever.gotVector)
	}
}

func TestSearch_ConstraintsUseComposedVector(t *testing.T) {
	retriever := &mockRetriever{}
	composer := &mockComposer{vector: []float32{0.5, 0.5}}
	svc := New(retriever, composer, zap.NewNop())

	it := intent.Intent{Query: "dog food", Exclusions: []string{"salmon"}}
	if _, err := svc.Search(context.Background(), it, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !composer.called {
		t.Error("composer should run for constraint terms")
	}
	if len(retriever.gotVector) != 2 {
		t.Errorf("retriever vector = %v", retriever.gotVector)
	}
}

func TestSearch_OverFetch(t *testing.T) {
	retriever := &mockRetriever{}
	svc := New(retriever, &mockComposer{}, zap.NewNop())

	if _, err := svc.Search(context.Background(), intent.Intent{Query: "q"}, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retriever.gotK != OverFetchFactor*4 {
		t.Errorf("k = %d, want %d", retriever.gotK, OverFetchFactor*4)
	}
}

func TestSearch_DefaultMaxResults(t *testing.T) {
	retriever := &mockRetriever{}
	svc := New(retriever, &mockComposer{}, zap.NewNop())

	if _, err := svc.Search(context.Background(), intent.Intent{Query: "q"}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retriever.gotK != OverFetchFactor*DefaultMaxResults {
		t.Errorf("k = %d", retriever.gotK)
	}
}

func TestSearch_RetrieverErrorPropagates(t *testing.T) {
	wantErr := errors.New("store down")
	svc := New(&mockRetriever{err: wantErr}, &mockComposer{}, zap.NewNop())

	_, err := svc.Search(context.Background(), intent.Intent{Query: "q"}, 5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
}

func TestSearch_EmptyResultIsNotError(t *testing.T) {
	svc := New(&mockRetriever{}, &mockComposer{}, zap.NewNop())

	matches, err := svc.Search(context.Background(), intent.Intent{Query: "q"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, want empty", matches)
	}
}

func TestSearch_ConflictResolvedBeforeFiltering(t *testing.T) {
	// "salmon" is both required and excluded; exclusion wins, so the salmon
	// product must be rejected.
	retriever := &mockRetriever{candidates: []result.Candidate{
		result.NewCandidate(catalog.Product{ID: "p1", Ingredients: []string{"Salmon"}}, 0.1),
		result.NewCandidate(catalog.Product{ID: "p2", Ingredients: []string{"Beef"}}, 0.2),
	}}
	composer := &mockComposer{vector: []float32{1}}
	svc := New(retriever, composer, zap.NewNop())

	it := intent.Intent{
		Query:        "dog food",
		Exclusions:   []string{"salmon"},
		Requirements: []string{"salmon"},
	}
	matches, err := svc.Search(context.Background(), it, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Product().ID != "p2" {
		t.Errorf("matches = %v, want only p2", matches)
	}
}
