package compose

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/petsearch/internal/domain"
)

// mockEmbedder returns fixed vectors per text.
type mockEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls = append(m.calls, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text]}, nil
}

func TestCompose_SubtractsExclusions(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"dog food": {1, 0},
		"salmon":   {0, 1},
	}}
	c := New(emb)

	vec, err := c.Compose(context.Background(), "dog food", []string{"salmon"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// raw = (1, -0.7), then L2-normalized
	norm := math.Sqrt(1 + 0.7*0.7)
	wantX := float32(1 / norm)
	wantY := float32(-0.7 / norm)
	if !close32(vec[0], wantX) || !close32(vec[1], wantY) {
		t.Errorf("vec = %v, want (%v, %v)", vec, wantX, wantY)
	}
}

func TestCompose_AddsRequirements(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"cat food": {1, 0},
		"salmon":   {0, 1},
	}}
	c := New(emb)

	vec, err := c.Compose(context.Background(), "cat food", nil, []string{"salmon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[1] <= 0 {
		t.Errorf("requirement should pull vector toward its concept, got %v", vec)
	}
}

func TestCompose_UnitNorm(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"q": {3, 4},
		"x": {1, 1},
	}}
	c := New(emb)

	vec, err := c.Compose(context.Background(), "q", []string{"x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", math.Sqrt(sum))
	}
}

func TestCompose_ZeroVectorUnchanged(t *testing.T) {
	// Query and exclusion cancel exactly at alpha=1.
	emb := &mockEmbedder{vectors: map[string][]float32{
		"q": {1, 0},
		"x": {1, 0},
	}}
	c := New(emb).WithAlpha(1)

	vec, err := c.Compose(context.Background(), "q", []string{"x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[0] != 0 || vec[1] != 0 {
		t.Errorf("zero-norm vector must stay unchanged, got %v", vec)
	}
}

func TestCompose_ExpandsGrain(t *testing.T) {
	expanded := Expansions["grain"]
	emb := &mockEmbedder{vectors: map[string][]float32{
		"q":      {1, 0},
		expanded: {0, 1},
	}}
	c := New(emb)

	if _, err := c.Compose(context.Background(), "q", nil, []string{"grain"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, call := range emb.calls {
		if call == expanded {
			found = true
		}
		if call == "grain" {
			t.Error("generic grain term must be embedded via its expansion")
		}
	}
	if !found {
		t.Errorf("expansion %q was never embedded, calls: %v", expanded, emb.calls)
	}
}

func TestCompose_DimensionMismatch(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"q": {1, 0},
		"x": {1, 0, 0},
	}}
	c := New(emb)

	if _, err := c.Compose(context.Background(), "q", []string{"x"}, nil); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestCompose_EmbedErrorAborts(t *testing.T) {
	wantErr := errors.New("provider down")
	emb := &mockEmbedder{err: wantErr}
	c := New(emb)

	_, err := c.Compose(context.Background(), "q", []string{"x"}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}

func close32(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}
