package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations must be directionally stable: repeated calls with the same
// text may differ bit-wise but must rank the same neighbors.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
