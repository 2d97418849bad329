package embcache

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/db"
	"github.com/kailas-cloud/petsearch/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)

	setKey     string
	setValue   []byte
	setTTL     time.Duration
	setTTLUsed bool
	setErr     error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(_ context.Context, key string, value []byte) error {
	m.setKey = key
	m.setValue = value
	return m.setErr
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.setKey = key
	m.setValue = value
	m.setTTL = ttl
	m.setTTLUsed = true
	return m.setErr
}

func TestEmbed_MissCallsInnerAndCaches(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2},
		TotalTokens: 7,
	}}
	ms := &mockKVStore{}
	ce := New(inner, ms, 0, nil, zap.NewNop())

	result, err := ce.Embed(context.Background(), "dog food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if result.TotalTokens != 7 {
		t.Errorf("miss must report real token usage, got %d", result.TotalTokens)
	}
	if ms.setKey == "" || ms.setTTLUsed {
		t.Errorf("zero ttl must use plain Set, key=%q ttlUsed=%v", ms.setKey, ms.setTTLUsed)
	}
}

func TestEmbed_HitSkipsInner(t *testing.T) {
	inner := &mockEmbedder{}
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return vectorToCacheBytes([]float32{0.5, 0.25}), nil
	}}
	ce := New(inner, ms, 0, nil, zap.NewNop())

	result, err := ce.Embed(context.Background(), "dog food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("cache hit must not call the inner embedder")
	}
	if !slices.Equal(result.Embedding, []float32{0.5, 0.25}) {
		t.Errorf("embedding = %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Errorf("cache hit consumes no tokens, got %d", result.TotalTokens)
	}
}

func TestEmbed_TTLUsesSetWithTTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := &mockKVStore{}
	ce := New(inner, ms, time.Hour, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ms.setTTLUsed || ms.setTTL != time.Hour {
		t.Errorf("expected SetWithTTL(1h), got ttlUsed=%v ttl=%v", ms.setTTLUsed, ms.setTTL)
	}
}

func TestEmbed_CorruptCacheFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return []byte{0x01, 0x02, 0x03}, nil // not a multiple of 4
	}}
	ce := New(inner, ms, 0, nil, zap.NewNop())

	result, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Error("corrupt cache entry must fall through to the inner embedder")
	}
	if !slices.Equal(result.Embedding, []float32{1, 2}) {
		t.Errorf("embedding = %v", result.Embedding)
	}
}

func TestEmbed_CacheWriteFailureIsNonFatal(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := &mockKVStore{setErr: errors.New("store down")}
	ce := New(inner, ms, 0, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("cache write failure must not fail the embed, got %v", err)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	ce := New(inner, &mockKVStore{}, 0, nil, zap.NewNop())

	_, err := ce.Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	ce := New(&mockEmbedder{}, &mockKVStore{}, 0, nil, zap.NewNop())

	k1 := ce.cacheKey("salmon-free dog food")
	k2 := ce.cacheKey("salmon-free dog food")
	k3 := ce.cacheKey("chicken-free dog food")

	if k1 != k2 {
		t.Error("same text must produce the same cache key")
	}
	if k1 == k3 {
		t.Error("different texts must produce different cache keys")
	}
	if len(k1) <= len(cacheKeyPrefix) {
		t.Errorf("key = %q", k1)
	}
}
