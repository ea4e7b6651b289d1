package cache

import (
	"context"
	"time"

	"github.com/concept-rag/conceptrag/internal/embedding"
)

// CachedEmbedder composes an embedding.Embedder with an EmbeddingCache and
// the §4.2 retry-once-then-zero-vector degrade policy, satisfying
// embedding.Embedder so callers (internal/search, internal/seed) don't need
// to know caching is involved.
type CachedEmbedder struct {
	degrading *embedding.DegradingEmbedder
	cache     *EmbeddingCache
}

// NewCachedEmbedder wraps inner with a cache of the given size/TTL.
func NewCachedEmbedder(inner embedding.Embedder, size int, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		degrading: embedding.NewDegradingEmbedder(inner),
		cache:     NewEmbeddingCache(size, ttl, inner.ModelName()),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, _, err := c.degrading.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec)
	return vec, nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		results[i] = vec
	}
	return results, nil
}

func (c *CachedEmbedder) Dimensions() int { return c.degrading.Dimensions() }
func (c *CachedEmbedder) ModelName() string { return c.degrading.ModelName() }
func (c *CachedEmbedder) Available(ctx context.Context) bool { return c.degrading.Available(ctx) }
func (c *CachedEmbedder) Close() error { return c.degrading.Close() }
