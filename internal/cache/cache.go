// Package cache implements bounded LRU+TTL caches for search results
// and text embeddings. Grounded on a comparable implementation's internal/embed.CachedEmbedder
// (hashicorp/golang-lru wrapping pattern), extended to the TTL-aware
// `/expirable` variant of the same library since a comparable implementation's plain LRU
// cache never expired — a default TTL per cache is required.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultResultCacheSize bounds the search-result cache (§4.10).
	DefaultResultCacheSize = 1000
	// DefaultResultCacheTTL is the search-result cache default TTL.
	DefaultResultCacheTTL = 5 * time.Minute

	// DefaultEmbeddingCacheSize bounds the embedding cache (§4.10).
	DefaultEmbeddingCacheSize = 1000
	// DefaultEmbeddingCacheTTL is the embedding cache default TTL.
	DefaultEmbeddingCacheTTL = time.Hour
)

// ResultCache caches hybrid search results keyed by
// (collection, query_normalized, limit), per §4.10.
type ResultCache[T any] struct {
	lru *lru.LRU[string, T]
}

// NewResultCache builds a result cache with the given bound and TTL; zero
// values fall back to the package defaults.
func NewResultCache[T any](size int, ttl time.Duration) *ResultCache[T] {
	if size <= 0 {
		size = DefaultResultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultResultCacheTTL
	}
	return &ResultCache[T]{lru: lru.NewLRU[string, T](size, nil, ttl)}
}

// ResultKey builds the cache key for a collection+query+limit triple. The
// query is case-folded and whitespace-trimmed so "API Gateway" and
// "api gateway " share a cache entry.
func ResultKey(collection, query string, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s\x00%s\x00%d", collection, normalized, limit)
}

func (c *ResultCache[T]) Get(key string) (T, bool) {
	return c.lru.Get(key)
}

func (c *ResultCache[T]) Set(key string, value T) {
	c.lru.Add(key, value)
}

func (c *ResultCache[T]) Len() int {
	return c.lru.Len()
}

// EmbeddingCache caches embeddings keyed by trimmed text (§4.10).
type EmbeddingCache struct {
	lru   *lru.LRU[string, []float32]
	model string
}

// NewEmbeddingCache builds an embedding cache bound to one model name (so
// switching embedders never serves a stale vector under a reused key).
func NewEmbeddingCache(size int, ttl time.Duration, modelName string) *EmbeddingCache {
	if size <= 0 {
		size = DefaultEmbeddingCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultEmbeddingCacheTTL
	}
	return &EmbeddingCache{lru: lru.NewLRU[string, []float32](size, nil, ttl), model: modelName}
}

func (c *EmbeddingCache) key(text string) string {
	trimmed := strings.TrimSpace(text)
	sum := sha256.Sum256([]byte(trimmed + "\x00" + c.model))
	return hex.EncodeToString(sum[:])
}

func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	return c.lru.Get(c.key(text))
}

func (c *EmbeddingCache) Set(text string, vec []float32) {
	c.lru.Add(c.key(text), vec)
}

func (c *EmbeddingCache) Len() int {
	return c.lru.Len()
}
