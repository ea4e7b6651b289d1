package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_KeyNormalizesQuery(t *testing.T) {
	a := ResultKey("catalog", "API Gateway", 10)
	b := ResultKey("catalog", "  api gateway ", 10)
	assert.Equal(t, a, b)
}

func TestResultCache_GetSetRoundTrip(t *testing.T) {
	c := NewResultCache[[]string](10, time.Minute)
	key := ResultKey("chunks", "consensus", 5)

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, []string{"chunk-1", "chunk-2"})
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"chunk-1", "chunk-2"}, got)
}

func TestResultCache_ExpiresAfterTTL(t *testing.T) {
	c := NewResultCache[int](10, 20*time.Millisecond)
	c.Set("k", 42)

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestEmbeddingCache_KeyIsModelScoped(t *testing.T) {
	a := NewEmbeddingCache(10, time.Minute, "model-a")
	b := NewEmbeddingCache(10, time.Minute, "model-b")

	a.Set("hello", []float32{1, 2, 3})
	_, ok := b.Get("hello")
	assert.False(t, ok, "same text under a different model must miss")

	v, ok := a.Get("hello")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, v)
}

func TestEmbeddingCache_TrimsTextBeforeKeying(t *testing.T) {
	c := NewEmbeddingCache(10, time.Minute, "m")
	c.Set("  hello  ", []float32{1})

	v, ok := c.Get("hello")
	require.True(t, ok)
	assert.Equal(t, []float32{1}, v)
}
