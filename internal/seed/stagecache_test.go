package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageCache_PutThenGet(t *testing.T) {
	cache, err := NewStageCache(t.TempDir())
	require.NoError(t, err)

	entry := &DocumentStageData{Concepts: []string{"alpha", "beta"}, ContentOverview: "an overview"}
	require.NoError(t, cache.Put("hash1", entry))

	got, ok, err := cache.Get("hash1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "beta"}, got.Concepts)
	assert.Equal(t, "an overview", got.ContentOverview)
	assert.False(t, got.ProcessedAt.IsZero())
}

func TestStageCache_GetMissingIsNotAnError(t *testing.T) {
	cache, err := NewStageCache(t.TempDir())
	require.NoError(t, err)

	got, ok, err := cache.Get("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStageCache_ExpiredEntryIsNotReturned(t *testing.T) {
	cache, err := NewStageCache(t.TempDir())
	require.NoError(t, err)

	entry := &DocumentStageData{ContentOverview: "stale", ProcessedAt: time.Now().Add(-8 * 24 * time.Hour)}
	require.NoError(t, cache.Put("hash1", entry))

	got, ok, err := cache.Get("hash1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStageCache_FreshEntryJustUnderTTLIsReturned(t *testing.T) {
	cache, err := NewStageCache(t.TempDir())
	require.NoError(t, err)

	entry := &DocumentStageData{ContentOverview: "fresh", ProcessedAt: time.Now().Add(-6 * 24 * time.Hour)}
	require.NoError(t, cache.Put("hash1", entry))

	_, ok, err := cache.Get("hash1")
	require.NoError(t, err)
	assert.True(t, ok)
}
