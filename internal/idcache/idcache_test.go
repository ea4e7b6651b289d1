package idcache

import (
	"context"
	"testing"

	"github.com/concept-rag/conceptrag/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *store.Store) {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Concepts.Upsert(ctx, []*store.Concept{
		{ID: 1, Concept: "api gateway"},
		{ID: 2, Concept: "circuit breaker"},
	}))
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: 10, Category: "architecture"},
	}))

	c, err := New(ctx, s.Concepts, s.Categories)
	require.NoError(t, err)
	return c, s
}

func TestCache_ResolvesConceptBothWays(t *testing.T) {
	c, _ := newTestCache(t)

	id, ok := c.GetConceptID("api gateway")
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)

	name, ok := c.GetConceptName(1)
	require.True(t, ok)
	assert.Equal(t, "api gateway", name)
}

func TestCache_MissingNameReturnsFalse(t *testing.T) {
	c, _ := newTestCache(t)
	_, ok := c.GetConceptID("does not exist")
	assert.False(t, ok)
}

func TestCache_GetNamesDropsMissingIDsSilently(t *testing.T) {
	c, _ := newTestCache(t)
	names := c.GetConceptNames([]uint32{1, 999, 2})
	assert.ElementsMatch(t, []string{"api gateway", "circuit breaker"}, names)
}

func TestCache_GetNamesOfGetIdsIsARetract(t *testing.T) {
	// §8: ConceptIdCache.getNames(getIds(xs)) is a retract (equal to the
	// subset of xs present in the concept table).
	c, _ := newTestCache(t)
	xs := []string{"api gateway", "unknown term", "circuit breaker"}

	got := c.GetConceptNames(c.GetConceptIDs(xs))
	assert.ElementsMatch(t, []string{"api gateway", "circuit breaker"}, got)
}

func TestCache_CategoryDomainIsIndependentOfConceptDomain(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.GetCategoryID("api gateway")
	assert.False(t, ok, "a concept name must not resolve in the category domain")

	id, ok := c.GetCategoryID("architecture")
	require.True(t, ok)
	assert.Equal(t, uint32(10), id)
}

func TestCache_EmptyTablesYieldEmptyCache(t *testing.T) {
	s, err := store.Open("")
	require.NoError(t, err)
	defer s.Close()

	c, err := New(context.Background(), s.Concepts, s.Categories)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ConceptCount())
	assert.Equal(t, 0, c.CategoryCount())

	_, ok := c.GetConceptID("anything")
	assert.False(t, ok)
}
