package category

import (
	"context"
	"testing"

	"github.com/concept-rag/conceptrag/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func buildService(t *testing.T, s *store.Store) *Service {
	t.Helper()
	svc, err := New(context.Background(), s.Categories, s.Catalog)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestResolve_ByAliasWinsFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: 1, Category: "Distributed Systems", Aliases: []string{"dist-sys"}},
	}))
	svc := buildService(t, s)

	cat, found, err := svc.Resolve(ctx, "Dist-Sys")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(1), cat.ID)
}

func TestResolve_ByExactName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: 1, Category: "Networking"},
	}))
	svc := buildService(t, s)

	cat, found, err := svc.Resolve(ctx, "Networking")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(1), cat.ID)
}

func TestResolve_ByNumericID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: 7, Category: "Security"},
	}))
	svc := buildService(t, s)

	cat, found, err := svc.Resolve(ctx, "7")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Security", cat.Category)
}

func TestResolve_FuzzyFallsBackWhenNoExactMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: 1, Category: "Distributed Systems"},
	}))
	svc := buildService(t, s)

	cat, found, err := svc.Resolve(ctx, "distributed")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(1), cat.ID)
}

func TestResolve_UnknownReturnsNotFoundWithoutError(t *testing.T) {
	s := openTestStore(t)
	svc := buildService(t, s)

	_, found, err := svc.Resolve(context.Background(), "completely nonexistent topic")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetHierarchyPath_WalksParentsToRoot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	root := uint32(1)
	mid := uint32(2)
	leaf := uint32(3)
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: root, Category: "Systems"},
		{ID: mid, Category: "Distributed", ParentCategoryID: &root},
		{ID: leaf, Category: "Consensus", ParentCategoryID: &mid},
	}))
	svc := buildService(t, s)

	path, err := svc.GetHierarchyPath(ctx, leaf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Systems", "Distributed", "Consensus"}, path)
}

func TestGetHierarchyPath_GuardsAgainstCycles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a, b := uint32(1), uint32(2)
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: a, Category: "A", ParentCategoryID: &b},
		{ID: b, Category: "B", ParentCategoryID: &a},
	}))
	svc := buildService(t, s)

	path, err := svc.GetHierarchyPath(ctx, a)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(path), maxHierarchyDepth)
}

func TestFindByCategory_FiltersCatalogByMembership(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{{ID: 1, Category: "Security"}}))
	require.NoError(t, s.Catalog.Upsert(ctx, []*store.Catalog{
		{ID: 10, Source: "a", CategoryIDs: []uint32{1}},
		{ID: 20, Source: "b", CategoryIDs: []uint32{2}},
	}))
	svc := buildService(t, s)

	rows, err := svc.FindByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint32(10), rows[0].ID)
}

func TestAggregateCounts_IncludesChildrenOnlyWhenRequested(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	root := uint32(1)
	child := uint32(2)
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: root, Category: "Systems", DocumentCount: 5, ChunkCount: 20, ConceptCount: 3},
		{ID: child, Category: "Distributed", ParentCategoryID: &root, DocumentCount: 2, ChunkCount: 8, ConceptCount: 1},
	}))
	svc := buildService(t, s)

	docs, chunks, concepts, err := svc.AggregateCounts(ctx, root, false)
	require.NoError(t, err)
	assert.Equal(t, 5, docs)
	assert.Equal(t, 20, chunks)
	assert.Equal(t, 3, concepts)

	docs, chunks, concepts, err = svc.AggregateCounts(ctx, root, true)
	require.NoError(t, err)
	assert.Equal(t, 7, docs)
	assert.Equal(t, 28, chunks)
	assert.Equal(t, 4, concepts)
}

func TestSuggestSimilar_ReturnsUpToFiveNames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Upsert(ctx, []*store.Category{
		{ID: 1, Category: "Distributed Systems"},
		{ID: 2, Category: "Distributed Databases"},
	}))
	svc := buildService(t, s)

	suggestions := svc.SuggestSimilar("distributed")
	assert.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), suggestionCount)
}
