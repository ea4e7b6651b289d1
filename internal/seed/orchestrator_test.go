package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concept-rag/conceptrag/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestOrchestrator(t *testing.T, s *store.Store) *Orchestrator {
	t.Helper()
	dir := t.TempDir()
	o, warnings, err := New(context.Background(), s,
		filepath.Join(dir, CheckpointFileName), filepath.Join(dir, "stage-cache"),
		filepath.Join(dir, "db.sqlite"), filepath.Join(dir, "files"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	return o
}

type fakeProcessor struct {
	catalogID uint32
}

func (p *fakeProcessor) ProcessDocument(_ context.Context, path string, cached *DocumentStageData) (*store.Catalog, []*store.Chunk, *DocumentStageData, error) {
	p.catalogID++
	id := p.catalogID
	cat := &store.Catalog{ID: id, Source: path, Title: path, Summary: "a perfectly valid generated summary"}
	chunks := []*store.Chunk{{ID: id * 100, CatalogID: id, Text: "chunk text"}}
	toCache := &DocumentStageData{ContentOverview: "cached overview"}
	if cached != nil {
		toCache = cached
	}
	return cat, chunks, toCache, nil
}

type failingProcessor struct{}

func (failingProcessor) ProcessDocument(context.Context, string, *DocumentStageData) (*store.Catalog, []*store.Chunk, *DocumentStageData, error) {
	return nil, nil, nil, assertErr
}

var assertErr = &testError{"processing failed"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestOrchestrator_RunDocuments_SkipsAlreadyProcessedHash(t *testing.T) {
	s := openTestStore(t)
	o := newTestOrchestrator(t, s)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	proc := &fakeProcessor{}
	require.NoError(t, o.RunDocuments(ctx, []string{path}, proc))
	require.NoError(t, o.RunDocuments(ctx, []string{path}, proc))

	assert.Equal(t, uint32(1), proc.catalogID, "second run should skip the already-processed hash")
	assert.Equal(t, string(StageConcepts), o.Checkpoint().Stage)
}

func TestOrchestrator_RunDocuments_RecordsFailures(t *testing.T) {
	s := openTestStore(t)
	o := newTestOrchestrator(t, s)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	require.NoError(t, o.RunDocuments(ctx, []string{path}, failingProcessor{}))
	assert.Equal(t, 1, o.Checkpoint().TotalFailed)
}

type staticAggregator struct {
	concepts []*store.Concept
}

func (a staticAggregator) AggregateConcepts(context.Context, []*store.Catalog) ([]*store.Concept, error) {
	return a.concepts, nil
}

func TestOrchestrator_RunConcepts_AssignsStableIDs(t *testing.T) {
	s := openTestStore(t)
	o := newTestOrchestrator(t, s)
	ctx := context.Background()

	agg := staticAggregator{concepts: []*store.Concept{
		{Concept: "distributed consensus"},
		{Concept: "hash ring"},
	}}
	require.NoError(t, o.RunConcepts(ctx, agg))

	stored, err := s.Concepts.Scan(ctx, 100)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, c := range stored {
		assert.NotZero(t, c.ID)
	}
	assert.Equal(t, string(StageSummaries), o.Checkpoint().Stage)
}

func TestOrchestrator_RunConcepts_ReusesPriorIDOnRerun(t *testing.T) {
	s := openTestStore(t)
	o := newTestOrchestrator(t, s)
	ctx := context.Background()

	agg := staticAggregator{concepts: []*store.Concept{{Concept: "distributed consensus"}}}
	require.NoError(t, o.RunConcepts(ctx, agg))

	first, _, err := s.Concepts.GetByName(ctx, "distributed consensus")
	require.NoError(t, err)

	agg2 := staticAggregator{concepts: []*store.Concept{{Concept: "distributed consensus"}}}
	require.NoError(t, o.RunConcepts(ctx, agg2))

	second, _, err := s.Concepts.GetByName(ctx, "distributed consensus")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

type staticSummarizer struct{}

func (staticSummarizer) SummarizeCatalog(context.Context, *store.Catalog) (string, error) {
	return "a full catalog summary worth keeping around", nil
}
func (staticSummarizer) SummarizeConcept(context.Context, *store.Concept) (string, error) {
	return "a full concept summary worth keeping around", nil
}
func (staticSummarizer) SummarizeCategory(context.Context, *store.Category) (string, error) {
	return "a full category summary worth keeping around", nil
}

func TestOrchestrator_RunSummaries_SkipsAlreadyValid(t *testing.T) {
	s := openTestStore(t)
	o := newTestOrchestrator(t, s)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Upsert(ctx, []*store.Catalog{
		{ID: 1, Source: "a", Summary: "Document overview (3 pages)"},
		{ID: 2, Source: "b", Summary: "a pre-existing, perfectly good summary"},
	}))

	require.NoError(t, o.RunSummaries(ctx, staticSummarizer{}))

	rows, err := s.Catalog.Scan(ctx, 10)
	require.NoError(t, err)
	byID := map[uint32]*store.Catalog{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	assert.Equal(t, "a full catalog summary worth keeping around", byID[1].Summary)
	assert.Equal(t, "a pre-existing, perfectly good summary", byID[2].Summary, "valid summary must not be overwritten")
	assert.Equal(t, string(StageCategories), o.Checkpoint().Stage)
}

type fixedMapper struct {
	categoryID uint32
}

func (m fixedMapper) CategoriesFor([]uint32) []uint32 {
	return []uint32{m.categoryID}
}

func TestOrchestrator_RunCategories_DerivesCategoryIDsFromChunkConcepts(t *testing.T) {
	s := openTestStore(t)
	o := newTestOrchestrator(t, s)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Upsert(ctx, []*store.Catalog{{ID: 1, Source: "a"}}))
	require.NoError(t, s.Chunks.Upsert(ctx, []*store.Chunk{
		{ID: 10, CatalogID: 1, ConceptIDs: []uint32{5}},
	}))

	require.NoError(t, o.RunCategories(ctx, fixedMapper{categoryID: 42}))

	row, ok, err := s.Catalog.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []uint32{42}, row.CategoryIDs)
	assert.Equal(t, string(StageComplete), o.Checkpoint().Stage)
}

func TestOrchestrator_Checkpoint_SurvivesReopen(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	checkpointPath := filepath.Join(dir, CheckpointFileName)

	o1, _, err := New(context.Background(), s, checkpointPath, filepath.Join(dir, "cache"),
		filepath.Join(dir, "db.sqlite"), filepath.Join(dir, "files"))
	require.NoError(t, err)
	require.NoError(t, o1.RunConcepts(context.Background(), staticAggregator{}))

	o2, warnings, err := New(context.Background(), s, checkpointPath, filepath.Join(dir, "cache"),
		filepath.Join(dir, "db.sqlite"), filepath.Join(dir, "files"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, string(StageSummaries), o2.Checkpoint().Stage)
}
