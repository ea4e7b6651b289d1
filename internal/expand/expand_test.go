package expand

import (
	"context"
	"testing"

	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/idcache"
	"github.com/concept-rag/conceptrag/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpander(t *testing.T) (*Expander, embedding.Embedder) {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	emb := embedding.NewStaticEmbedder()
	ctx := context.Background()

	vec, err := emb.Embed(ctx, "API gateway routing layer")
	require.NoError(t, err)
	require.NoError(t, s.Concepts.Upsert(ctx, []*store.Concept{
		{ID: 1, Concept: "api gateway", Vector: vec},
	}))

	ids, err := idcache.New(ctx, s.Concepts, s.Categories)
	require.NoError(t, err)

	return New(emb, s.Concepts, ids, DefaultLexicon()), emb
}

func TestExpand_EmptyQueryYieldsEmptyLists(t *testing.T) {
	e, _ := newTestExpander(t)
	exp, err := e.Expand(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, exp.Original)
	assert.Empty(t, exp.Corpus)
	assert.Empty(t, exp.WordNet)
	assert.Empty(t, exp.AllTerms)
}

func TestExpand_OriginalTermsCarryWeightOne(t *testing.T) {
	e, _ := newTestExpander(t)
	exp, err := e.Expand(context.Background(), "API gateway")
	require.NoError(t, err)

	require.Len(t, exp.Original, 2)
	for _, term := range exp.Original {
		assert.Equal(t, WeightOriginal, term.Weight)
	}
	assert.Equal(t, WeightOriginal, exp.Weights["api"])
}

func TestExpand_CorpusTermsFoundAboveThreshold(t *testing.T) {
	e, _ := newTestExpander(t)
	exp, err := e.Expand(context.Background(), "API gateway routing layer")
	require.NoError(t, err)

	require.NotEmpty(t, exp.Corpus)
	assert.Equal(t, "api gateway", exp.Corpus[0].Term)
	assert.Equal(t, WeightCorpus, exp.Corpus[0].Weight)
}

func TestExpand_WordNetSynonymsAndHypernymsCarryDistinctWeights(t *testing.T) {
	e, _ := newTestExpander(t)
	exp, err := e.Expand(context.Background(), "gateway")
	require.NoError(t, err)

	var synWeight, hyperWeight float64
	for _, t := range exp.WordNet {
		switch t.Term {
		case "proxy":
			synWeight = t.Weight
		case "middleware":
			hyperWeight = t.Weight
		}
	}
	assert.Equal(t, WeightSynonym, synWeight)
	assert.Equal(t, WeightHypernymHyponym, hyperWeight)
}

func TestExpand_AllTermsIsDeduplicatedUnion(t *testing.T) {
	e, _ := newTestExpander(t)
	exp, err := e.Expand(context.Background(), "gateway gateway")
	require.NoError(t, err)

	count := 0
	for _, term := range exp.AllTerms {
		if term == "gateway" {
			count++
		}
	}
	assert.Equal(t, 1, count, "AllTerms must not repeat a term already present")
}

func TestExpand_IsPureForFixedConceptTable(t *testing.T) {
	e, _ := newTestExpander(t)
	a, err := e.Expand(context.Background(), "API gateway")
	require.NoError(t, err)
	b, err := e.Expand(context.Background(), "API gateway")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
