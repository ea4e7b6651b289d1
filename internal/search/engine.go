// Package search: engine.go implements the Hybrid Search Service's core
// scan-score-rank loop and the concept-driven search lookup.
//
// Grounded on a comparable implementation's internal/search/engine.go for the overall
// shape (expand query, over-fetch by vector search, score candidates,
// sort, truncate) with a comparable implementation's RRF list-fusion replaced by the
// spec's fixed per-collection weighted sum (§4.6), and on fusion.go for
// the descending-score / stable-tiebreak sort discipline.
package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/expand"
	"github.com/concept-rag/conceptrag/internal/idcache"
	"github.com/concept-rag/conceptrag/internal/resilience"
	"github.com/concept-rag/conceptrag/internal/store"
)

// Engine runs hybrid search over the catalog, chunks, and concepts tables,
// plus the concept-driven chunk lookup.
type Engine struct {
	store    *store.Store
	embedder embedding.Embedder
	expander *expand.Expander
	ids      *idcache.Cache
	params   BM25Params
	kernel   *resilience.Kernel
}

// New builds an Engine over an opened store, an embedder shared with
// ingestion, a query expander, and the id cache.
func New(s *store.Store, embedder embedding.Embedder, expander *expand.Expander, ids *idcache.Cache) *Engine {
	return &Engine{store: s, embedder: embedder, expander: expander, ids: ids, params: DefaultBM25Params()}
}

// UseKernel routes the embedding call and the underlying vector/store
// reads through k's bulkhead+circuit+retry wiring (§4.11). Optional: a nil
// kernel (the New default) leaves Search/ConceptSearch calling straight
// through.
func (e *Engine) UseKernel(k *resilience.Kernel) {
	e.kernel = k
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	if e.kernel == nil {
		return e.embedder.Embed(ctx, text)
	}
	return resilience.Execute(ctx, e.kernel, "embedding", resilience.EmbeddingProfile(), func(ctx context.Context) ([]float32, error) {
		return e.embedder.Embed(ctx, text)
	})
}

func (e *Engine) vectorSearch(ctx context.Context, source RowSource, vec []float32, limit int) ([]VectorHit, error) {
	if e.kernel == nil {
		return source.VectorSearch(ctx, vec, limit)
	}
	return resilience.Execute(ctx, e.kernel, "store", resilience.DatabaseProfile(), func(ctx context.Context) ([]VectorHit, error) {
		return source.VectorSearch(ctx, vec, limit)
	})
}

func (e *Engine) chunkVectorSearch(ctx context.Context, vec []float32, limit int) ([]store.VectorHit, error) {
	if e.kernel == nil {
		return e.store.Chunks.VectorSearch(ctx, vec, limit)
	}
	return resilience.Execute(ctx, e.kernel, "store", resilience.DatabaseProfile(), func(ctx context.Context) ([]store.VectorHit, error) {
		return e.store.Chunks.VectorSearch(ctx, vec, limit)
	})
}

func (e *Engine) sourceFor(collection Collection, catalogID *uint32) (RowSource, error) {
	switch collection {
	case CollectionCatalog:
		return newCatalogSource(e.store.Catalog), nil
	case CollectionChunks:
		return newChunkSource(e.store.Chunks, catalogID), nil
	case CollectionConcepts:
		return newConceptSource(e.store.Concepts), nil
	default:
		return nil, fmt.Errorf("search: unknown collection %q", collection)
	}
}

// Search implements the Hybrid Search Service (§4.6): rank collection by
// the fixed weighted sum of vector/BM25/title/WordNet component scores.
// catalogID, when non-nil, restricts a CollectionChunks search to one
// document (§4.6 "search within a single document").
func (e *Engine) Search(ctx context.Context, collection Collection, query string, limit int, catalogID *uint32) ([]Result, error) {
	if limit <= 0 {
		return nil, cerr.Validation("search: limit must be positive", nil)
	}

	source, err := e.sourceFor(collection, catalogID)
	if err != nil {
		return nil, err
	}

	exp, err := e.expander.Expand(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: expand query: %w", err)
	}
	vec, err := e.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	overFetch := limit * overFetchFactor

	var candidates []Row
	var vectorScores map[uint32]float64
	if !embedding.IsZeroVector(vec) {
		hits, err := e.vectorSearch(ctx, source, vec, overFetch)
		if err != nil {
			return nil, fmt.Errorf("search: vector search: %w", err)
		}
		ids := make([]uint32, len(hits))
		vectorScores = make(map[uint32]float64, len(hits))
		for i, h := range hits {
			ids[i] = h.ID
			vectorScores[h.ID] = 1.0 - float64(h.Distance)/2.0
		}
		candidates, err = source.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("search: fetch candidates: %w", err)
		}
	} else {
		candidates, err = source.Scan(ctx, overFetch)
		if err != nil {
			return nil, fmt.Errorf("search: scan candidates: %w", err)
		}
	}

	var queryTerms []string
	for _, t := range exp.Original {
		queryTerms = append(queryTerms, t.Term)
	}

	weights := WeightsFor(collection)
	results := make([]Result, 0, len(candidates))
	for _, row := range candidates {
		comp := ComponentScores{}
		if v, ok := vectorScores[row.ID]; ok {
			comp.Vector, comp.VectorPresent = v, true
		}
		comp.BM25 = scoreBM25(exp.AllTerms, exp.Weights, row.Text, e.params)
		comp.Title, comp.TitlePresent = scoreTitle(queryTerms, row.Title)
		comp.WordNet = scoreWordNet(exp.WordNet, row.Text+" "+row.Title)

		results = append(results, Result{
			ID:         row.ID,
			Score:      weightedScore(weights, comp),
			Components: comp,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Components.Vector != results[j].Components.Vector {
			return results[i].Components.Vector > results[j].Components.Vector
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// weightedScore combines component scores using collection weights,
// dropping absent components and renormalizing over the remaining weight
// (§4.6: "a zero-vector query degrades to BM25+title+WordNet, renormalized").
func weightedScore(w Weights, c ComponentScores) float64 {
	var sum, total float64
	if c.VectorPresent {
		sum += w.Vector * c.Vector
		total += w.Vector
	}
	sum += w.BM25 * c.BM25
	total += w.BM25
	if c.TitlePresent {
		sum += w.Title * c.Title
		total += w.Title
	}
	sum += w.WordNet * c.WordNet
	total += w.WordNet

	if total == 0 {
		return 0
	}
	return clamp01(sum / total)
}

// ConceptSearch implements concept-driven search: resolve a
// concept by name or id, then return the chunks whose concept_ids
// genuinely contain it, ordered by ascending vector distance to the
// concept's own embedding.
func (e *Engine) ConceptSearch(ctx context.Context, conceptNameOrID string, limit int) ([]Result, error) {
	if limit <= 0 {
		return nil, cerr.Validation("search: limit must be positive", nil)
	}

	concept, err := e.resolveConcept(ctx, conceptNameOrID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, cerr.NotFound(fmt.Sprintf("search: concept %q not found", conceptNameOrID))
	}

	overFetch := limit * overFetchFactor
	hits, err := e.chunkVectorSearch(ctx, concept.Vector, overFetch)
	if err != nil {
		return nil, fmt.Errorf("search: concept vector search: %w", err)
	}

	ids := make([]uint32, len(hits))
	distanceByID := make(map[uint32]float32, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		distanceByID[h.ID] = h.Distance
	}
	chunks, err := e.store.Chunks.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("search: fetch chunks: %w", err)
	}

	results := make([]Result, 0, len(chunks))
	for _, ch := range chunks {
		if !containsID(ch.ConceptIDs, concept.ID) {
			continue
		}
		dist := distanceByID[ch.ID]
		score := 1.0 - float64(dist)/2.0
		results = append(results, Result{
			ID:    ch.ID,
			Score: clamp01(score),
			Components: ComponentScores{
				Vector:        clamp01(score),
				VectorPresent: true,
			},
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *Engine) resolveConcept(ctx context.Context, nameOrID string) (*store.Concept, error) {
	if id, err := strconv.ParseUint(nameOrID, 10, 32); err == nil {
		concept, found, err := e.store.Concepts.Get(ctx, uint32(id))
		if err != nil || !found {
			return nil, err
		}
		return concept, nil
	}
	concept, found, err := e.store.Concepts.GetByName(ctx, nameOrID)
	if err != nil || !found {
		return nil, err
	}
	return concept, nil
}

func containsID(ids []uint32, target uint32) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
