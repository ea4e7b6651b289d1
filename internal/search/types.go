// Package search implements the Hybrid Search Service and
// Concept-Driven Search: ranking a searchable collection
// (catalog, chunks, or concepts) by a fixed per-collection weighted sum of
// vector/BM25/title/WordNet component scores, plus the O(log n) concept
// lookup path.
//
// Grounded on a comparable implementation's internal/search/fusion.go for the sort/tie-break
// discipline (descending score, then descending vector score, then
// ascending id for stability) and internal/search/engine.go for the
// fan-out-then-merge shape of per-row scoring, with a comparable implementation's RRF
// fusion formula replaced by a fixed weighted sum per collection.
package search

import "context"

// Collection names one of the three rankable tables (§4.6: "catalog,
// chunks, or concepts"). Visuals and categories are never ranked by this
// service.
type Collection string

const (
	CollectionCatalog  Collection = "catalog"
	CollectionChunks   Collection = "chunks"
	CollectionConcepts Collection = "concepts"
)

// Weights is the fixed per-collection weighted-sum table (§4.6).
type Weights struct {
	Vector  float64
	BM25    float64
	Title   float64
	WordNet float64
}

// WeightsFor returns the fixed weights for a collection. Per Open Question
// #2 (see DESIGN.md), these are constants, never tunable at query time.
func WeightsFor(c Collection) Weights {
	switch c {
	case CollectionCatalog:
		return Weights{Vector: 0.30, BM25: 0.30, Title: 0.25, WordNet: 0.15}
	case CollectionChunks:
		return Weights{Vector: 0.35, BM25: 0.30, Title: 0.20, WordNet: 0.15}
	case CollectionConcepts:
		return Weights{Vector: 0.30, BM25: 0.20, Title: 0.40, WordNet: 0.10}
	default:
		return Weights{}
	}
}

func (w Weights) sum() float64 {
	return w.Vector + w.BM25 + w.Title + w.WordNet
}

// ComponentScores carries the four raw [0,1] component scores for one row.
// Present flags mark which components were actually computable; absent
// ones are dropped and the remaining weights renormalized (§4.6 failure
// mode: "a zero-vector query degrades to BM25+title+WordNet...").
type ComponentScores struct {
	Vector        float64
	VectorPresent bool
	BM25          float64
	Title         float64
	TitlePresent  bool
	WordNet       float64
}

// Result is one ranked row plus its score breakdown.
type Result struct {
	ID         uint32
	Score      float64
	Components ComponentScores
}

// DebugInfo is attached to results when the caller requests it (§12
// supplement: "catalog_search(..., debug) returns the four raw component
// scores and the weights used, not just the final score").
type DebugInfo struct {
	Components ComponentScores
	Weights    Weights
}

// BM25Params are the term-coverage scoring constants (§4.6).
type BM25Params struct {
	K1           float64
	B            float64
	AvgDocLength float64
}

// DefaultBM25Params returns the default BM25 parameters.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.5, B: 0.75, AvgDocLength: 100}
}

// overFetchFactor is the minimum vector-search over-fetch multiplier
// (§4.6: "requests limit*over-fetch rows from vector search (over-fetch ≥ 3)").
const overFetchFactor = 3

// Row is the collection-agnostic shape a RowSource hands to the scorer.
type Row struct {
	ID     uint32
	Text   string // scored against BM25/WordNet
	Title  string // empty when the row has no title (§4.6: "only when...")
	Vector []float32
}

// RowSource adapts one store table into the shape the ranker needs, so the
// ranker never depends on store.Catalog/Chunk/Concept field layouts
// directly.
type RowSource interface {
	VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error)
	GetByIDs(ctx context.Context, ids []uint32) ([]Row, error)
	Scan(ctx context.Context, limit int) ([]Row, error)
}

// VectorHit mirrors store.VectorHit without importing the store package's
// row types into this file's public surface.
type VectorHit struct {
	ID       uint32
	Distance float32
}
