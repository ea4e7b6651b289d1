package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/hashid"
	"github.com/concept-rag/conceptrag/internal/seed"
	"github.com/concept-rag/conceptrag/internal/store"
)

// ConceptAggregator rebuilds the full concept table from the per-document
// concept terms DocumentProcessor left behind in the stage cache, keyed
// by each catalog row's content hash.
type ConceptAggregator struct {
	stageCache *seed.StageCache
	embedder   embedding.Embedder
}

// NewConceptAggregator builds a ConceptAggregator reading from the same
// stage cache directory the seeding orchestrator was given.
func NewConceptAggregator(stageCache *seed.StageCache, embedder embedding.Embedder) *ConceptAggregator {
	return &ConceptAggregator{stageCache: stageCache, embedder: embedder}
}

// AggregateConcepts scans every catalog row's cached term set, merges
// identical terms across documents, and assigns each merged concept its
// weight as its document frequency relative to the largest term's. A
// concept's ID is set directly to hashid.HashToID(term): since chunk rows
// already carry ConceptIDs computed the same way, a matching ID here is
// required for a chunk's ConceptIDs to resolve to the right concept row.
// This means two distinct terms that collide under FNV-1a will merge
// silently instead of going through hashid.GenerateStableID's collision
// chain — accepted given the term-name keyspace this extracts from (see
// DESIGN.md).
func (a *ConceptAggregator) AggregateConcepts(ctx context.Context, catalog []*store.Catalog) ([]*store.Concept, error) {
	catalogIDsByTerm := make(map[string][]uint32)

	for _, row := range catalog {
		data, ok, err := a.stageCache.Get(row.Hash)
		if err != nil || !ok {
			continue
		}
		for _, term := range data.Concepts {
			catalogIDsByTerm[term] = append(catalogIDsByTerm[term], row.ID)
		}
	}

	if len(catalogIDsByTerm) == 0 {
		return nil, nil
	}

	maxFreq := 0
	for _, ids := range catalogIDsByTerm {
		if len(ids) > maxFreq {
			maxFreq = len(ids)
		}
	}

	terms := make([]string, 0, len(catalogIDsByTerm))
	for term := range catalogIDsByTerm {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	concepts := make([]*store.Concept, 0, len(terms))
	for _, term := range terms {
		ids := dedupeUint32(catalogIDsByTerm[term])
		vector, err := a.embedder.Embed(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("extract: embed concept %q: %w", term, err)
		}
		weight := float64(len(ids)) / float64(maxFreq)
		concepts = append(concepts, &store.Concept{
			ID:         hashid.HashToID(term),
			Concept:    term,
			CatalogIDs: ids,
			Vector:     vector,
			Weight:     weight,
		})
	}
	return concepts, nil
}

func dedupeUint32(ids []uint32) []uint32 {
	seen := make(map[uint32]bool, len(ids))
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// CategoryMapper maps a catalog entry's concept ids to category ids by
// keyword match against each category's name and aliases (§4.12: "static
// mapping from concept -> category id").
type CategoryMapper struct {
	conceptNames map[uint32]string
	categories   []*store.Category
}

// NewCategoryMapper builds a CategoryMapper from the concept and category
// tables as they stand at the start of the categories stage.
func NewCategoryMapper(ctx context.Context, concepts store.ConceptStore, categories store.CategoryStore) (*CategoryMapper, error) {
	conceptRows, err := concepts.Scan(ctx, 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("extract: scan concepts for category mapping: %w", err)
	}
	categoryRows, err := categories.Scan(ctx, 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("extract: scan categories for category mapping: %w", err)
	}

	names := make(map[uint32]string, len(conceptRows))
	for _, c := range conceptRows {
		names[c.ID] = c.Concept
	}

	return &CategoryMapper{conceptNames: names, categories: categoryRows}, nil
}

// CategoriesFor returns the ids of every category whose name or alias is a
// substring of (or contains) one of conceptIDs' resolved names. A catalog
// entry with no keyword match ends up uncategorized rather than forced
// into an unrelated bucket.
func (m *CategoryMapper) CategoriesFor(conceptIDs []uint32) []uint32 {
	var matched []uint32
	for _, id := range conceptIDs {
		name, ok := m.conceptNames[id]
		if !ok {
			continue
		}
		for _, cat := range m.categories {
			if keywordMatches(name, cat) {
				matched = append(matched, cat.ID)
			}
		}
	}
	return matched
}

func keywordMatches(term string, cat *store.Category) bool {
	term = strings.ToLower(term)
	candidates := append([]string{cat.Category}, cat.Aliases...)
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if strings.Contains(term, c) || strings.Contains(c, term) {
			return true
		}
	}
	return false
}
