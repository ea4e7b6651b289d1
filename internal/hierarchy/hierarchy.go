// Package hierarchy implements the Hierarchical Concept Service: given a
// concept, assemble its sources (catalog entries) and, for
// each, the concept-dense chunk previews within it — a richer, structured
// view on top of concept-driven search rather than a flat result list.
//
// Grounded on internal/search/engine.go's ConceptSearch for the
// resolve-then-chunk-lookup shape, generalized to also walk the concept's
// own catalog_ids and group results per source.
package hierarchy

import (
	"context"
	"fmt"
	"sort"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/store"
)

// maxChunkScan bounds how many chunks of a single source are pulled in
// before sorting by concept density; a source with more chunks than this
// simply won't have its tail considered for the preview set.
const maxChunkScan = 5000

// ChunkPreview is one chunk surfaced under a source (§4.8: "chunk previews
// and their page numbers").
type ChunkPreview struct {
	ChunkID        uint32
	Text           string
	PageNumber     int
	ConceptDensity float64
}

// Source is one catalog entry the concept appears in, with its densest
// chunk previews.
type Source struct {
	CatalogID uint32
	Title     string
	Summary   string
	Chunks    []ChunkPreview
}

// Result is the full hierarchical view of a concept (§4.8).
type Result struct {
	ConceptID     uint32
	Concept       string
	Summary       string
	Related       []uint32
	Synonyms      []string
	Sources       []Source
	TotalChunks   int
}

// Service assembles hierarchical concept views from the store.
type Service struct {
	concepts store.ConceptStore
	catalog  store.CatalogStore
	chunks   store.ChunkStore
}

// New builds a Service over the store's concept, catalog, and chunk tables.
func New(concepts store.ConceptStore, catalog store.CatalogStore, chunks store.ChunkStore) *Service {
	return &Service{concepts: concepts, catalog: catalog, chunks: chunks}
}

// Search resolves the concept, fetches its sources, and within
// each source load up to maxChunks/|sources| chunk previews ordered by
// descending concept density.
func (s *Service) Search(ctx context.Context, conceptName string, maxSources, maxChunks int) (*Result, error) {
	if maxSources <= 0 || maxChunks <= 0 {
		return nil, cerr.Validation("hierarchy: maxSources and maxChunks must be positive", nil)
	}

	concept, found, err := s.concepts.GetByName(ctx, conceptName)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: resolve concept: %w", err)
	}
	if !found {
		return nil, cerr.NotFound(fmt.Sprintf("hierarchy: concept %q not found", conceptName))
	}

	sourceIDs := concept.CatalogIDs
	if len(sourceIDs) > maxSources {
		sourceIDs = sourceIDs[:maxSources]
	}

	result := &Result{
		ConceptID: concept.ID,
		Concept:   concept.Concept,
		Summary:   concept.Summary,
		Related:   concept.RelatedConceptIDs,
		Synonyms:  concept.Synonyms,
	}
	if len(sourceIDs) == 0 {
		return result, nil
	}

	perSourceChunks := maxChunks / len(sourceIDs)
	if perSourceChunks == 0 {
		perSourceChunks = 1
	}

	for _, catalogID := range sourceIDs {
		cat, found, err := s.catalog.Get(ctx, catalogID)
		if err != nil {
			return nil, fmt.Errorf("hierarchy: load catalog entry %d: %w", catalogID, err)
		}
		if !found {
			continue
		}

		rows, err := s.chunks.Where(ctx, store.Eq("catalog_id", catalogID), maxChunkScan)
		if err != nil {
			return nil, fmt.Errorf("hierarchy: load chunks for catalog %d: %w", catalogID, err)
		}

		densest := make([]*store.Chunk, 0, len(rows))
		for _, row := range rows {
			if containsConcept(row.ConceptIDs, concept.ID) {
				densest = append(densest, row)
			}
		}
		sort.Slice(densest, func(i, j int) bool {
			return densest[i].ConceptDensity > densest[j].ConceptDensity
		})

		result.TotalChunks += len(densest)
		if len(densest) > perSourceChunks {
			densest = densest[:perSourceChunks]
		}

		previews := make([]ChunkPreview, 0, len(densest))
		for _, row := range densest {
			previews = append(previews, ChunkPreview{
				ChunkID:        row.ID,
				Text:           row.Text,
				PageNumber:     row.PageNumber,
				ConceptDensity: row.ConceptDensity,
			})
		}

		result.Sources = append(result.Sources, Source{
			CatalogID: cat.ID,
			Title:     cat.Title,
			Summary:   cat.Summary,
			Chunks:    previews,
		})
	}

	return result, nil
}

func containsConcept(ids []uint32, target uint32) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
