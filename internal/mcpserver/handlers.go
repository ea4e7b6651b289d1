package mcpserver

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/search"
	"github.com/concept-rag/conceptrag/internal/store"
)

// clampLimit ensures limit is within [min,max], substituting defaultVal for
// a non-positive input. Mirrors a comparable implementation's format.clampLimit.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}

func containsID(ids []uint32, target uint32) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// catalogSearchHandler implements catalog_search (§6).
func (s *Server) catalogSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input CatalogSearchInput) (
	*mcp.CallToolResult, CatalogSearchOutput, error,
) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, CatalogSearchOutput{}, newToolError(cerr.Validation("catalog_search: text is required", nil), nil)
	}
	limit := clampLimit(input.Limit, 10, 1, 100)

	results, err := s.c.Search.Search(ctx, search.CollectionCatalog, input.Text, limit, nil)
	if err != nil {
		return nil, CatalogSearchOutput{}, newToolError(err, nil)
	}

	weights := search.WeightsFor(search.CollectionCatalog)
	out := CatalogSearchOutput{Results: make([]SearchResultItem, 0, len(results))}
	for _, r := range results {
		row, found, err := s.c.Store.Catalog.Get(ctx, r.ID)
		if err != nil {
			return nil, CatalogSearchOutput{}, newToolError(err, nil)
		}
		if !found {
			continue
		}
		item := SearchResultItem{
			CatalogID: row.ID,
			Source:    row.Source,
			Title:     row.Title,
			Summary:   row.Summary,
			Score:     r.Score,
		}
		if input.Debug {
			item.Debug = &DebugScores{
				Vector:        r.Components.Vector,
				BM25:          r.Components.BM25,
				Title:         r.Components.Title,
				WordNet:       r.Components.WordNet,
				VectorWeight:  weights.Vector,
				BM25Weight:    weights.BM25,
				TitleWeight:   weights.Title,
				WordNetWeight: weights.WordNet,
			}
		}
		out.Results = append(out.Results, item)
	}
	return nil, out, nil
}

// resolveCatalogIDBySource finds the catalog id whose Source field matches
// source exactly, used by chunks_search's optional source scoping.
func (s *Server) resolveCatalogIDBySource(ctx context.Context, source string) (uint32, bool, error) {
	rows, err := s.c.Store.Catalog.Where(ctx, store.Eq("source", source), 1)
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].ID, true, nil
}

func (s *Server) searchChunks(ctx context.Context, text string, limit int, catalogID *uint32) ([]ChunkItem, error) {
	results, err := s.c.Search.Search(ctx, search.CollectionChunks, text, limit, catalogID)
	if err != nil {
		return nil, err
	}
	out := make([]ChunkItem, 0, len(results))
	for _, r := range results {
		row, found, err := s.c.Store.Chunks.Get(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		out = append(out, ChunkItem{
			ChunkID:        row.ID,
			CatalogID:      row.CatalogID,
			Text:           row.Text,
			PageNumber:     row.PageNumber,
			ConceptDensity: row.ConceptDensity,
			Score:          r.Score,
		})
	}
	return out, nil
}

// chunksSearchHandler implements chunks_search (§6).
func (s *Server) chunksSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input ChunksSearchInput) (
	*mcp.CallToolResult, ChunksSearchOutput, error,
) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ChunksSearchOutput{}, newToolError(cerr.Validation("chunks_search: text is required", nil), nil)
	}
	limit := clampLimit(input.Limit, 10, 1, 200)

	var catalogID *uint32
	if strings.TrimSpace(input.Source) != "" {
		id, found, err := s.resolveCatalogIDBySource(ctx, input.Source)
		if err != nil {
			return nil, ChunksSearchOutput{}, newToolError(err, nil)
		}
		if !found {
			return nil, ChunksSearchOutput{}, notFoundError("chunks_search: source "+input.Source+" not found", nil)
		}
		catalogID = &id
	}

	results, err := s.searchChunks(ctx, input.Text, limit, catalogID)
	if err != nil {
		return nil, ChunksSearchOutput{}, newToolError(err, nil)
	}
	return nil, ChunksSearchOutput{Results: results}, nil
}

// broadChunksSearchHandler implements broad_chunks_search (§6).
func (s *Server) broadChunksSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input BroadChunksSearchInput) (
	*mcp.CallToolResult, ChunksSearchOutput, error,
) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ChunksSearchOutput{}, newToolError(cerr.Validation("broad_chunks_search: text is required", nil), nil)
	}
	limit := clampLimit(input.Limit, 10, 1, 200)

	results, err := s.searchChunks(ctx, input.Text, limit, nil)
	if err != nil {
		return nil, ChunksSearchOutput{}, newToolError(err, nil)
	}
	return nil, ChunksSearchOutput{Results: results}, nil
}

// defaultConceptSources bounds how many sources a concept_search/
// hierarchy lookup spreads its chunk budget across.
const defaultConceptSources = 10

// conceptSearchHandler implements concept_search (§6), via the
// hierarchy service, plus a visuals lookup for image_ids.
func (s *Server) conceptSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input ConceptSearchInput) (
	*mcp.CallToolResult, ConceptSearchOutput, error,
) {
	if strings.TrimSpace(input.Concept) == "" {
		return nil, ConceptSearchOutput{}, newToolError(cerr.Validation("concept_search: concept is required", nil), nil)
	}
	limit := clampLimit(input.Limit, 10, 1, 100)

	result, err := s.c.Hierarchy.Search(ctx, input.Concept, defaultConceptSources, limit)
	if err != nil {
		return nil, ConceptSearchOutput{}, newToolError(err, nil)
	}

	chunks := make([]ConceptChunkItem, 0, limit)
	for _, src := range result.Sources {
		row, found, err := s.c.Store.Catalog.Get(ctx, src.CatalogID)
		if err != nil {
			return nil, ConceptSearchOutput{}, newToolError(err, nil)
		}
		source := ""
		if found {
			source = row.Source
		}
		for _, ch := range src.Chunks {
			chunks = append(chunks, ConceptChunkItem{
				ChunkID:        ch.ChunkID,
				CatalogID:      src.CatalogID,
				Source:         source,
				Title:          src.Title,
				Text:           ch.Text,
				PageNumber:     ch.PageNumber,
				ConceptDensity: ch.ConceptDensity,
			})
		}
	}

	imageIDs, err := s.visualIDsForConcept(ctx, result.ConceptID)
	if err != nil {
		return nil, ConceptSearchOutput{}, newToolError(err, nil)
	}

	return nil, ConceptSearchOutput{
		ConceptID: result.ConceptID,
		Concept:   result.Concept,
		Chunks:    chunks,
		ImageIDs:  imageIDs,
	}, nil
}

// visualsScanLimit bounds the full-table scan get_visuals and
// concept_search's image lookup perform, mirroring category's
// catalogScanLimit.
const visualsScanLimit = 100_000

func (s *Server) visualIDsForConcept(ctx context.Context, conceptID uint32) ([]uint32, error) {
	rows, err := s.c.Store.Visuals.Scan(ctx, visualsScanLimit)
	if err != nil {
		return nil, err
	}
	var ids []uint32
	for _, row := range rows {
		if containsID(row.ConceptIDs, conceptID) {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// resolveConceptRow resolves a concept by numeric id or by name, the same
// dual lookup search.Engine.resolveConcept performs internally.
func (s *Server) resolveConceptRow(ctx context.Context, nameOrID string) (*store.Concept, error) {
	if id, err := strconv.ParseUint(nameOrID, 10, 32); err == nil {
		row, found, err := s.c.Store.Concepts.Get(ctx, uint32(id))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return row, nil
	}
	row, found, err := s.c.Store.Concepts.GetByName(ctx, nameOrID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

// sourceConceptsHandler implements source_concepts (§6).
func (s *Server) sourceConceptsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SourceConceptsInput) (
	*mcp.CallToolResult, SourceConceptsOutput, error,
) {
	catalogID, found, err := s.resolveCatalogForSourceConcepts(ctx, input)
	if err != nil {
		return nil, SourceConceptsOutput{}, newToolError(err, nil)
	}
	if !found {
		return nil, SourceConceptsOutput{}, notFoundError("source_concepts: source not found", nil)
	}

	rows, err := s.c.Store.Concepts.Scan(ctx, visualsScanLimit)
	if err != nil {
		return nil, SourceConceptsOutput{}, newToolError(err, nil)
	}

	out := SourceConceptsOutput{}
	for _, row := range rows {
		if containsID(row.CatalogIDs, catalogID) {
			out.Concepts = append(out.Concepts, toConceptItem(row))
		}
	}
	sort.Slice(out.Concepts, func(i, j int) bool { return out.Concepts[i].Weight > out.Concepts[j].Weight })
	return nil, out, nil
}

func (s *Server) resolveCatalogForSourceConcepts(ctx context.Context, input SourceConceptsInput) (uint32, bool, error) {
	if input.CatalogID != 0 {
		_, found, err := s.c.Store.Catalog.Get(ctx, input.CatalogID)
		return input.CatalogID, found, err
	}
	if strings.TrimSpace(input.Source) == "" {
		return 0, false, cerr.Validation("source_concepts: source or catalog_id is required", nil)
	}
	return s.resolveCatalogIDBySource(ctx, input.Source)
}

func toConceptItem(row *store.Concept) ConceptItem {
	return ConceptItem{
		ConceptID: row.ID,
		Concept:   row.Concept,
		Summary:   row.Summary,
		Synonyms:  row.Synonyms,
		Weight:    row.Weight,
	}
}

// conceptSourcesHandler implements concept_sources (§6).
func (s *Server) conceptSourcesHandler(ctx context.Context, _ *mcp.CallToolRequest, input ConceptSourcesInput) (
	*mcp.CallToolResult, ConceptSourcesOutput, error,
) {
	if strings.TrimSpace(input.Concept) == "" {
		return nil, ConceptSourcesOutput{}, newToolError(cerr.Validation("concept_sources: concept is required", nil), nil)
	}
	concept, err := s.resolveConceptRow(ctx, input.Concept)
	if err != nil {
		return nil, ConceptSourcesOutput{}, newToolError(err, nil)
	}
	if concept == nil {
		return nil, ConceptSourcesOutput{}, notFoundError("concept_sources: concept "+input.Concept+" not found", nil)
	}

	out := ConceptSourcesOutput{Sources: make([]CatalogItem, 0, len(concept.CatalogIDs))}
	for _, catalogID := range concept.CatalogIDs {
		row, found, err := s.c.Store.Catalog.Get(ctx, catalogID)
		if err != nil {
			return nil, ConceptSourcesOutput{}, newToolError(err, nil)
		}
		if !found {
			continue
		}
		out.Sources = append(out.Sources, CatalogItem{
			CatalogID: row.ID,
			Source:    row.Source,
			Title:     row.Title,
			Summary:   row.Summary,
		})
	}
	return nil, out, nil
}

// primaryConceptWeight is the threshold above which a document's concept
// is reported as a primary concept rather than a technical term.
const primaryConceptWeight = 0.5

// extractConceptsHandler implements extract_concepts (§6): resolve the
// best-matching catalog entry for document_query via catalog_search, then
// split its concepts into primary_concepts/technical_terms by weight and
// resolve its category names.
func (s *Server) extractConceptsHandler(ctx context.Context, _ *mcp.CallToolRequest, input ExtractConceptsInput) (
	*mcp.CallToolResult, ExtractConceptsOutput, error,
) {
	if strings.TrimSpace(input.DocumentQuery) == "" {
		return nil, ExtractConceptsOutput{}, newToolError(cerr.Validation("extract_concepts: document_query is required", nil), nil)
	}

	results, err := s.c.Search.Search(ctx, search.CollectionCatalog, input.DocumentQuery, 1, nil)
	if err != nil {
		return nil, ExtractConceptsOutput{}, newToolError(err, nil)
	}
	if len(results) == 0 {
		return nil, ExtractConceptsOutput{}, notFoundError("extract_concepts: no document matched "+input.DocumentQuery, nil)
	}
	catalogRow, found, err := s.c.Store.Catalog.Get(ctx, results[0].ID)
	if err != nil {
		return nil, ExtractConceptsOutput{}, newToolError(err, nil)
	}
	if !found {
		return nil, ExtractConceptsOutput{}, notFoundError("extract_concepts: no document matched "+input.DocumentQuery, nil)
	}

	conceptRows, err := s.c.Store.Concepts.Scan(ctx, visualsScanLimit)
	if err != nil {
		return nil, ExtractConceptsOutput{}, newToolError(err, nil)
	}

	out := ExtractConceptsOutput{CatalogID: catalogRow.ID, Source: catalogRow.Source}
	var matched []*store.Concept
	for _, row := range conceptRows {
		if containsID(row.CatalogIDs, catalogRow.ID) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Weight > matched[j].Weight })
	for _, row := range matched {
		if row.Weight >= primaryConceptWeight {
			out.PrimaryConcepts = append(out.PrimaryConcepts, row.Concept)
		} else {
			out.TechnicalTerms = append(out.TechnicalTerms, row.Concept)
		}
	}

	for _, categoryID := range catalogRow.CategoryIDs {
		cat, found, err := s.c.Category.Resolve(ctx, strconv.FormatUint(uint64(categoryID), 10))
		if err != nil {
			return nil, ExtractConceptsOutput{}, newToolError(err, nil)
		}
		if found {
			out.Categories = append(out.Categories, cat.Category)
		}
	}

	return nil, out, nil
}
