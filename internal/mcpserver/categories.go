package mcpserver

import (
	"context"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/store"
)

// categoriesScanLimit bounds the full-table scan list_categories performs.
const categoriesScanLimit = 100_000

// listCategoriesHandler implements list_categories (§6).
func (s *Server) listCategoriesHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListCategoriesInput) (
	*mcp.CallToolResult, ListCategoriesOutput, error,
) {
	limit := clampLimit(input.Limit, 50, 1, 500)

	rows, err := s.c.Store.Categories.Scan(ctx, categoriesScanLimit)
	if err != nil {
		return nil, ListCategoriesOutput{}, newToolError(err, nil)
	}

	filter := strings.ToLower(strings.TrimSpace(input.Filter))
	var matched []*store.Category
	for _, row := range rows {
		if filter == "" || strings.Contains(strings.ToLower(row.Category), filter) {
			matched = append(matched, row)
		}
	}

	sortCategoriesBy(matched, input.SortBy)

	out := ListCategoriesOutput{Total: len(matched)}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out.Categories = make([]CategoryListItem, 0, len(matched))
	for _, row := range matched {
		item := CategoryListItem{
			CategoryID:    row.ID,
			Category:      row.Category,
			Description:   row.Description,
			DocumentCount: row.DocumentCount,
			ChunkCount:    row.ChunkCount,
			ConceptCount:  row.ConceptCount,
		}
		if input.IncludeHierarchy {
			path, err := s.c.Category.GetHierarchyPath(ctx, row.ID)
			if err != nil {
				return nil, ListCategoriesOutput{}, newToolError(err, nil)
			}
			item.Path = path
		}
		out.Categories = append(out.Categories, item)
	}
	return nil, out, nil
}

func sortCategoriesBy(rows []*store.Category, sortBy string) {
	switch sortBy {
	case "documentCount":
		sort.Slice(rows, func(i, j int) bool { return rows[i].DocumentCount > rows[j].DocumentCount })
	case "chunkCount":
		sort.Slice(rows, func(i, j int) bool { return rows[i].ChunkCount > rows[j].ChunkCount })
	case "conceptCount":
		sort.Slice(rows, func(i, j int) bool { return rows[i].ConceptCount > rows[j].ConceptCount })
	default:
		sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	}
}

// categoryChildren returns every descendant of id, one level at a time via
// the category Service's exported FindChildren, bounded at the same depth
// the service itself enforces internally (§4.9).
func (s *Server) categoryChildren(id uint32) []uint32 {
	const maxDepth = 10
	var out []uint32
	frontier := []uint32{id}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []uint32
		for _, node := range frontier {
			children := s.c.Category.FindChildren(node)
			out = append(out, children...)
			next = append(next, children...)
		}
		frontier = next
	}
	return out
}

// categorySearchHandler implements category_search (§6).
func (s *Server) categorySearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input CategorySearchInput) (
	*mcp.CallToolResult, CategorySearchOutput, error,
) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, CategorySearchOutput{}, newToolError(cerr.Validation("category_search: category is required", nil), nil)
	}
	limit := clampLimit(input.Limit, 20, 1, 200)

	cat, found, err := s.c.Category.Resolve(ctx, input.Category)
	if err != nil {
		return nil, CategorySearchOutput{}, newToolError(err, nil)
	}
	if !found {
		suggestions := s.c.Category.SuggestSimilar(input.Category)
		return nil, CategorySearchOutput{}, notFoundError("category_search: category "+input.Category+" not found", suggestions)
	}

	docs, chunks, concepts, err := s.c.Category.AggregateCounts(ctx, cat.ID, input.IncludeChildren)
	if err != nil {
		return nil, CategorySearchOutput{}, newToolError(err, nil)
	}

	catalogIDs := []uint32{cat.ID}
	if input.IncludeChildren {
		catalogIDs = append(catalogIDs, s.categoryChildren(cat.ID)...)
	}

	var documents []*store.Catalog
	for _, categoryID := range catalogIDs {
		rows, err := s.c.Category.FindByCategory(ctx, categoryID)
		if err != nil {
			return nil, CategorySearchOutput{}, newToolError(err, nil)
		}
		documents = append(documents, rows...)
	}

	out := CategorySearchOutput{
		CategoryID:    cat.ID,
		Category:      cat.Category,
		Description:   cat.Description,
		DocumentCount: docs,
		ChunkCount:    chunks,
		ConceptCount:  concepts,
	}
	if len(documents) > limit {
		documents = documents[:limit]
	}
	for _, doc := range documents {
		entry := CategoryDocument{CatalogID: doc.ID, Source: doc.Source, Title: doc.Title}
		if input.IncludeChunks {
			previewRows, err := s.c.Store.Chunks.Where(ctx, store.Eq("catalog_id", doc.ID), chunkPreviewCount)
			if err != nil {
				return nil, CategorySearchOutput{}, newToolError(err, nil)
			}
			for _, ch := range previewRows {
				entry.Chunks = append(entry.Chunks, ChunkItem{
					ChunkID:        ch.ID,
					CatalogID:      ch.CatalogID,
					Text:           ch.Text,
					PageNumber:     ch.PageNumber,
					ConceptDensity: ch.ConceptDensity,
				})
			}
		}
		out.Documents = append(out.Documents, entry)
	}
	return nil, out, nil
}

// chunkPreviewCount bounds how many chunk previews category_search
// attaches per document when includeChunks is set.
const chunkPreviewCount = 3

// listConceptsInCategoryHandler implements list_concepts_in_category (§6).
func (s *Server) listConceptsInCategoryHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListConceptsInCategoryInput) (
	*mcp.CallToolResult, ListConceptsInCategoryOutput, error,
) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, ListConceptsInCategoryOutput{}, newToolError(cerr.Validation("list_concepts_in_category: category is required", nil), nil)
	}
	limit := clampLimit(input.Limit, 50, 1, 500)

	cat, found, err := s.c.Category.Resolve(ctx, input.Category)
	if err != nil {
		return nil, ListConceptsInCategoryOutput{}, newToolError(err, nil)
	}
	if !found {
		suggestions := s.c.Category.SuggestSimilar(input.Category)
		return nil, ListConceptsInCategoryOutput{}, notFoundError("list_concepts_in_category: category "+input.Category+" not found", suggestions)
	}

	docs, err := s.c.Category.FindByCategory(ctx, cat.ID)
	if err != nil {
		return nil, ListConceptsInCategoryOutput{}, newToolError(err, nil)
	}
	docIDs := make(map[uint32]bool, len(docs))
	for _, d := range docs {
		docIDs[d.ID] = true
	}

	conceptRows, err := s.c.Store.Concepts.Scan(ctx, visualsScanLimit)
	if err != nil {
		return nil, ListConceptsInCategoryOutput{}, newToolError(err, nil)
	}
	var matched []*store.Concept
	for _, row := range conceptRows {
		for _, catalogID := range row.CatalogIDs {
			if docIDs[catalogID] {
				matched = append(matched, row)
				break
			}
		}
	}

	if input.SortBy == "name" {
		sort.Slice(matched, func(i, j int) bool { return matched[i].Concept < matched[j].Concept })
	} else {
		sort.Slice(matched, func(i, j int) bool { return matched[i].Weight > matched[j].Weight })
	}

	out := ListConceptsInCategoryOutput{Total: len(matched)}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	for _, row := range matched {
		out.Concepts = append(out.Concepts, toConceptItem(row))
	}
	return nil, out, nil
}

// getVisualsHandler implements get_visuals (§6).
func (s *Server) getVisualsHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetVisualsInput) (
	*mcp.CallToolResult, GetVisualsOutput, error,
) {
	limit := clampLimit(input.Limit, 20, 1, 200)

	var rows []*store.Visual
	switch {
	case len(input.IDs) > 0:
		for _, id := range input.IDs {
			row, found, err := s.c.Store.Visuals.Get(ctx, id)
			if err != nil {
				return nil, GetVisualsOutput{}, newToolError(err, nil)
			}
			if found {
				rows = append(rows, row)
			}
		}
	case input.CatalogID != 0:
		found, err := s.c.Store.Visuals.Where(ctx, store.Eq("catalog_id", input.CatalogID), visualsScanLimit)
		if err != nil {
			return nil, GetVisualsOutput{}, newToolError(err, nil)
		}
		rows = found
	default:
		found, err := s.c.Store.Visuals.Scan(ctx, visualsScanLimit)
		if err != nil {
			return nil, GetVisualsOutput{}, newToolError(err, nil)
		}
		rows = found
	}

	out := GetVisualsOutput{}
	for _, row := range rows {
		if input.VisualType != "" && string(row.VisualType) != input.VisualType {
			continue
		}
		out.Visuals = append(out.Visuals, VisualItem{
			VisualID:     row.ID,
			CatalogID:    row.CatalogID,
			CatalogTitle: row.CatalogTitle,
			ImagePath:    row.ImagePath,
			Description:  row.Description,
			VisualType:   string(row.VisualType),
			PageNumber:   row.PageNumber,
			ConceptNames: row.ConceptNames,
		})
		if len(out.Visuals) >= limit {
			break
		}
	}
	return nil, out, nil
}
