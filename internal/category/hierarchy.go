package category

import (
	"context"
	"fmt"

	"github.com/concept-rag/conceptrag/internal/store"
)

// GetHierarchyPath walks parent links starting at id, prepending each
// category's name, stopping at a nil parent or after maxHierarchyDepth
// hops as a cycle guard (§4.9).
func (s *Service) GetHierarchyPath(ctx context.Context, id uint32) ([]string, error) {
	var path []string
	current := id
	for hop := 0; hop < maxHierarchyDepth; hop++ {
		cat, found := s.getByIDCached(current)
		if !found {
			var err error
			cat, found, err = s.categories.Get(ctx, current)
			if err != nil {
				return nil, fmt.Errorf("category: hierarchy path: %w", err)
			}
			if !found {
				break
			}
		}
		path = append([]string{cat.Category}, path...)
		if cat.ParentCategoryID == nil {
			break
		}
		current = *cat.ParentCategoryID
	}
	return path, nil
}

// FindByCategory scans the catalog for entries whose category_ids contain
// id (§4.9: "findByCategory(id) on the catalog scans and filters by
// id ∈ category_ids").
func (s *Service) FindByCategory(ctx context.Context, id uint32) ([]*store.Catalog, error) {
	rows, err := s.catalog.Scan(ctx, catalogScanLimit)
	if err != nil {
		return nil, fmt.Errorf("category: find by category: %w", err)
	}

	var out []*store.Catalog
	for _, row := range rows {
		if containsID(row.CategoryIDs, id) {
			out = append(out, row)
		}
	}
	return out, nil
}

// catalogScanLimit bounds the full-table scan FindByCategory performs.
const catalogScanLimit = 100_000

// FindChildren returns the direct children of id. Child inclusion beyond
// one level is the caller's responsibility via repeated calls or
// AggregateCounts's includeChildren flag (§4.9: "one level at a time,
// bounded by depth 10").
func (s *Service) FindChildren(id uint32) []uint32 {
	children := s.childrenOf[id]
	out := make([]uint32, len(children))
	copy(out, children)
	return out
}

// descendants collects all descendants of id up to maxHierarchyDepth
// levels deep, guarding against a cyclic parent graph by bounding depth
// rather than tracking a visited set (mirrors getHierarchyPath's guard).
func (s *Service) descendants(id uint32) []uint32 {
	var out []uint32
	frontier := []uint32{id}
	for depth := 0; depth < maxHierarchyDepth && len(frontier) > 0; depth++ {
		var next []uint32
		for _, node := range frontier {
			for _, child := range s.childrenOf[node] {
				out = append(out, child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return out
}

// AggregateCounts reports a category's own document/chunk/concept counts,
// optionally summed with every descendant's counts when includeChildren is
// set (§4.9: "Child inclusion is opt-in... aggregate").
func (s *Service) AggregateCounts(ctx context.Context, id uint32, includeChildren bool) (docs, chunks, concepts int, err error) {
	cat, found := s.getByIDCached(id)
	if !found {
		cat, found, err = s.categories.Get(ctx, id)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("category: aggregate: %w", err)
		}
		if !found {
			return 0, 0, 0, nil
		}
	}
	docs, chunks, concepts = cat.DocumentCount, cat.ChunkCount, cat.ConceptCount

	if includeChildren {
		for _, childID := range s.descendants(id) {
			if child, ok := s.getByIDCached(childID); ok {
				docs += child.DocumentCount
				chunks += child.ChunkCount
				concepts += child.ConceptCount
			}
		}
	}
	return docs, chunks, concepts, nil
}

func containsID(ids []uint32, target uint32) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
