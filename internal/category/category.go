// Package category implements the Category Service: name/ID/
// alias/fuzzy category resolution, hierarchy-path walking, and derived
// category aggregation (optionally including descendants).
//
// Grounded on a comparable implementation's internal/store/bm25.go for the bleve-backed
// fuzzy-match shape (in-memory index via bleve.NewMemOnly, a custom
// analyzer, match queries), repurposed from full-text code search to a
// small in-memory name index over the categories table, built once at
// construction and rebuilt whenever the caller calls Refresh.
package category

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/concept-rag/conceptrag/internal/store"
)

// scanLimit bounds how many categories are loaded to build the in-memory
// alias map and fuzzy index; mirrors internal/idcache's full-table scan.
const scanLimit = 100_000

// maxHierarchyDepth bounds getHierarchyPath and findChildren walks against
// a malformed or cyclic parent graph (§4.9: "stopping... after 10 hops").
const maxHierarchyDepth = 10

// suggestionCount is how many "did you mean" suggestions a failed resolve
// surfaces (§4.9, §7: "top 5").
const suggestionCount = 5

// Service resolves and aggregates over the category table.
type Service struct {
	categories store.CategoryStore
	catalog    store.CatalogStore

	index      bleve.Index
	byID       map[uint32]*store.Category
	aliasToID  map[string]uint32
	childrenOf map[uint32][]uint32
}

type nameDoc struct {
	Name string `json:"name"`
}

// New builds a Service, scanning the category table once to build the
// alias map, parent/child adjacency, and fuzzy name index.
func New(ctx context.Context, categories store.CategoryStore, catalog store.CatalogStore) (*Service, error) {
	s := &Service{categories: categories, catalog: catalog}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rescans the category table and rebuilds the in-memory indexes.
// Categories are expected to change rarely (seeding-time only), so this is
// not called on the query path.
func (s *Service) Refresh(ctx context.Context) error {
	rows, err := s.categories.Scan(ctx, scanLimit)
	if err != nil {
		return fmt.Errorf("category: scan: %w", err)
	}

	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return fmt.Errorf("category: build fuzzy index: %w", err)
	}

	byID := make(map[uint32]*store.Category, len(rows))
	aliasToID := make(map[string]uint32)
	childrenOf := make(map[uint32][]uint32)

	batch := idx.NewBatch()
	for _, row := range rows {
		byID[row.ID] = row
		for _, alias := range row.Aliases {
			aliasToID[strings.ToLower(alias)] = row.ID
		}
		if row.ParentCategoryID != nil {
			childrenOf[*row.ParentCategoryID] = append(childrenOf[*row.ParentCategoryID], row.ID)
		}
		if err := batch.Index(strconv.FormatUint(uint64(row.ID), 10), nameDoc{Name: row.Category}); err != nil {
			return fmt.Errorf("category: index %q: %w", row.Category, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("category: batch index: %w", err)
	}

	if s.index != nil {
		_ = s.index.Close()
	}
	s.index = idx
	s.byID = byID
	s.aliasToID = aliasToID
	s.childrenOf = childrenOf
	return nil
}

// Close releases the in-memory fuzzy index.
func (s *Service) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}

func (s *Service) getByIDCached(id uint32) (*store.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}
