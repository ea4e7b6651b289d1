package category

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/concept-rag/conceptrag/internal/store"
)

// Resolve looks up a category by, in order, alias (case-insensitive),
// exact name, numeric ID, and fuzzy name substring — the first resolver
// that succeeds wins (§4.9).
func (s *Service) Resolve(ctx context.Context, query string) (*store.Category, bool, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, false, nil
	}

	if id, ok := s.aliasToID[strings.ToLower(trimmed)]; ok {
		if cat, found := s.getByIDCached(id); found {
			return cat, true, nil
		}
	}

	cat, found, err := s.categories.GetByName(ctx, trimmed)
	if err != nil {
		return nil, false, fmt.Errorf("category: resolve by name: %w", err)
	}
	if found {
		return cat, true, nil
	}

	if numericID, err := strconv.ParseUint(trimmed, 10, 32); err == nil {
		cat, found, err := s.categories.Get(ctx, uint32(numericID))
		if err != nil {
			return nil, false, fmt.Errorf("category: resolve by id: %w", err)
		}
		if found {
			return cat, true, nil
		}
	}

	if id, found := s.fuzzyMatchOne(trimmed); found {
		if cat, ok := s.getByIDCached(id); ok {
			return cat, true, nil
		}
	}

	return nil, false, nil
}

// SuggestSimilar returns up to suggestionCount category names whose fuzzy
// match against query is closest, for a "did you mean" prompt (§4.9, §7)
// when Resolve fails entirely.
func (s *Service) SuggestSimilar(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || s.index == nil {
		return nil
	}

	q := bleve.NewMatchQuery(trimmed)
	q.SetField("name")
	req := bleve.NewSearchRequest(q)
	req.Size = suggestionCount

	result, err := s.index.Search(req)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 32)
		if err != nil {
			continue
		}
		if cat, ok := s.getByIDCached(uint32(id)); ok {
			names = append(names, cat.Category)
		}
	}
	return names
}

func (s *Service) fuzzyMatchOne(query string) (uint32, bool) {
	if s.index == nil {
		return 0, false
	}
	q := bleve.NewMatchQuery(query)
	q.SetField("name")
	req := bleve.NewSearchRequest(q)
	req.Size = 1

	result, err := s.index.Search(req)
	if err != nil || len(result.Hits) == 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(result.Hits[0].ID, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}
