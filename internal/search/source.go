package search

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/store"
)

// catalogSource adapts store.CatalogStore to RowSource, scoring a catalog
// row's title and summary as its text (§4.6: catalog search ranks document
// metadata, not chunk text).
type catalogSource struct {
	store store.CatalogStore
}

func newCatalogSource(s store.CatalogStore) RowSource { return &catalogSource{store: s} }

func (c *catalogSource) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	hits, err := c.store.VectorSearch(ctx, v, limit)
	return convertHits(hits), err
}

func (c *catalogSource) GetByIDs(ctx context.Context, ids []uint32) ([]Row, error) {
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		row, ok, err := c.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows = append(rows, Row{ID: row.ID, Text: row.Summary, Title: row.Title, Vector: row.Vector})
	}
	return rows, nil
}

func (c *catalogSource) Scan(ctx context.Context, limit int) ([]Row, error) {
	rows, err := c.store.Scan(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, Row{ID: row.ID, Text: row.Summary, Title: row.Title, Vector: row.Vector})
	}
	return out, nil
}

// chunkSource adapts store.ChunkStore to RowSource. Chunks have no title
// (§4.6: "only when the collection has one" — chunks don't), so the title
// component is always absent for this source. An optional catalogID
// restricts results to chunks belonging to one document.
type chunkSource struct {
	store     store.ChunkStore
	catalogID *uint32
}

func newChunkSource(s store.ChunkStore, catalogID *uint32) RowSource {
	return &chunkSource{store: s, catalogID: catalogID}
}

func (c *chunkSource) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	hits, err := c.store.VectorSearch(ctx, v, limit)
	if err != nil {
		return nil, err
	}
	if c.catalogID == nil {
		return convertHits(hits), nil
	}

	ids := make([]uint32, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	rows, err := c.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	allowed := make(map[uint32]bool, len(rows))
	for _, r := range rows {
		if r.CatalogID == *c.catalogID {
			allowed[r.ID] = true
		}
	}
	filtered := make([]VectorHit, 0, len(hits))
	for _, h := range convertHits(hits) {
		if allowed[h.ID] {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

func (c *chunkSource) GetByIDs(ctx context.Context, ids []uint32) ([]Row, error) {
	rows, err := c.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if c.catalogID != nil && row.CatalogID != *c.catalogID {
			continue
		}
		out = append(out, Row{ID: row.ID, Text: row.Text, Vector: row.Vector})
	}
	return out, nil
}

func (c *chunkSource) Scan(ctx context.Context, limit int) ([]Row, error) {
	rows, err := c.store.Scan(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if c.catalogID != nil && row.CatalogID != *c.catalogID {
			continue
		}
		out = append(out, Row{ID: row.ID, Text: row.Text, Vector: row.Vector})
	}
	return out, nil
}

// conceptSource adapts store.ConceptStore to RowSource, scoring a concept's
// own name as both title and text (§4.6: concepts rank by name similarity
// foremost — title weight 0.40, the highest of any collection).
type conceptSource struct {
	store store.ConceptStore
}

func newConceptSource(s store.ConceptStore) RowSource { return &conceptSource{store: s} }

func (c *conceptSource) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	hits, err := c.store.VectorSearch(ctx, v, limit)
	return convertHits(hits), err
}

func (c *conceptSource) GetByIDs(ctx context.Context, ids []uint32) ([]Row, error) {
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		row, ok, err := c.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows = append(rows, Row{ID: row.ID, Text: row.Concept, Title: row.Concept, Vector: row.Vector})
	}
	return rows, nil
}

func (c *conceptSource) Scan(ctx context.Context, limit int) ([]Row, error) {
	rows, err := c.store.Scan(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, Row{ID: row.ID, Text: row.Concept, Title: row.Concept, Vector: row.Vector})
	}
	return out, nil
}

func convertHits(hits []store.VectorHit) []VectorHit {
	out := make([]VectorHit, len(hits))
	for i, h := range hits {
		out[i] = VectorHit{ID: h.ID, Distance: h.Distance}
	}
	return out
}
