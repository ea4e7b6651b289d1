// Package idcache implements the conceptual ID cache: process-wide,
// immutable-after-init bidirectional name<->id maps for concepts and
// categories. Grounded on a comparable implementation's internal/store MetadataStore
// pattern of loading everything needed for O(1) lookups once at startup
// (e.g. its file/project metadata caches), generalized to two independent
// domains (concepts, categories) per §4.4.
package idcache

import (
	"context"
	"fmt"

	"github.com/concept-rag/conceptrag/internal/store"
)

// scanLimit is set well above any expected corpus size (§4.4: "limit is
// set well above the expected max, e.g. 100 000").
const scanLimit = 100_000

// domain is one bidirectional name<->id map, immutable after Init.
type domain struct {
	idToName map[uint32]string
	nameToID map[string]uint32
}

func newDomain() *domain {
	return &domain{idToName: map[uint32]string{}, nameToID: map[string]uint32{}}
}

func (d *domain) add(id uint32, name string) {
	d.idToName[id] = name
	d.nameToID[name] = id
}

// Cache is the process-wide concept+category id cache. Build with New,
// then never mutate — all query-path reads are lock-free.
type Cache struct {
	concepts   *domain
	categories *domain
}

// New scans the concept and category tables fully and builds both maps.
// A table with zero rows (§4.13: "a missing concept or category table at
// open time is tolerated") simply yields an empty domain rather than an
// error.
func New(ctx context.Context, concepts store.ConceptStore, categories store.CategoryStore) (*Cache, error) {
	c := &Cache{concepts: newDomain(), categories: newDomain()}

	conceptRows, err := concepts.Scan(ctx, scanLimit)
	if err != nil {
		return nil, fmt.Errorf("idcache: scan concepts: %w", err)
	}
	for _, row := range conceptRows {
		c.concepts.add(row.ID, row.Concept)
	}

	categoryRows, err := categories.Scan(ctx, scanLimit)
	if err != nil {
		return nil, fmt.Errorf("idcache: scan categories: %w", err)
	}
	for _, row := range categoryRows {
		c.categories.add(row.ID, row.Category)
	}

	return c, nil
}

// GetConceptID resolves a concept name to its id. Missing names return
// (0, false) rather than an error (§4.4: "Missing names in getId return
// None").
func (c *Cache) GetConceptID(name string) (uint32, bool) {
	id, ok := c.concepts.nameToID[name]
	return id, ok
}

// GetConceptName resolves a concept id to its name.
func (c *Cache) GetConceptName(id uint32) (string, bool) {
	name, ok := c.concepts.idToName[id]
	return name, ok
}

// GetConceptIDs resolves each name, silently dropping ones that aren't
// found — callers that need to know what was dropped should check length
// themselves; this mirrors getNames' drop-silently semantics applied
// symmetrically to name->id lookups used for the same purpose at ingest.
func (c *Cache) GetConceptIDs(names []string) []uint32 {
	ids := make([]uint32, 0, len(names))
	for _, name := range names {
		if id, ok := c.concepts.nameToID[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetConceptNames resolves each id, silently dropping ids that no longer
// exist (§4.4: "indicate stale references after a concept rename and are
// treated as non-fatal").
func (c *Cache) GetConceptNames(ids []uint32) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.concepts.idToName[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// GetCategoryID resolves a category name to its id.
func (c *Cache) GetCategoryID(name string) (uint32, bool) {
	id, ok := c.categories.nameToID[name]
	return id, ok
}

// GetCategoryName resolves a category id to its name.
func (c *Cache) GetCategoryName(id uint32) (string, bool) {
	name, ok := c.categories.idToName[id]
	return name, ok
}

// GetCategoryIDs resolves each name, dropping unknowns silently.
func (c *Cache) GetCategoryIDs(names []string) []uint32 {
	ids := make([]uint32, 0, len(names))
	for _, name := range names {
		if id, ok := c.categories.nameToID[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetCategoryNames resolves each id, dropping unknowns silently.
func (c *Cache) GetCategoryNames(ids []uint32) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.categories.idToName[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// ConceptCount and CategoryCount report the number of entries loaded,
// used by the stats surface (§12) and by health checks.
func (c *Cache) ConceptCount() int  { return len(c.concepts.idToName) }
func (c *Cache) CategoryCount() int { return len(c.categories.idToName) }
