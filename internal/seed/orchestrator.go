package seed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/hashid"
	"github.com/concept-rag/conceptrag/internal/store"
)

// DocumentProcessor turns a raw input file into its catalog entry and
// chunks. What it does internally (parsing, summarizing, concept
// extraction) is a pluggable concern outside the orchestrator's scope —
// the orchestrator only owns stage sequencing, resumability, and the
// checkpoint/completeness bookkeeping around calling it.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, path string, cached *DocumentStageData) (*store.Catalog, []*store.Chunk, *DocumentStageData, error)
}

// ConceptAggregator builds the full concept table from every catalog
// entry, not just newly-added ones (§4.12: "aggregate concepts across ALL
// catalog entries... otherwise the index would be incomplete").
type ConceptAggregator interface {
	AggregateConcepts(ctx context.Context, catalog []*store.Catalog) ([]*store.Concept, error)
}

// Summarizer computes (or recomputes) summaries for catalog/concept/
// category rows that don't already carry a valid one.
type Summarizer interface {
	SummarizeCatalog(ctx context.Context, row *store.Catalog) (string, error)
	SummarizeConcept(ctx context.Context, row *store.Concept) (string, error)
	SummarizeCategory(ctx context.Context, row *store.Category) (string, error)
}

// CategoryMapper derives category_ids for a catalog/chunk row from the
// concepts it contains (§4.12: "static mapping from concept -> category id").
type CategoryMapper interface {
	CategoriesFor(conceptIDs []uint32) []uint32
}

// Orchestrator drives the documents -> concepts -> summaries -> categories
// -> complete pipeline against a store, persisting a resumable checkpoint
// after every stage.
type Orchestrator struct {
	store          *store.Store
	stageCache     *StageCache
	checkpointPath string
	checkpoint     *store.Checkpoint
}

// storeConceptResolver reproduces previously-resolved concept IDs by
// consulting the concept table as it stood before a rebuild, so a
// collision resolved on one run resolves identically on the next
// (hashid.GenerateStableID's Resolver contract).
type storeConceptResolver struct {
	byName map[string]uint32
}

func newStoreConceptResolver(existing []*store.Concept) *storeConceptResolver {
	m := make(map[string]uint32, len(existing))
	for _, c := range existing {
		m[c.Concept] = c.ID
	}
	return &storeConceptResolver{byName: m}
}

func (r *storeConceptResolver) Lookup(s string) (uint32, bool) {
	id, ok := r.byName[s]
	return id, ok
}

func (r *storeConceptResolver) Persist(s string, id uint32) {
	r.byName[s] = id
}

// New builds an Orchestrator. checkpointPath and stageCacheDir are
// typically siblings of filesDir. An existing checkpoint at
// checkpointPath is loaded and validated against databasePath/filesDir.
func New(ctx context.Context, s *store.Store, checkpointPath, stageCacheDir, databasePath, filesDir string) (*Orchestrator, []string, error) {
	cp, err := LoadCheckpoint(checkpointPath)
	if err != nil {
		return nil, nil, err
	}
	warnings := ValidateResume(cp, databasePath, filesDir)
	cp.DatabasePath = databasePath
	cp.FilesDir = filesDir
	if cp.Version == 0 {
		cp.Version = CheckpointVersion
	}

	cache, err := NewStageCache(stageCacheDir)
	if err != nil {
		return nil, nil, err
	}

	return &Orchestrator{
		store:          s,
		stageCache:     cache,
		checkpointPath: checkpointPath,
		checkpoint:     cp,
	}, warnings, nil
}

// Checkpoint returns the orchestrator's current checkpoint, for
// inspection (e.g. by a `stats` command).
func (o *Orchestrator) Checkpoint() *store.Checkpoint {
	return o.checkpoint
}

func (o *Orchestrator) save() error {
	return SaveCheckpoint(o.checkpointPath, o.checkpoint)
}

// HashFile computes the content hash identifying a document (§4.12:
// "compute content hash").
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cerr.New(cerr.ErrCodeStoreIO, fmt.Sprintf("seed: read file %s", path), err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RunDocuments executes the documents stage (§4.12): for each input file,
// skip if its content hash is already processed; otherwise process it
// (reusing any stage-cached prior extraction), upsert the resulting
// catalog entry and chunks, and record the outcome.
func (o *Orchestrator) RunDocuments(ctx context.Context, paths []string, processor DocumentProcessor) error {
	o.checkpoint.Stage = string(StageDocuments)

	for _, path := range paths {
		hash, err := HashFile(path)
		if err != nil {
			MarkFailed(o.checkpoint, path)
			continue
		}
		if HasProcessed(o.checkpoint, hash) {
			continue
		}

		cached, _, _ := o.stageCache.Get(hash)

		cat, chunks, toCache, err := processor.ProcessDocument(ctx, path, cached)
		if err != nil {
			MarkFailed(o.checkpoint, path)
			o.checkpoint.LastFile = path
			continue
		}

		if err := o.store.Catalog.Upsert(ctx, []*store.Catalog{cat}); err != nil {
			return fmt.Errorf("seed: upsert catalog entry for %s: %w", path, err)
		}
		if len(chunks) > 0 {
			if err := o.store.Chunks.Upsert(ctx, chunks); err != nil {
				return fmt.Errorf("seed: upsert chunks for %s: %w", path, err)
			}
		}
		if toCache != nil {
			if err := o.stageCache.Put(hash, toCache); err != nil {
				return fmt.Errorf("seed: write stage cache for %s: %w", path, err)
			}
		}

		MarkProcessed(o.checkpoint, hash)
		o.checkpoint.LastFile = path
		if err := o.save(); err != nil {
			return err
		}
	}

	o.checkpoint.Stage = string(NextStage(StageDocuments))
	return o.save()
}

// RunConcepts executes the concepts stage (§4.12): aggregate concepts
// across every catalog entry, assign stable ids, and rebuild the concept
// table.
func (o *Orchestrator) RunConcepts(ctx context.Context, aggregator ConceptAggregator) error {
	o.checkpoint.Stage = string(StageConcepts)

	catalog, err := o.store.Catalog.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan catalog for concept aggregation: %w", err)
	}

	concepts, err := aggregator.AggregateConcepts(ctx, catalog)
	if err != nil {
		return fmt.Errorf("seed: aggregate concepts: %w", err)
	}

	existingConcepts, err := o.store.Concepts.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan existing concepts for id resolution: %w", err)
	}
	resolver := newStoreConceptResolver(existingConcepts)
	usedIDs := make(map[uint32]struct{}, len(concepts))
	for _, c := range concepts {
		if c.ID == 0 {
			c.ID = hashid.GenerateStableID(c.Concept, usedIDs, resolver)
		}
		usedIDs[c.ID] = struct{}{}
	}

	if len(concepts) > 0 {
		if err := o.store.Concepts.Upsert(ctx, concepts); err != nil {
			return fmt.Errorf("seed: upsert concepts: %w", err)
		}
	}

	o.checkpoint.Stage = string(NextStage(StageConcepts))
	return o.save()
}

// RunSummaries executes the summaries stage (§4.12): recompute any
// catalog/concept/category summary that isn't already valid, leaving
// valid ones untouched.
func (o *Orchestrator) RunSummaries(ctx context.Context, summarizer Summarizer) error {
	o.checkpoint.Stage = string(StageSummaries)

	catalog, err := o.store.Catalog.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan catalog for summaries: %w", err)
	}
	var toUpdate []*store.Catalog
	for _, row := range catalog {
		if IsValidSummary(row.Summary) {
			continue
		}
		summary, err := summarizer.SummarizeCatalog(ctx, row)
		if err != nil {
			continue
		}
		row.Summary = summary
		toUpdate = append(toUpdate, row)
	}
	if len(toUpdate) > 0 {
		if err := o.store.Catalog.Upsert(ctx, toUpdate); err != nil {
			return fmt.Errorf("seed: persist catalog summaries: %w", err)
		}
	}

	concepts, err := o.store.Concepts.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan concepts for summaries: %w", err)
	}
	var conceptsToUpdate []*store.Concept
	for _, row := range concepts {
		if IsValidSummary(row.Summary) {
			continue
		}
		summary, err := summarizer.SummarizeConcept(ctx, row)
		if err != nil {
			continue
		}
		row.Summary = summary
		conceptsToUpdate = append(conceptsToUpdate, row)
	}
	if len(conceptsToUpdate) > 0 {
		if err := o.store.Concepts.Upsert(ctx, conceptsToUpdate); err != nil {
			return fmt.Errorf("seed: persist concept summaries: %w", err)
		}
	}

	categories, err := o.store.Categories.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan categories for summaries: %w", err)
	}
	var categoriesToUpdate []*store.Category
	for _, row := range categories {
		if IsValidSummary(row.Description) {
			continue
		}
		summary, err := summarizer.SummarizeCategory(ctx, row)
		if err != nil {
			continue
		}
		row.Description = summary
		categoriesToUpdate = append(categoriesToUpdate, row)
	}
	if len(categoriesToUpdate) > 0 {
		if err := o.store.Categories.Upsert(ctx, categoriesToUpdate); err != nil {
			return fmt.Errorf("seed: persist category summaries: %w", err)
		}
	}

	o.checkpoint.Stage = string(NextStage(StageSummaries))
	return o.save()
}

// RunCategories executes the categories stage (§4.12): derive category_ids
// for catalog rows from the concepts their chunks contain. Chunk rows carry
// no category ids and are not updated.
func (o *Orchestrator) RunCategories(ctx context.Context, mapper CategoryMapper) error {
	o.checkpoint.Stage = string(StageCategories)

	catalog, err := o.store.Catalog.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan catalog for categorization: %w", err)
	}
	chunks, err := o.store.Chunks.Scan(ctx, 1_000_000)
	if err != nil {
		return fmt.Errorf("seed: scan chunks for categorization: %w", err)
	}

	conceptIDsByCatalog := make(map[uint32][]uint32)
	for _, chunk := range chunks {
		conceptIDsByCatalog[chunk.CatalogID] = append(conceptIDsByCatalog[chunk.CatalogID], chunk.ConceptIDs...)
	}

	var catalogToUpdate []*store.Catalog
	for _, row := range catalog {
		row.CategoryIDs = dedupeUint32(mapper.CategoriesFor(conceptIDsByCatalog[row.ID]))
		catalogToUpdate = append(catalogToUpdate, row)
	}
	if len(catalogToUpdate) > 0 {
		if err := o.store.Catalog.Upsert(ctx, catalogToUpdate); err != nil {
			return fmt.Errorf("seed: persist catalog categories: %w", err)
		}
	}

	o.checkpoint.Stage = string(NextStage(StageCategories))
	return o.save()
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
