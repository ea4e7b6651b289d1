package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Store aggregates the four-plus-one per-table stores (§3) behind one
// opened SQLite connection and one vector index per table. The container
// opens exactly one Store per installation and hands out the typed
// per-table interfaces to repositories built on top of it.
type Store struct {
	db *sql.DB

	Catalog    CatalogStore
	Chunks     ChunkStore
	Concepts   ConceptStore
	Categories CategoryStore
	Visuals    VisualStore
}

// Open opens (or creates) the store at path. An empty path opens an
// in-memory store, used by tests and by components that only need a
// throwaway scratch store.
//
// §4.13: "A missing concept or category table at open time is tolerated."
// Since this store always runs its schema migration unconditionally, the
// concepts/categories tables always exist after Open — callers instead
// observe "missing" as Count()==0, and the id-cache and dependent
// services already treat an empty table as an empty domain rather than an
// error.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:         db,
		Catalog:    newSQLiteCatalogStore(db),
		Chunks:     newSQLiteChunkStore(db),
		Concepts:   newSQLiteConceptStore(db),
		Categories: newSQLiteCategoryStore(db),
		Visuals:    newSQLiteVisualStore(db),
	}, nil
}

// Close shuts down every per-table store then the shared connection.
func (s *Store) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{s.Catalog, s.Chunks, s.Concepts, s.Categories, s.Visuals} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// GetState/SetState back the embedding-dimension/model bookkeeping and any
// other small piece of runtime state that doesn't warrant its own table,
// grounded on a comparable implementation's MetadataStore GetState/SetState key-value pair.
func (s *Store) GetState(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// Stats reports per-table row counts and the (reporting-only) partition
// count §4.3 prescribes for each table's vector index.
type TableStats struct {
	Rows           int
	PartitionCount int
}

func (s *Store) Stats(ctx context.Context) (map[Table]TableStats, error) {
	out := map[Table]TableStats{}
	counters := map[Table]func(context.Context) (int, error){
		TableCatalog:    s.Catalog.Count,
		TableChunks:     s.Chunks.Count,
		TableConcepts:   s.Concepts.Count,
		TableCategories: s.Categories.Count,
		TableVisuals:    s.Visuals.Count,
	}
	for table, count := range counters {
		n, err := count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = TableStats{Rows: n, PartitionCount: partitionCount(n)}
	}
	return out, nil
}
