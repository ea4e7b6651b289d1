package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sqliteCatalogStore implements CatalogStore over the shared db connection
// and a dedicated vector index, following the transaction/prepared-statement
// style of sqlite_bm25.go.
type sqliteCatalogStore struct {
	db  *sql.DB
	idx *vectorIndex
}

var _ CatalogStore = (*sqliteCatalogStore)(nil)

func newSQLiteCatalogStore(db *sql.DB) *sqliteCatalogStore {
	return &sqliteCatalogStore{db: db, idx: newVectorIndex(Dimensions)}
}

func scanCatalogRow(scan func(dest ...any) error) (*Catalog, error) {
	var c Catalog
	var categoryIDsRaw, vecRaw []byte
	var docType string
	if err := scan(&c.ID, &c.Source, &c.Hash, &c.Title, &c.Summary, &categoryIDsRaw, &vecRaw, &docType); err != nil {
		return nil, err
	}
	ids, err := parseArrayField[uint32](categoryIDsRaw)
	if err != nil {
		return nil, err
	}
	c.CategoryIDs = ids
	c.Vector = decodeVector(vecRaw)
	c.Type = DocumentType(docType)
	return &c, nil
}

const catalogColumns = `id, source, hash, title, summary, category_ids, vector, doc_type`

func (s *sqliteCatalogStore) Scan(ctx context.Context, limit int) ([]*Catalog, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM catalog ORDER BY id LIMIT ?`, catalogColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	defer rows.Close()
	return collectCatalog(rows)
}

func (s *sqliteCatalogStore) Where(ctx context.Context, pred Predicate, limit int) ([]*Catalog, error) {
	clause, args := Render(pred)
	query := fmt.Sprintf(`SELECT %s FROM catalog WHERE %s ORDER BY id LIMIT ?`, catalogColumns, clause)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("where catalog: %w", err)
	}
	defer rows.Close()
	return collectCatalog(rows)
}

func collectCatalog(rows *sql.Rows) ([]*Catalog, error) {
	var out []*Catalog
	for rows.Next() {
		c, err := scanCatalogRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteCatalogStore) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	return s.idx.Search(v, limit)
}

func (s *sqliteCatalogStore) Get(ctx context.Context, id uint32) (*Catalog, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM catalog WHERE id = ?`, catalogColumns), id)
	c, err := scanCatalogRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog %d: %w", id, err)
	}
	return c, true, nil
}

func (s *sqliteCatalogStore) Upsert(ctx context.Context, rowsIn []*Catalog) error {
	if len(rowsIn) == 0 {
		return nil
	}
	for _, c := range rowsIn {
		if err := validateDimension(c.Vector); err != nil {
			return fmt.Errorf("catalog %d: %w", c.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog (id, source, hash, title, summary, category_ids, vector, doc_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, hash=excluded.hash, title=excluded.title,
			summary=excluded.summary, category_ids=excluded.category_ids,
			vector=excluded.vector, doc_type=excluded.doc_type
	`)
	if err != nil {
		return fmt.Errorf("prepare catalog upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rowsIn {
		categoryIDs, err := encodeArrayField(c.CategoryIDs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Source, c.Hash, c.Title, c.Summary,
			categoryIDs, encodeVector(c.Vector), string(c.Type)); err != nil {
			return fmt.Errorf("upsert catalog %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog upsert: %w", err)
	}

	for _, c := range rowsIn {
		if err := s.idx.Add(c.ID, c.Vector); err != nil {
			return fmt.Errorf("index catalog %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *sqliteCatalogStore) DeleteByID(ctx context.Context, ids []uint32) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`DELETE FROM catalog WHERE id IN (%s)`, strings.Join(placeholders, ","))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete catalog: %w", err)
	}
	for _, id := range ids {
		s.idx.Delete(id)
	}
	return nil
}

func (s *sqliteCatalogStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog`).Scan(&n)
	return n, err
}

func (s *sqliteCatalogStore) Close() error {
	return s.idx.Close()
}
