package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type sqliteChunkStore struct {
	db  *sql.DB
	idx *vectorIndex
}

var _ ChunkStore = (*sqliteChunkStore)(nil)

func newSQLiteChunkStore(db *sql.DB) *sqliteChunkStore {
	return &sqliteChunkStore{db: db, idx: newVectorIndex(Dimensions)}
}

const chunkColumns = `id, catalog_id, text, vector, concept_ids, concept_density, page_number`

func scanChunkRow(scan func(dest ...any) error) (*Chunk, error) {
	var c Chunk
	var conceptIDsRaw, vecRaw []byte
	if err := scan(&c.ID, &c.CatalogID, &c.Text, &vecRaw, &conceptIDsRaw, &c.ConceptDensity, &c.PageNumber); err != nil {
		return nil, err
	}
	ids, err := parseArrayField[uint32](conceptIDsRaw)
	if err != nil {
		return nil, err
	}
	c.ConceptIDs = ids
	c.Vector = decodeVector(vecRaw)
	return &c, nil
}

func collectChunks(rows *sql.Rows) ([]*Chunk, error) {
	var out []*Chunk
	for rows.Next() {
		c, err := scanChunkRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteChunkStore) Scan(ctx context.Context, limit int) ([]*Chunk, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM chunks ORDER BY id LIMIT ?`, chunkColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	defer rows.Close()
	return collectChunks(rows)
}

func (s *sqliteChunkStore) Where(ctx context.Context, pred Predicate, limit int) ([]*Chunk, error) {
	clause, args := Render(pred)
	query := fmt.Sprintf(`SELECT %s FROM chunks WHERE %s ORDER BY id LIMIT ?`, chunkColumns, clause)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("where chunks: %w", err)
	}
	defer rows.Close()
	return collectChunks(rows)
}

func (s *sqliteChunkStore) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	return s.idx.Search(v, limit)
}

func (s *sqliteChunkStore) Get(ctx context.Context, id uint32) (*Chunk, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM chunks WHERE id = ?`, chunkColumns), id)
	c, err := scanChunkRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get chunk %d: %w", id, err)
	}
	return c, true, nil
}

func (s *sqliteChunkStore) GetMany(ctx context.Context, ids []uint32) ([]*Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM chunks WHERE id IN (%s)`, chunkColumns, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get many chunks: %w", err)
	}
	defer rows.Close()
	return collectChunks(rows)
}

func (s *sqliteChunkStore) Upsert(ctx context.Context, rowsIn []*Chunk) error {
	if len(rowsIn) == 0 {
		return nil
	}
	for _, c := range rowsIn {
		if err := validateDimension(c.Vector); err != nil {
			return fmt.Errorf("chunk %d: %w", c.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, catalog_id, text, vector, concept_ids, concept_density, page_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			catalog_id=excluded.catalog_id, text=excluded.text, vector=excluded.vector,
			concept_ids=excluded.concept_ids, concept_density=excluded.concept_density,
			page_number=excluded.page_number
	`)
	if err != nil {
		return fmt.Errorf("prepare chunk upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rowsIn {
		conceptIDs, err := encodeArrayField(c.ConceptIDs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.CatalogID, c.Text, encodeVector(c.Vector),
			conceptIDs, c.ConceptDensity, c.PageNumber); err != nil {
			return fmt.Errorf("upsert chunk %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk upsert: %w", err)
	}

	for _, c := range rowsIn {
		if err := s.idx.Add(c.ID, c.Vector); err != nil {
			return fmt.Errorf("index chunk %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *sqliteChunkStore) DeleteByCatalogID(ctx context.Context, catalogID uint32) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chunks WHERE catalog_id = ?`, catalogID)
	if err != nil {
		return fmt.Errorf("list chunks for delete: %w", err)
	}
	var ids []uint32
	for rows.Next() {
		var id uint32
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE catalog_id = ?`, catalogID); err != nil {
		return fmt.Errorf("delete chunks by catalog_id: %w", err)
	}
	for _, id := range ids {
		s.idx.Delete(id)
	}
	return nil
}

func (s *sqliteChunkStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *sqliteChunkStore) Close() error {
	return s.idx.Close()
}
