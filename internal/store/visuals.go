package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteVisualStore implements VisualStore. §3 marks Visual optional and
// §4.3's vectorSearch contract isn't exercised for it in any tool listed in
// §6 (get_visuals filters by id/catalog_id/visual_type, not similarity), so
// no vector index is attached here.
type sqliteVisualStore struct {
	db *sql.DB
}

var _ VisualStore = (*sqliteVisualStore)(nil)

func newSQLiteVisualStore(db *sql.DB) *sqliteVisualStore {
	return &sqliteVisualStore{db: db}
}

const visualColumns = `id, catalog_id, catalog_title, image_path, description, vector, visual_type, page_number, bounding_box, concept_ids, concept_names, chunk_ids`

func scanVisualRow(scan func(dest ...any) error) (*Visual, error) {
	var v Visual
	var vecRaw, conceptIDsRaw, conceptNamesRaw, chunkIDsRaw []byte
	var visualType string
	if err := scan(&v.ID, &v.CatalogID, &v.CatalogTitle, &v.ImagePath, &v.Description, &vecRaw,
		&visualType, &v.PageNumber, &v.BoundingBox, &conceptIDsRaw, &conceptNamesRaw, &chunkIDsRaw); err != nil {
		return nil, err
	}
	var err error
	v.VisualType = VisualType(visualType)
	v.Vector = decodeVector(vecRaw)
	if v.ConceptIDs, err = parseArrayField[uint32](conceptIDsRaw); err != nil {
		return nil, err
	}
	if v.ConceptNames, err = parseArrayField[string](conceptNamesRaw); err != nil {
		return nil, err
	}
	if v.ChunkIDs, err = parseArrayField[uint32](chunkIDsRaw); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisuals(rows *sql.Rows) ([]*Visual, error) {
	var out []*Visual
	for rows.Next() {
		v, err := scanVisualRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan visual row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *sqliteVisualStore) Scan(ctx context.Context, limit int) ([]*Visual, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM visuals ORDER BY id LIMIT ?`, visualColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("scan visuals: %w", err)
	}
	defer rows.Close()
	return collectVisuals(rows)
}

func (s *sqliteVisualStore) Where(ctx context.Context, pred Predicate, limit int) ([]*Visual, error) {
	clause, args := Render(pred)
	query := fmt.Sprintf(`SELECT %s FROM visuals WHERE %s ORDER BY id LIMIT ?`, visualColumns, clause)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("where visuals: %w", err)
	}
	defer rows.Close()
	return collectVisuals(rows)
}

func (s *sqliteVisualStore) Get(ctx context.Context, id uint32) (*Visual, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM visuals WHERE id = ?`, visualColumns), id)
	v, err := scanVisualRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get visual %d: %w", id, err)
	}
	return v, true, nil
}

func (s *sqliteVisualStore) Upsert(ctx context.Context, rowsIn []*Visual) error {
	if len(rowsIn) == 0 {
		return nil
	}
	for _, v := range rowsIn {
		if err := validateDimension(v.Vector); err != nil {
			return fmt.Errorf("visual %d: %w", v.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin visual upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO visuals (id, catalog_id, catalog_title, image_path, description, vector, visual_type, page_number, bounding_box, concept_ids, concept_names, chunk_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			catalog_id=excluded.catalog_id, catalog_title=excluded.catalog_title,
			image_path=excluded.image_path, description=excluded.description, vector=excluded.vector,
			visual_type=excluded.visual_type, page_number=excluded.page_number,
			bounding_box=excluded.bounding_box, concept_ids=excluded.concept_ids,
			concept_names=excluded.concept_names, chunk_ids=excluded.chunk_ids
	`)
	if err != nil {
		return fmt.Errorf("prepare visual upsert: %w", err)
	}
	defer stmt.Close()

	for _, v := range rowsIn {
		conceptIDs, err := encodeArrayField(v.ConceptIDs)
		if err != nil {
			return err
		}
		conceptNames, err := encodeArrayField(v.ConceptNames)
		if err != nil {
			return err
		}
		chunkIDs, err := encodeArrayField(v.ChunkIDs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, v.ID, v.CatalogID, v.CatalogTitle, v.ImagePath, v.Description,
			encodeVector(v.Vector), string(v.VisualType), v.PageNumber, v.BoundingBox,
			conceptIDs, conceptNames, chunkIDs); err != nil {
			return fmt.Errorf("upsert visual %d: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

func (s *sqliteVisualStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visuals`).Scan(&n)
	return n, err
}

func (s *sqliteVisualStore) Close() error {
	return nil
}
