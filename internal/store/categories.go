package store

import (
	"context"
	"database/sql"
	"fmt"
)

type sqliteCategoryStore struct {
	db  *sql.DB
	idx *vectorIndex
}

var _ CategoryStore = (*sqliteCategoryStore)(nil)

func newSQLiteCategoryStore(db *sql.DB) *sqliteCategoryStore {
	return &sqliteCategoryStore{db: db, idx: newVectorIndex(Dimensions)}
}

const categoryColumns = `id, category, description, parent_category_id, aliases, related_categories, document_count, chunk_count, concept_count, vector`

func scanCategoryRow(scan func(dest ...any) error) (*Category, error) {
	var c Category
	var parentID sql.NullInt64
	var aliasesRaw, relatedRaw, vecRaw []byte
	if err := scan(&c.ID, &c.Category, &c.Description, &parentID, &aliasesRaw, &relatedRaw,
		&c.DocumentCount, &c.ChunkCount, &c.ConceptCount, &vecRaw); err != nil {
		return nil, err
	}
	if parentID.Valid {
		v := uint32(parentID.Int64)
		c.ParentCategoryID = &v
	}
	var err error
	if c.Aliases, err = parseArrayField[string](aliasesRaw); err != nil {
		return nil, err
	}
	if c.RelatedCategories, err = parseArrayField[string](relatedRaw); err != nil {
		return nil, err
	}
	c.Vector = decodeVector(vecRaw)
	return &c, nil
}

func collectCategories(rows *sql.Rows) ([]*Category, error) {
	var out []*Category
	for rows.Next() {
		c, err := scanCategoryRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteCategoryStore) Scan(ctx context.Context, limit int) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM categories ORDER BY id LIMIT ?`, categoryColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *sqliteCategoryStore) Where(ctx context.Context, pred Predicate, limit int) ([]*Category, error) {
	clause, args := Render(pred)
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE %s ORDER BY id LIMIT ?`, categoryColumns, clause)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("where categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *sqliteCategoryStore) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	return s.idx.Search(v, limit)
}

func (s *sqliteCategoryStore) Get(ctx context.Context, id uint32) (*Category, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM categories WHERE id = ?`, categoryColumns), id)
	c, err := scanCategoryRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, true, nil
}

func (s *sqliteCategoryStore) GetByName(ctx context.Context, name string) (*Category, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM categories WHERE category = ?`, categoryColumns), name)
	c, err := scanCategoryRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get category by name %q: %w", name, err)
	}
	return c, true, nil
}

func (s *sqliteCategoryStore) Upsert(ctx context.Context, rowsIn []*Category) error {
	if len(rowsIn) == 0 {
		return nil
	}
	for _, c := range rowsIn {
		if err := validateDimension(c.Vector); err != nil {
			return fmt.Errorf("category %d: %w", c.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin category upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, category, description, parent_category_id, aliases, related_categories, document_count, chunk_count, concept_count, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category=excluded.category, description=excluded.description,
			parent_category_id=excluded.parent_category_id, aliases=excluded.aliases,
			related_categories=excluded.related_categories, document_count=excluded.document_count,
			chunk_count=excluded.chunk_count, concept_count=excluded.concept_count, vector=excluded.vector
	`)
	if err != nil {
		return fmt.Errorf("prepare category upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rowsIn {
		aliases, err := encodeArrayField(c.Aliases)
		if err != nil {
			return err
		}
		related, err := encodeArrayField(c.RelatedCategories)
		if err != nil {
			return err
		}
		var parentID any
		if c.ParentCategoryID != nil {
			parentID = *c.ParentCategoryID
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Category, c.Description, parentID, aliases, related,
			c.DocumentCount, c.ChunkCount, c.ConceptCount, encodeVector(c.Vector)); err != nil {
			return fmt.Errorf("upsert category %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit category upsert: %w", err)
	}

	for _, c := range rowsIn {
		if err := s.idx.Add(c.ID, c.Vector); err != nil {
			return fmt.Errorf("index category %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *sqliteCategoryStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

func (s *sqliteCategoryStore) Close() error {
	return s.idx.Close()
}
