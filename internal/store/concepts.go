package store

import (
	"context"
	"database/sql"
	"fmt"
)

type sqliteConceptStore struct {
	db  *sql.DB
	idx *vectorIndex
}

var _ ConceptStore = (*sqliteConceptStore)(nil)

func newSQLiteConceptStore(db *sql.DB) *sqliteConceptStore {
	return &sqliteConceptStore{db: db, idx: newVectorIndex(Dimensions)}
}

const conceptColumns = `id, concept, summary, catalog_ids, related_concept_ids, synonyms, broader_terms, narrower_terms, vector, weight`

func scanConceptRow(scan func(dest ...any) error) (*Concept, error) {
	var c Concept
	var catalogIDsRaw, relatedRaw, synRaw, broaderRaw, narrowerRaw, vecRaw []byte
	if err := scan(&c.ID, &c.Concept, &c.Summary, &catalogIDsRaw, &relatedRaw,
		&synRaw, &broaderRaw, &narrowerRaw, &vecRaw, &c.Weight); err != nil {
		return nil, err
	}
	var err error
	if c.CatalogIDs, err = parseArrayField[uint32](catalogIDsRaw); err != nil {
		return nil, err
	}
	if c.RelatedConceptIDs, err = parseArrayField[uint32](relatedRaw); err != nil {
		return nil, err
	}
	if c.Synonyms, err = parseArrayField[string](synRaw); err != nil {
		return nil, err
	}
	if c.BroaderTerms, err = parseArrayField[string](broaderRaw); err != nil {
		return nil, err
	}
	if c.NarrowerTerms, err = parseArrayField[string](narrowerRaw); err != nil {
		return nil, err
	}
	c.Vector = decodeVector(vecRaw)
	return &c, nil
}

func collectConcepts(rows *sql.Rows) ([]*Concept, error) {
	var out []*Concept
	for rows.Next() {
		c, err := scanConceptRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan concept row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteConceptStore) Scan(ctx context.Context, limit int) ([]*Concept, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM concepts ORDER BY id LIMIT ?`, conceptColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("scan concepts: %w", err)
	}
	defer rows.Close()
	return collectConcepts(rows)
}

func (s *sqliteConceptStore) Where(ctx context.Context, pred Predicate, limit int) ([]*Concept, error) {
	clause, args := Render(pred)
	query := fmt.Sprintf(`SELECT %s FROM concepts WHERE %s ORDER BY id LIMIT ?`, conceptColumns, clause)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("where concepts: %w", err)
	}
	defer rows.Close()
	return collectConcepts(rows)
}

func (s *sqliteConceptStore) VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error) {
	return s.idx.Search(v, limit)
}

func (s *sqliteConceptStore) Get(ctx context.Context, id uint32) (*Concept, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM concepts WHERE id = ?`, conceptColumns), id)
	c, err := scanConceptRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get concept %d: %w", id, err)
	}
	return c, true, nil
}

// GetByName looks up a concept by its normalized (lowercase-trimmed) name.
// Callers are expected to normalize before calling (see internal/idcache).
func (s *sqliteConceptStore) GetByName(ctx context.Context, name string) (*Concept, bool, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM concepts WHERE concept = ?`, conceptColumns), name)
	c, err := scanConceptRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get concept by name %q: %w", name, err)
	}
	return c, true, nil
}

func (s *sqliteConceptStore) Upsert(ctx context.Context, rowsIn []*Concept) error {
	if len(rowsIn) == 0 {
		return nil
	}
	for _, c := range rowsIn {
		if err := validateDimension(c.Vector); err != nil {
			return fmt.Errorf("concept %d: %w", c.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin concept upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO concepts (id, concept, summary, catalog_ids, related_concept_ids, synonyms, broader_terms, narrower_terms, vector, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			concept=excluded.concept, summary=excluded.summary, catalog_ids=excluded.catalog_ids,
			related_concept_ids=excluded.related_concept_ids, synonyms=excluded.synonyms,
			broader_terms=excluded.broader_terms, narrower_terms=excluded.narrower_terms,
			vector=excluded.vector, weight=excluded.weight
	`)
	if err != nil {
		return fmt.Errorf("prepare concept upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rowsIn {
		catalogIDs, err := encodeArrayField(c.CatalogIDs)
		if err != nil {
			return err
		}
		relatedIDs, err := encodeArrayField(c.RelatedConceptIDs)
		if err != nil {
			return err
		}
		synonyms, err := encodeArrayField(c.Synonyms)
		if err != nil {
			return err
		}
		broader, err := encodeArrayField(c.BroaderTerms)
		if err != nil {
			return err
		}
		narrower, err := encodeArrayField(c.NarrowerTerms)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Concept, c.Summary, catalogIDs, relatedIDs,
			synonyms, broader, narrower, encodeVector(c.Vector), c.Weight); err != nil {
			return fmt.Errorf("upsert concept %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit concept upsert: %w", err)
	}

	for _, c := range rowsIn {
		if err := s.idx.Add(c.ID, c.Vector); err != nil {
			return fmt.Errorf("index concept %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *sqliteConceptStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM concepts`).Scan(&n)
	return n, err
}

func (s *sqliteConceptStore) Close() error {
	return s.idx.Close()
}
