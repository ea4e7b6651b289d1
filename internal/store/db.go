package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver, no CGO
)

// openDB opens (creating if absent) a single-writer SQLite connection in
// WAL mode. Grounded on a comparable implementation's sqlite_bm25.go NewSQLiteBM25Index:
// same pragma set, same SetMaxOpenConns(1) single-writer discipline so
// concurrent table access never hits SQLITE_BUSY under normal load.
func openDB(path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	return db, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS catalog (
	id INTEGER PRIMARY KEY,
	source TEXT NOT NULL,
	hash TEXT NOT NULL,
	title TEXT NOT NULL,
	summary TEXT NOT NULL,
	category_ids TEXT NOT NULL DEFAULT '[]',
	vector BLOB,
	doc_type TEXT NOT NULL DEFAULT 'unknown'
);

CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY,
	catalog_id INTEGER NOT NULL REFERENCES catalog(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	vector BLOB,
	concept_ids TEXT NOT NULL DEFAULT '[]',
	concept_density REAL NOT NULL DEFAULT 0,
	page_number INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_chunks_catalog_id ON chunks(catalog_id);

CREATE TABLE IF NOT EXISTS concepts (
	id INTEGER PRIMARY KEY,
	concept TEXT NOT NULL UNIQUE,
	summary TEXT NOT NULL,
	catalog_ids TEXT NOT NULL DEFAULT '[]',
	related_concept_ids TEXT NOT NULL DEFAULT '[]',
	synonyms TEXT NOT NULL DEFAULT '[]',
	broader_terms TEXT NOT NULL DEFAULT '[]',
	narrower_terms TEXT NOT NULL DEFAULT '[]',
	vector BLOB,
	weight REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY,
	category TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	parent_category_id INTEGER,
	aliases TEXT NOT NULL DEFAULT '[]',
	related_categories TEXT NOT NULL DEFAULT '[]',
	document_count INTEGER NOT NULL DEFAULT 0,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	concept_count INTEGER NOT NULL DEFAULT 0,
	vector BLOB
);

CREATE TABLE IF NOT EXISTS visuals (
	id INTEGER PRIMARY KEY,
	catalog_id INTEGER NOT NULL REFERENCES catalog(id) ON DELETE CASCADE,
	catalog_title TEXT NOT NULL DEFAULT '',
	image_path TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	vector BLOB,
	visual_type TEXT NOT NULL DEFAULT 'figure',
	page_number INTEGER NOT NULL DEFAULT 0,
	bounding_box TEXT NOT NULL DEFAULT '{}',
	concept_ids TEXT NOT NULL DEFAULT '[]',
	concept_names TEXT NOT NULL DEFAULT '[]',
	chunk_ids TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS kv_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
