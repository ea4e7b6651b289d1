// Package store implements the conceptual store: four tables
// (catalog, chunks, concepts, categories) plus an optional visuals table,
// columnar on disk via modernc.org/sqlite, each with an ANN vector index via
// coder/hnsw. Grounded on a comparable implementation's internal/store/sqlite_bm25.go for
// the SQLite WAL/pragma/single-writer pattern and hnsw.go for the vector
// index wrapper, generalized from a single code-chunk index to five
// per-table indexes keyed directly by the domain's uint32 ids.
package store

import (
	"context"
	"fmt"
	"time"
)

// DocumentType classifies a catalog entry.
type DocumentType string

const (
	DocumentTypeBook    DocumentType = "book"
	DocumentTypePaper   DocumentType = "paper"
	DocumentTypeArticle DocumentType = "article"
	DocumentTypeUnknown DocumentType = "unknown"
)

// VisualType classifies a Visual row.
type VisualType string

const (
	VisualTypeDiagram   VisualType = "diagram"
	VisualTypeFlowchart VisualType = "flowchart"
	VisualTypeChart     VisualType = "chart"
	VisualTypeTable     VisualType = "table"
	VisualTypeFigure    VisualType = "figure"
)

// Dimensions is the fixed embedding width every stored vector must have (§3).
const Dimensions = 384

// Catalog is one per document (§3 "Catalog entry").
type Catalog struct {
	ID          uint32
	Source      string
	Hash        string
	Title       string
	Summary     string
	CategoryIDs []uint32
	Vector      []float32
	Type        DocumentType
}

// Chunk is a retrievable text segment belonging to a Catalog entry (§3 "Chunk").
type Chunk struct {
	ID             uint32
	CatalogID      uint32
	Text           string
	Vector         []float32
	ConceptIDs     []uint32
	ConceptDensity float64 // recomputed on ingest: |ConceptIDs| / max(1, tokenCount)
	PageNumber     int     // 0 means absent
}

// Concept is a normalized thematic/technical term (§3 "Concept").
type Concept struct {
	ID                uint32
	Concept           string // lowercase-trimmed canonical name
	Summary           string
	CatalogIDs        []uint32
	RelatedConceptIDs []uint32
	Synonyms          []string
	BroaderTerms      []string
	NarrowerTerms     []string
	Vector            []float32
	Weight            float64 // global importance in [0,1]
}

// Category is a node in the (forest-shaped) category hierarchy (§3 "Category").
type Category struct {
	ID                uint32
	Category          string
	Description       string
	ParentCategoryID  *uint32
	Aliases           []string
	RelatedCategories []string
	DocumentCount     int
	ChunkCount        int
	ConceptCount      int
	Vector            []float32
}

// Visual is an optional image/figure reference (§3 "Visual").
type Visual struct {
	ID            uint32
	CatalogID     uint32
	CatalogTitle  string
	ImagePath     string
	Description   string
	Vector        []float32
	VisualType    VisualType
	PageNumber    int
	BoundingBox   string // raw JSON, left opaque to the store
	ConceptIDs    []uint32
	ConceptNames  []string // derived cache, not authoritative
	ChunkIDs      []uint32
}

// VectorHit is one row returned by a vectorSearch, with its ANN distance.
type VectorHit struct {
	ID       uint32
	Distance float32 // ascending cosine (or L2) distance, smaller = closer
}

// ErrDimensionMismatch reports a vector whose length isn't Dimensions (§8:
// "Vector of wrong dimension → Fatal at ingest, Validation at query").
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// Table names one of the four-plus-one tables, used for cache sizing,
// checkpoint bookkeeping, and stage-cache directory naming.
type Table string

const (
	TableCatalog    Table = "catalog"
	TableChunks     Table = "chunks"
	TableConcepts   Table = "concepts"
	TableCategories Table = "categories"
	TableVisuals    Table = "visuals"
)

// CatalogStore is the per-table contract for the Catalog table (§4.3):
// scan, where, and vectorSearch, plus the write paths Seeding needs.
type CatalogStore interface {
	Scan(ctx context.Context, limit int) ([]*Catalog, error)
	Where(ctx context.Context, pred Predicate, limit int) ([]*Catalog, error)
	VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error)
	Get(ctx context.Context, id uint32) (*Catalog, bool, error)
	Upsert(ctx context.Context, rows []*Catalog) error
	DeleteByID(ctx context.Context, ids []uint32) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// ChunkStore is the per-table contract for the Chunks table.
type ChunkStore interface {
	Scan(ctx context.Context, limit int) ([]*Chunk, error)
	Where(ctx context.Context, pred Predicate, limit int) ([]*Chunk, error)
	VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error)
	Get(ctx context.Context, id uint32) (*Chunk, bool, error)
	GetMany(ctx context.Context, ids []uint32) ([]*Chunk, error)
	Upsert(ctx context.Context, rows []*Chunk) error
	DeleteByCatalogID(ctx context.Context, catalogID uint32) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// ConceptStore is the per-table contract for the Concepts table.
type ConceptStore interface {
	Scan(ctx context.Context, limit int) ([]*Concept, error)
	Where(ctx context.Context, pred Predicate, limit int) ([]*Concept, error)
	VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error)
	Get(ctx context.Context, id uint32) (*Concept, bool, error)
	GetByName(ctx context.Context, name string) (*Concept, bool, error)
	Upsert(ctx context.Context, rows []*Concept) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// CategoryStore is the per-table contract for the Categories table.
type CategoryStore interface {
	Scan(ctx context.Context, limit int) ([]*Category, error)
	Where(ctx context.Context, pred Predicate, limit int) ([]*Category, error)
	VectorSearch(ctx context.Context, v []float32, limit int) ([]VectorHit, error)
	Get(ctx context.Context, id uint32) (*Category, bool, error)
	GetByName(ctx context.Context, name string) (*Category, bool, error)
	Upsert(ctx context.Context, rows []*Category) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// VisualStore is the per-table contract for the optional Visuals table.
type VisualStore interface {
	Scan(ctx context.Context, limit int) ([]*Visual, error)
	Where(ctx context.Context, pred Predicate, limit int) ([]*Visual, error)
	Get(ctx context.Context, id uint32) (*Visual, bool, error)
	Upsert(ctx context.Context, rows []*Visual) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Checkpoint mirrors the seeding checkpoint file's JSON shape (§6).
type Checkpoint struct {
	ProcessedHashes []string  `json:"processedHashes"`
	Stage           string    `json:"stage"`
	LastFile        string    `json:"lastFile"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
	TotalProcessed  int       `json:"totalProcessed"`
	TotalFailed     int       `json:"totalFailed"`
	FailedFiles     []string  `json:"failedFiles"`
	Version         int       `json:"version"`
	DatabasePath    string    `json:"databasePath"`
	FilesDir        string    `json:"filesDir"`
}
