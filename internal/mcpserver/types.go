package mcpserver

// CatalogSearchInput is the input schema for the catalog_search tool (§6:
// "catalog_search(text, limit, debug) -> SearchResult[]").
type CatalogSearchInput struct {
	Text  string `json:"text" jsonschema:"the search query to rank catalog entries against"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	Debug bool   `json:"debug,omitempty" jsonschema:"include the raw component scores and weights used to rank each result"`
}

// CatalogSearchOutput wraps the ranked catalog rows.
type CatalogSearchOutput struct {
	Results []SearchResultItem `json:"results" jsonschema:"catalog entries ranked by hybrid score, most relevant first"`
}

// SearchResultItem is one ranked catalog row.
type SearchResultItem struct {
	CatalogID uint32       `json:"catalog_id"`
	Source    string       `json:"source"`
	Title     string       `json:"title"`
	Summary   string       `json:"summary"`
	Score     float64      `json:"score" jsonschema:"hybrid score in [0,1], higher is more relevant"`
	Debug     *DebugScores `json:"debug,omitempty" jsonschema:"present only when debug was requested"`
}

// DebugScores surfaces the raw component scores and weights behind a result
// (§12 supplement referenced by §6: "debug returns the four raw component
// scores and the weights used, not just the final score").
type DebugScores struct {
	Vector       float64 `json:"vector"`
	BM25         float64 `json:"bm25"`
	Title        float64 `json:"title"`
	WordNet      float64 `json:"wordnet"`
	VectorWeight float64 `json:"vector_weight"`
	BM25Weight    float64 `json:"bm25_weight"`
	TitleWeight   float64 `json:"title_weight"`
	WordNetWeight float64 `json:"wordnet_weight"`
}

// ChunksSearchInput is the input schema for the chunks_search tool (§6:
// "chunks_search(text, source?, limit) -> Chunk[]").
type ChunksSearchInput struct {
	Text   string `json:"text" jsonschema:"the search query to rank chunks against"`
	Source string `json:"source,omitempty" jsonschema:"restrict the search to the catalog entry with this source path; omit to search all chunks"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// BroadChunksSearchInput is the input schema for the broad_chunks_search
// tool (§6: "broad_chunks_search(text, limit) -> Chunk[]").
type BroadChunksSearchInput struct {
	Text  string `json:"text" jsonschema:"the search query to rank chunks against"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// ChunksSearchOutput wraps the ranked chunk rows, shared by chunks_search
// and broad_chunks_search.
type ChunksSearchOutput struct {
	Results []ChunkItem `json:"results" jsonschema:"chunks ranked by hybrid score, most relevant first"`
}

// ChunkItem is one ranked chunk row.
type ChunkItem struct {
	ChunkID        uint32  `json:"chunk_id"`
	CatalogID      uint32  `json:"catalog_id"`
	Text           string  `json:"text"`
	PageNumber     int     `json:"page_number,omitempty"`
	ConceptDensity float64 `json:"concept_density"`
	Score          float64 `json:"score"`
}

// ConceptSearchInput is the input schema for the concept_search tool (§6:
// "concept_search(concept, limit) -> {concept_id, chunks[], image_ids[]}").
type ConceptSearchInput struct {
	Concept string `json:"concept" jsonschema:"the concept name or numeric id to look up"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of chunk previews to return, default 10"`
}

// ConceptSearchOutput is the hierarchical view of one concept.
type ConceptSearchOutput struct {
	ConceptID uint32             `json:"concept_id"`
	Concept   string             `json:"concept"`
	Chunks    []ConceptChunkItem `json:"chunks"`
	ImageIDs  []uint32           `json:"image_ids"`
}

// ConceptChunkItem is one chunk preview under a concept_search result,
// carrying the source it came from.
type ConceptChunkItem struct {
	ChunkID        uint32  `json:"chunk_id"`
	CatalogID      uint32  `json:"catalog_id"`
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	Text           string  `json:"text"`
	PageNumber     int     `json:"page_number,omitempty"`
	ConceptDensity float64 `json:"concept_density"`
}

// SourceConceptsInput is the input schema for the source_concepts tool (§6:
// "source_concepts(source|catalog_id) -> Concept[]").
type SourceConceptsInput struct {
	Source    string `json:"source,omitempty" jsonschema:"the catalog entry's source path; provide this or catalog_id"`
	CatalogID uint32 `json:"catalog_id,omitempty" jsonschema:"the catalog entry's numeric id; provide this or source"`
}

// SourceConceptsOutput wraps the concepts that appear in one source.
type SourceConceptsOutput struct {
	Concepts []ConceptItem `json:"concepts"`
}

// ConceptItem is one concept row surfaced to a tool caller.
type ConceptItem struct {
	ConceptID uint32   `json:"concept_id"`
	Concept   string   `json:"concept"`
	Summary   string   `json:"summary"`
	Synonyms  []string `json:"synonyms,omitempty"`
	Weight    float64  `json:"weight"`
}

// ConceptSourcesInput is the input schema for the concept_sources tool (§6:
// "concept_sources(concept) -> Catalog[]").
type ConceptSourcesInput struct {
	Concept string `json:"concept" jsonschema:"the concept name or numeric id to look up"`
}

// ConceptSourcesOutput wraps the catalog entries a concept appears in.
type ConceptSourcesOutput struct {
	Sources []CatalogItem `json:"sources"`
}

// CatalogItem is one catalog row surfaced to a tool caller.
type CatalogItem struct {
	CatalogID uint32 `json:"catalog_id"`
	Source    string `json:"source"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
}

// ExtractConceptsInput is the input schema for the extract_concepts tool
// (§6: "extract_concepts(document_query) -> {primary_concepts,
// technical_terms, categories}").
type ExtractConceptsInput struct {
	DocumentQuery string `json:"document_query" jsonschema:"text identifying the document to extract concepts from, matched against the catalog"`
}

// ExtractConceptsOutput summarizes the concepts and categories of the
// catalog entry that best matches DocumentQuery.
type ExtractConceptsOutput struct {
	CatalogID       uint32   `json:"catalog_id"`
	Source          string   `json:"source"`
	PrimaryConcepts []string `json:"primary_concepts" jsonschema:"the document's highest-weight concepts"`
	TechnicalTerms  []string `json:"technical_terms" jsonschema:"the document's remaining, lower-weight concepts"`
	Categories      []string `json:"categories"`
}

// ListCategoriesInput is the input schema for the list_categories tool (§6:
// "list_categories(sortBy, limit, includeHierarchy?, filter?) ->
// CategoryListing").
type ListCategoriesInput struct {
	SortBy           string `json:"sortBy,omitempty" jsonschema:"name, documentCount, chunkCount, or conceptCount; default name"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of categories to return, default 50"`
	IncludeHierarchy bool   `json:"includeHierarchy,omitempty" jsonschema:"include each category's root-to-leaf path"`
	Filter           string `json:"filter,omitempty" jsonschema:"case-insensitive substring filter on category name"`
}

// ListCategoriesOutput is a CategoryListing (§6).
type ListCategoriesOutput struct {
	Categories []CategoryListItem `json:"categories"`
	Total      int                `json:"total"`
}

// CategoryListItem is one row of a CategoryListing.
type CategoryListItem struct {
	CategoryID    uint32   `json:"category_id"`
	Category      string   `json:"category"`
	Description   string   `json:"description,omitempty"`
	DocumentCount int      `json:"document_count"`
	ChunkCount    int      `json:"chunk_count"`
	ConceptCount  int      `json:"concept_count"`
	Path          []string `json:"path,omitempty" jsonschema:"present only when includeHierarchy was requested"`
}

// CategorySearchInput is the input schema for the category_search tool
// (§6: "category_search(category, includeChildren?, includeChunks?,
// limit) -> CategoryResult").
type CategorySearchInput struct {
	Category        string `json:"category" jsonschema:"a category name, alias, or numeric id"`
	IncludeChildren bool   `json:"includeChildren,omitempty" jsonschema:"fold descendant categories' documents and counts into the result"`
	IncludeChunks   bool   `json:"includeChunks,omitempty" jsonschema:"attach a few chunk previews per document"`
	Limit           int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return, default 20"`
}

// CategorySearchOutput is a CategoryResult (§6).
type CategorySearchOutput struct {
	CategoryID    uint32             `json:"category_id"`
	Category      string             `json:"category"`
	Description   string             `json:"description,omitempty"`
	DocumentCount int                `json:"document_count"`
	ChunkCount    int                `json:"chunk_count"`
	ConceptCount  int                `json:"concept_count"`
	Documents     []CategoryDocument `json:"documents"`
}

// CategoryDocument is one catalog entry surfaced under a category_search
// result, optionally with chunk previews.
type CategoryDocument struct {
	CatalogID uint32      `json:"catalog_id"`
	Source    string      `json:"source"`
	Title     string      `json:"title"`
	Chunks    []ChunkItem `json:"chunks,omitempty"`
}

// ListConceptsInCategoryInput is the input schema for the
// list_concepts_in_category tool (§6: "list_concepts_in_category(category,
// sortBy, limit) -> ConceptListing").
type ListConceptsInCategoryInput struct {
	Category string `json:"category" jsonschema:"a category name, alias, or numeric id"`
	SortBy   string `json:"sortBy,omitempty" jsonschema:"name or weight; default weight"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of concepts to return, default 50"`
}

// ListConceptsInCategoryOutput is a ConceptListing (§6).
type ListConceptsInCategoryOutput struct {
	Concepts []ConceptItem `json:"concepts"`
	Total    int           `json:"total"`
}

// GetVisualsInput is the input schema for the get_visuals tool (§6:
// "get_visuals({ids?, catalog_id?, visual_type?, limit}) -> Visual[]").
type GetVisualsInput struct {
	IDs        []uint32 `json:"ids,omitempty" jsonschema:"explicit visual ids to fetch; takes precedence over the other filters"`
	CatalogID  uint32   `json:"catalog_id,omitempty" jsonschema:"restrict results to visuals belonging to this catalog entry"`
	VisualType string   `json:"visual_type,omitempty" jsonschema:"diagram, flowchart, chart, table, or figure"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of visuals to return, default 20"`
}

// GetVisualsOutput wraps the matching visuals.
type GetVisualsOutput struct {
	Visuals []VisualItem `json:"visuals"`
}

// VisualItem is one visual row surfaced to a tool caller.
type VisualItem struct {
	VisualID     uint32   `json:"visual_id"`
	CatalogID    uint32   `json:"catalog_id"`
	CatalogTitle string   `json:"catalog_title"`
	ImagePath    string   `json:"image_path"`
	Description  string   `json:"description"`
	VisualType   string   `json:"visual_type"`
	PageNumber   int      `json:"page_number,omitempty"`
	ConceptNames []string `json:"concept_names,omitempty"`
}
