// Package extract provides a concrete, offline implementation of the
// seed pipeline's pluggable stage interfaces (seed.DocumentProcessor,
// seed.ConceptAggregator, seed.Summarizer, seed.CategoryMapper): plain-text
// ingestion, frequency-based concept-term extraction, and extractive
// (non-LLM) summarization, grounded on a comparable implementation's
// internal/embed/static.go tokenizer and internal/chunk chunking shape
// rather than on any external LLM call.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/concept-rag/conceptrag/internal/cerr"
	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/hashid"
	"github.com/concept-rag/conceptrag/internal/seed"
	"github.com/concept-rag/conceptrag/internal/store"
)

// DocumentProcessor turns a plain-text/markdown file into a catalog entry
// and its chunks, extracting per-chunk concept terms by frequency.
type DocumentProcessor struct {
	embedder     embedding.Embedder
	chunkSize    int
	chunkOverlap int
}

// defaultChunkSize and defaultChunkOverlap bound a chunk to roughly a
// paragraph-or-two of prose, with enough overlap that a concept
// straddling a boundary still lands fully inside at least one chunk.
const (
	defaultChunkSize    = 1200
	defaultChunkOverlap = 200
)

// NewDocumentProcessor builds a DocumentProcessor backed by embedder.
func NewDocumentProcessor(embedder embedding.Embedder) *DocumentProcessor {
	return &DocumentProcessor{
		embedder:     embedder,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
}

// ProcessDocument reads path, splits it into overlapping chunks, embeds
// each chunk and the catalog entry itself, and extracts candidate concept
// terms per chunk by in-document term frequency. The returned
// DocumentStageData caches the merged concept-term set so RunConcepts can
// rebuild the concept table without re-reading every source file.
func (p *DocumentProcessor) ProcessDocument(ctx context.Context, path string, cached *seed.DocumentStageData) (*store.Catalog, []*store.Chunk, *seed.DocumentStageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, cerr.New(cerr.ErrCodeStoreIO, fmt.Sprintf("extract: read %s", path), err)
	}
	hash, err := seed.HashFile(path)
	if err != nil {
		return nil, nil, nil, err
	}

	text := string(data)
	title := titleFromPath(path)
	catalogID := hashid.HashToID(path)

	pieces := splitIntoChunks(text, p.chunkSize, p.chunkOverlap)
	chunks := make([]*store.Chunk, 0, len(pieces))
	conceptSeen := make(map[string]bool)

	for i, piece := range pieces {
		terms := topTerms(piece, maxConceptsPerChunk)
		conceptIDs := make([]uint32, 0, len(terms))
		for _, term := range terms {
			conceptIDs = append(conceptIDs, hashid.HashToID(term))
			conceptSeen[term] = true
		}

		vector, err := p.embedder.Embed(ctx, piece)
		if err != nil {
			return nil, nil, nil, cerr.New(cerr.ErrCodeEmbeddingFailed, fmt.Sprintf("extract: embed chunk %d of %s", i, path), err)
		}

		tokenCount := len(filterShort(tokenize(piece)))
		density := 0.0
		if tokenCount > 0 {
			density = float64(len(conceptIDs)) / float64(tokenCount)
		}

		chunks = append(chunks, &store.Chunk{
			ID:             hashid.HashToID(fmt.Sprintf("%s::chunk::%d", path, i)),
			CatalogID:      catalogID,
			Text:           piece,
			Vector:         vector,
			ConceptIDs:     conceptIDs,
			ConceptDensity: density,
		})
	}

	excerpt := text
	if len(excerpt) > 2000 {
		excerpt = excerpt[:2000]
	}
	catalogVector, err := p.embedder.Embed(ctx, title+"\n\n"+excerpt)
	if err != nil {
		return nil, nil, nil, cerr.New(cerr.ErrCodeEmbeddingFailed, fmt.Sprintf("extract: embed catalog entry for %s", path), err)
	}

	catalog := &store.Catalog{
		ID:     catalogID,
		Source: path,
		Hash:   hash,
		Title:  title,
		Type:   store.DocumentTypeUnknown,
		Vector: catalogVector,
	}

	concepts := make([]string, 0, len(conceptSeen))
	for term := range conceptSeen {
		concepts = append(concepts, term)
	}

	toCache := &seed.DocumentStageData{
		Hash:            hash,
		Source:          path,
		Concepts:        concepts,
		ContentOverview: excerpt,
	}

	return catalog, chunks, toCache, nil
}

// maxConceptsPerChunk bounds how many distinct terms one chunk contributes
// to the concept set, keeping the eventual concept table from drowning in
// long-tail single-occurrence words.
const maxConceptsPerChunk = 8

func titleFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Title(strings.TrimSpace(base)) //nolint:staticcheck // simple heuristic title-casing, not Unicode-sensitive
}

var tokenPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9']*`)

func tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = strings.ToLower(m)
	}
	return tokens
}

// filterShort drops stop words and anything shorter than four letters,
// the same length-plus-stopword heuristic used to pick "significant"
// terms in topTerms.
func filterShort(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) >= 4 && !extractStopWords[t] {
			out = append(out, t)
		}
	}
	return out
}

// topTerms returns the n most frequent significant terms in text, ties
// broken by first appearance so the result is deterministic.
func topTerms(text string, n int) []string {
	tokens := filterShort(tokenize(text))
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, t := range tokens {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	type termCount struct {
		term  string
		count int
	}
	ranked := make([]termCount, 0, len(order))
	for _, t := range order {
		ranked = append(ranked, termCount{t, counts[t]})
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].count > ranked[j-1].count; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.term
	}
	return out
}

// extractStopWords filters common English function words out of concept
// candidates, the prose stop-word list internal/embedding.StaticEmbedder
// also uses, extended with a few words too generic to be useful concepts.
var extractStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "these": true, "those": true, "from": true, "into": true,
	"about": true, "than": true, "have": true, "has": true, "had": true,
	"were": true, "been": true, "being": true, "will": true, "would": true,
	"could": true, "should": true, "there": true, "their": true, "they": true,
	"which": true, "when": true, "where": true, "what": true, "also": true,
	"such": true, "more": true, "most": true, "some": true, "each": true,
	"other": true, "only": true, "over": true, "then": true, "them": true,
}

// splitIntoChunks splits text on paragraph boundaries, greedily packing
// paragraphs into windows of roughly size runes with overlap runes of
// trailing context carried into the next window, the same greedy-pack-
// then-overlap shape a sliding-window chunker uses for arbitrary prose.
func splitIntoChunks(text string, size, overlap int) []string {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		if current.Len() > 0 && current.Len()+len(p) > size {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			tail := lastRunes(current.String(), overlap)
			current.Reset()
			current.WriteString(tail)
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
