package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/concept-rag/conceptrag/internal/store"
)

// summaryChunkScanLimit bounds how many of a catalog entry's chunks
// Summarizer considers when picking an excerpt to summarize from.
const summaryChunkScanLimit = 4

// Summarizer produces extractive (no LLM call) summaries: the first one
// or two sentences of representative text, trimmed to a bounded length.
// This is the offline stand-in for whatever LLM-backed summarizer a
// networked deployment would plug in instead (seed.Summarizer is an
// interface precisely so that swap is just a different constructor).
type Summarizer struct {
	chunks store.ChunkStore
}

// NewSummarizer builds a Summarizer that pulls excerpt text from chunks.
func NewSummarizer(chunks store.ChunkStore) *Summarizer {
	return &Summarizer{chunks: chunks}
}

// SummarizeCatalog summarizes a catalog entry from its first chunk's
// leading sentences, falling back to its title alone if it has no chunks
// yet.
func (s *Summarizer) SummarizeCatalog(ctx context.Context, row *store.Catalog) (string, error) {
	rows, err := s.chunks.Where(ctx, store.Eq("catalog_id", row.ID), summaryChunkScanLimit)
	if err != nil {
		return "", fmt.Errorf("extract: fetch chunks for summary of %s: %w", row.Source, err)
	}
	if len(rows) == 0 {
		return fmt.Sprintf("%s (no extracted text).", row.Title), nil
	}
	return leadingSentences(rows[0].Text, 2, 280), nil
}

// SummarizeConcept summarizes a concept from the name itself plus its
// document count, since a concept row carries no body text of its own.
func (s *Summarizer) SummarizeConcept(ctx context.Context, row *store.Concept) (string, error) {
	n := len(row.CatalogIDs)
	switch n {
	case 0:
		return fmt.Sprintf("%s: not yet linked to any source document.", row.Concept), nil
	case 1:
		return fmt.Sprintf("%s: appears in 1 source document.", row.Concept), nil
	default:
		return fmt.Sprintf("%s: appears in %d source documents.", row.Concept, n), nil
	}
}

// SummarizeCategory summarizes a category from its name and aliases.
func (s *Summarizer) SummarizeCategory(ctx context.Context, row *store.Category) (string, error) {
	if len(row.Aliases) == 0 {
		return fmt.Sprintf("%s.", row.Category), nil
	}
	return fmt.Sprintf("%s (also known as %s).", row.Category, strings.Join(row.Aliases, ", ")), nil
}

// leadingSentences returns the first n sentences of text, hard-capped at
// maxLen runes with an ellipsis if that cap cuts a sentence short.
func leadingSentences(text string, n, maxLen int) string {
	text = strings.TrimSpace(text)
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
			if len(sentences) >= n {
				break
			}
		}
	}
	if len(sentences) == 0 {
		if strings.TrimSpace(current.String()) != "" {
			sentences = append(sentences, strings.TrimSpace(current.String()))
		} else {
			return ""
		}
	}
	summary := strings.Join(sentences, " ")
	r := []rune(summary)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return summary
}
