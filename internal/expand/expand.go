// Package expand implements the Query Expander: given a query,
// produce three ordered, weighted term lists — the query's own tokens, the
// corpus concepts closest to it by embedding, and a lexical (synonym/
// hypernym/hyponym) expansion — plus their union and a term->weight map
// consumed by the Hybrid Search Service's WordNet component score (§4.6).
//
// Grounded on a comparable implementation's internal/search query-expansion helpers
// (synonyms.go's expand-then-weight shape and expander.go's fan-out over
// an embedding-backed corpus lookup), generalized from a code-symbol corpus
// to the concept table and switched from a comparable implementation's hand-rolled
// programming-synonym map to a small hand-rolled lexical dictionary (see
// lexicon.go) since no WordNet binding exists anywhere in the retrieved
// reference pack.
package expand

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/concept-rag/conceptrag/internal/embedding"
	"github.com/concept-rag/conceptrag/internal/idcache"
	"github.com/concept-rag/conceptrag/internal/store"
)

const (
	// WeightOriginal is the weight assigned to the query's own tokens.
	WeightOriginal = 1.0
	// WeightCorpus is the weight assigned to corpus (concept-table) terms.
	WeightCorpus = 0.6
	// WeightSynonym is the weight assigned to lexical synonyms.
	WeightSynonym = 0.4
	// WeightHypernymHyponym is the weight assigned to broader/narrower terms.
	WeightHypernymHyponym = 0.3

	// corpusTopK bounds how many concept-table terms are pulled in (§4.5: "K≈5").
	corpusTopK = 5
	// corpusThreshold is the minimum cosine similarity for a corpus term to qualify.
	corpusThreshold = 0.5
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// WeightedTerm is one term with the weight its source list contributes.
type WeightedTerm struct {
	Term   string
	Weight float64
}

// Expansion is the full result of expanding one query (§4.5).
type Expansion struct {
	Original []WeightedTerm
	Corpus   []WeightedTerm
	WordNet  []WeightedTerm
	AllTerms []string
	Weights  map[string]float64
}

// Expander expands a query into original/corpus/WordNet term lists. It is
// pure given a fixed concept table (§4.5): the same (query, concept table
// contents) always yields the same Expansion.
type Expander struct {
	embedder embedding.Embedder
	concepts store.ConceptStore
	ids      *idcache.Cache
	lexicon  Lexicon
}

// New builds an Expander over the given embedder, concept table, and id
// cache. A nil lexicon falls back to the built-in DefaultLexicon.
func New(embedder embedding.Embedder, concepts store.ConceptStore, ids *idcache.Cache, lexicon Lexicon) *Expander {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Expander{embedder: embedder, concepts: concepts, ids: ids, lexicon: lexicon}
}

// Expand produces the three weighted lists plus their union for q. An
// empty (or whitespace-only) query yields empty lists (§4.5).
func (e *Expander) Expand(ctx context.Context, q string) (*Expansion, error) {
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return &Expansion{Weights: map[string]float64{}}, nil
	}

	exp := &Expansion{Weights: map[string]float64{}}
	for _, tok := range tokens {
		exp.Original = append(exp.Original, WeightedTerm{Term: tok, Weight: WeightOriginal})
	}

	corpus, err := e.corpusTerms(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("expand: corpus terms: %w", err)
	}
	exp.Corpus = corpus

	for _, tok := range tokens {
		for _, syn := range e.lexicon.Synonyms(tok) {
			exp.WordNet = append(exp.WordNet, WeightedTerm{Term: syn, Weight: WeightSynonym})
		}
		for _, broader := range e.lexicon.Hypernyms(tok) {
			exp.WordNet = append(exp.WordNet, WeightedTerm{Term: broader, Weight: WeightHypernymHyponym})
		}
		for _, narrower := range e.lexicon.Hyponyms(tok) {
			exp.WordNet = append(exp.WordNet, WeightedTerm{Term: narrower, Weight: WeightHypernymHyponym})
		}
	}

	addAll(exp, exp.Original)
	addAll(exp, exp.Corpus)
	addAll(exp, exp.WordNet)

	return exp, nil
}

func addAll(exp *Expansion, terms []WeightedTerm) {
	for _, t := range terms {
		if _, seen := exp.Weights[t.Term]; !seen {
			exp.AllTerms = append(exp.AllTerms, t.Term)
		}
		if existing, ok := exp.Weights[t.Term]; !ok || t.Weight > existing {
			exp.Weights[t.Term] = t.Weight
		}
	}
}

// corpusTerms finds concept names whose embedding is within corpusThreshold
// cosine similarity of q's embedding, top corpusTopK by similarity.
func (e *Expander) corpusTerms(ctx context.Context, q string) ([]WeightedTerm, error) {
	if e.embedder == nil || e.concepts == nil {
		return nil, nil
	}
	vec, err := e.embedder.Embed(ctx, q)
	if err != nil {
		return nil, err
	}
	if embedding.IsZeroVector(vec) {
		return nil, nil
	}

	hits, err := e.concepts.VectorSearch(ctx, vec, corpusTopK)
	if err != nil {
		return nil, err
	}

	var out []WeightedTerm
	for _, hit := range hits {
		score := 1.0 - float64(hit.Distance)
		if score < corpusThreshold {
			continue
		}
		var name string
		var ok bool
		if e.ids != nil {
			name, ok = e.ids.GetConceptName(hit.ID)
		}
		if !ok {
			row, found, err := e.concepts.Get(ctx, hit.ID)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			name = row.Concept
		}
		out = append(out, WeightedTerm{Term: name, Weight: WeightCorpus})
	}
	return out, nil
}

func tokenize(q string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(q), -1)
	return matches
}
