package search

import "github.com/concept-rag/conceptrag/internal/expand"

// scoreWordNet is the weighted coverage of a query's lexical expansion
// (synonyms, hypernyms, hyponyms) against text: each expanded term
// contributes its expansion weight times its match strength, normalized by
// the total weight available (§4.6 WordNet component).
func scoreWordNet(terms []expand.WeightedTerm, text string) float64 {
	if len(terms) == 0 || text == "" {
		return 0
	}

	var weighted, total float64
	for _, t := range terms {
		total += t.Weight
		weighted += t.Weight * matchWeight(t.Term, text)
	}
	if total == 0 {
		return 0
	}
	return clamp01(weighted / total)
}
