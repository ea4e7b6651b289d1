package search

// scoreTitle is the fraction of the original (unexpanded) query terms that
// appear in title as a case-insensitive whole-word match (§4.6: title
// component, computed "only when the collection has one"). Prefix and
// substring matches do not count.
func scoreTitle(queryTerms []string, title string) (score float64, present bool) {
	if title == "" {
		return 0, false
	}
	if len(queryTerms) == 0 {
		return 0, true
	}

	hits := 0
	for _, term := range queryTerms {
		if matchWeight(term, title) == 1.0 {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTerms)), true
}
