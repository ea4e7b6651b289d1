package search

// scoreBM25 combines a BM25-style saturating term-frequency score with
// term coverage into a single [0,1] value (§4.6: "BM25 component ... final
// = 0.5*normalizedRaw + 0.5*termCoverage, clamped to [0,1]").
//
// The spec gives the term-match weights (exact=1.0, prefix=0.5,
// substring=0.25), k1/b/avgDocLength, and the 0.5/0.5 combination, but not
// the exact derivation of "normalizedRaw" from a weighted match score. This
// implementation treats the sum of per-term match weights as a pseudo term
// frequency, runs it through the standard Okapi BM25 saturation curve, and
// normalizes by the curve's own asymptote (k1+1) — so a document that
// matches every query term as an exact, repeated hit approaches 1.0
// without ever exceeding it, and partial/weak matches scale smoothly
// below that. See DESIGN.md's hybrid-search entry for the decision record.
func scoreBM25(terms []string, weights map[string]float64, text string, params BM25Params) float64 {
	if len(terms) == 0 || text == "" {
		return 0
	}

	docLength := float64(len(words(text)))
	if docLength == 0 {
		return 0
	}

	var rawSum float64
	matched := 0
	for _, term := range terms {
		w := weights[term]
		if w == 0 {
			w = 1.0
		}
		m := matchWeight(term, text)
		if m > 0 {
			matched++
			rawSum += m * w
		}
	}

	termCoverage := float64(matched) / float64(len(terms))
	if rawSum == 0 {
		return 0
	}

	lengthNorm := 1 - params.B + params.B*(docLength/params.AvgDocLength)
	satTf := (rawSum * (params.K1 + 1)) / (rawSum + params.K1*lengthNorm)
	normalizedRaw := satTf / (params.K1 + 1)

	score := 0.5*normalizedRaw + 0.5*termCoverage
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
