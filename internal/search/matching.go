package search

import "strings"

// matchWeight scores how a single query term matches a field of text:
// exact word match scores highest, a prefix match next, any substring
// occurrence least (§4.6 term-match weights: exact=1.0, prefix=0.5,
// substring=0.25). Matching is case-insensitive throughout.
func matchWeight(term, text string) float64 {
	term = strings.ToLower(term)
	text = strings.ToLower(text)
	if term == "" || text == "" {
		return 0
	}

	best := 0.0
	for _, word := range strings.FieldsFunc(text, isNotWordChar) {
		switch {
		case word == term:
			return 1.0
		case strings.HasPrefix(word, term):
			if 0.5 > best {
				best = 0.5
			}
		}
	}
	if best > 0 {
		return best
	}
	if strings.Contains(text, term) {
		return 0.25
	}
	return 0
}

func isNotWordChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return false
	case r >= 'A' && r <= 'Z':
		return false
	case r >= '0' && r <= '9':
		return false
	default:
		return true
	}
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isNotWordChar)
}
