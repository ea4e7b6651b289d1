package seed

import (
	"regexp"
	"strings"
)

// Completeness reports which pieces of a document's data already exist,
// so a resumed run regenerates only what's missing (§4.12).
type Completeness struct {
	HasCatalog  bool
	HasSummary  bool
	HasConcepts bool
	HasChunks   bool
}

// IsComplete reports whether every piece is present.
func (c Completeness) IsComplete() bool {
	return c.HasCatalog && c.HasSummary && c.HasConcepts && c.HasChunks
}

// fallbackSummaryPattern matches the generic placeholder a failed
// summarization leaves behind (§4.12: "Document overview (N pages)").
var fallbackSummaryPattern = regexp.MustCompile(`^Document overview \(\d+ pages?\)$`)

const minValidSummaryLength = 10

// IsValidSummary reports whether summary is a genuine, usable summary
// rather than a short fallback, a generic placeholder, or a recorded
// failure message (§4.12).
func IsValidSummary(summary string) bool {
	trimmed := strings.TrimSpace(summary)
	if len(trimmed) < minValidSummaryLength {
		return false
	}
	if fallbackSummaryPattern.MatchString(trimmed) {
		return false
	}
	if strings.Contains(strings.ToLower(trimmed), "summarization failed") {
		return false
	}
	return true
}
