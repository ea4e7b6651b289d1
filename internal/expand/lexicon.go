package expand

// Lexicon supplies synonym/hypernym/hyponym terms for a single lowercase
// token. No WordNet binding (or any lexical-relation library) exists
// anywhere in the retrieved reference pack, so the corpus's own closest
// equivalent — a comparable implementation's hand-rolled domain term maps in
// internal/search/synonyms.go — is followed: a small, explicit, hand-built
// map, just over technical/architecture vocabulary instead of programming
// keywords.
type Lexicon interface {
	Synonyms(token string) []string
	Hypernyms(token string) []string
	Hyponyms(token string) []string
}

type entry struct {
	synonyms  []string
	hypernyms []string
	hyponyms  []string
}

type staticLexicon struct {
	entries map[string]entry
}

// DefaultLexicon returns a small hand-built technical-vocabulary lexicon
// covering common terms in a software/systems document corpus. It is not
// exhaustive; it is a seed set in a comparable implementation's style (explicit maps, no
// external lexical database).
func DefaultLexicon() Lexicon {
	return &staticLexicon{entries: map[string]entry{
		"gateway": {
			synonyms:  []string{"proxy", "router"},
			hypernyms: []string{"middleware"},
			hyponyms:  []string{"api-gateway", "edge-proxy"},
		},
		"api": {
			synonyms:  []string{"interface", "endpoint"},
			hypernyms: []string{"contract"},
		},
		"breaker": {
			synonyms:  []string{"fuse"},
			hypernyms: []string{"safeguard"},
		},
		"circuit": {
			synonyms: []string{"switch"},
		},
		"distributed": {
			synonyms:  []string{"decentralized"},
			hypernyms: []string{"system"},
		},
		"system": {
			synonyms:  []string{"architecture"},
			hyponyms:  []string{"service", "component"},
		},
		"systems": {
			synonyms: []string{"architectures"},
			hyponyms: []string{"services", "components"},
		},
		"service": {
			synonyms:  []string{"microservice"},
			hypernyms: []string{"component"},
		},
		"cache": {
			synonyms:  []string{"buffer"},
			hypernyms: []string{"store"},
			hyponyms:  []string{"lru-cache"},
		},
		"database": {
			synonyms:  []string{"datastore", "db"},
			hypernyms: []string{"store"},
		},
		"queue": {
			synonyms:  []string{"buffer"},
			hypernyms: []string{"pipeline"},
			hyponyms:  []string{"message-queue"},
		},
		"concept": {
			synonyms: []string{"term", "notion"},
		},
		"category": {
			synonyms: []string{"classification", "grouping"},
		},
		"code": {
			synonyms: []string{"clean-code"},
		},
		"consensus": {
			synonyms:  []string{"agreement"},
			hypernyms: []string{"coordination"},
		},
		"resilience": {
			synonyms:  []string{"robustness", "fault-tolerance"},
		},
		"retry": {
			synonyms: []string{"retrial"},
		},
		"bulkhead": {
			synonyms:  []string{"isolation"},
			hypernyms: []string{"safeguard"},
		},
	}}
}

func (l *staticLexicon) Synonyms(token string) []string {
	return append([]string(nil), l.entries[token].synonyms...)
}

func (l *staticLexicon) Hypernyms(token string) []string {
	return append([]string(nil), l.entries[token].hypernyms...)
}

func (l *staticLexicon) Hyponyms(token string) []string {
	return append([]string(nil), l.entries[token].hyponyms...)
}
