package extract

import (
	"github.com/concept-rag/conceptrag/internal/hashid"
	"github.com/concept-rag/conceptrag/internal/store"
)

// DefaultCategorySeeds is a starter category forest a fresh database can be
// seeded with before the categories stage runs, so CategoryMapper has
// something to match concept terms against on a first ingest. A deployment
// with its own taxonomy should seed its own categories instead (via
// category_search's underlying store) and skip this. Each id is derived
// with hashid.HashToID(name) so repeated seeding is idempotent (upsert
// overwrites the same row rather than creating a duplicate with id 0).
func DefaultCategorySeeds() []*store.Category {
	names := []struct {
		name    string
		aliases []string
	}{
		{"Computer Science", []string{"cs", "computing", "software"}},
		{"Mathematics", []string{"math", "maths"}},
		{"Physics", []string{"physics"}},
		{"Biology", []string{"biology", "life sciences"}},
		{"Business", []string{"economics", "finance", "management"}},
		{"History", []string{"history"}},
	}
	out := make([]*store.Category, 0, len(names))
	for _, n := range names {
		out = append(out, &store.Category{
			ID:      hashid.HashToID(n.name),
			Category: n.name,
			Aliases: n.aliases,
		})
	}
	return out
}
