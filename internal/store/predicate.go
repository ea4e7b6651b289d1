package store

import (
	"fmt"
	"strings"
)

// Predicate is a tiny typed builder for the store's where() clauses (§4.3,
// §9 "SQL-ish predicates"). Callers build predicates with Eq/In/And instead
// of concatenating SQL strings, which is what removes the quoting-escape
// hazard called out in §7 rather than relying on escaping alone.
type Predicate interface {
	// sql renders the clause and appends any positional args it needs.
	sql(args *[]any) string
}

type eqPredicate struct {
	column string
	value  any
}

// Eq builds an equality predicate on an integer or string column.
func Eq(column string, value any) Predicate {
	return eqPredicate{column: column, value: value}
}

func (p eqPredicate) sql(args *[]any) string {
	*args = append(*args, p.value)
	return fmt.Sprintf("%s = ?", quoteIdent(p.column))
}

type inPredicate struct {
	column string
	values []any
}

// In builds a membership predicate: column IN (v1, v2, ...).
func In(column string, values ...any) Predicate {
	return inPredicate{column: column, values: values}
}

func (p inPredicate) sql(args *[]any) string {
	if len(p.values) == 0 {
		// An empty IN-list matches nothing; SQLite rejects "IN ()" syntax.
		return "0"
	}
	placeholders := make([]string, len(p.values))
	for i, v := range p.values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}
	return fmt.Sprintf("%s IN (%s)", quoteIdent(p.column), strings.Join(placeholders, ","))
}

type andPredicate struct {
	clauses []Predicate
}

// And conjuncts any number of predicates.
func And(clauses ...Predicate) Predicate {
	return andPredicate{clauses: clauses}
}

func (p andPredicate) sql(args *[]any) string {
	if len(p.clauses) == 0 {
		return "1"
	}
	parts := make([]string, len(p.clauses))
	for i, c := range p.clauses {
		parts[i] = c.sql(args)
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// Render turns a Predicate into a "WHERE ..." clause plus its positional
// args, ready to append to a parameterized query.
func Render(pred Predicate) (string, []any) {
	if pred == nil {
		return "1", nil
	}
	var args []any
	clause := pred.sql(&args)
	return clause, args
}

// EscapeLiteral escapes single quotes in a string destined for a predicate
// built outside this package's typed builder (e.g. values logged for
// debugging). §4.3: "implementations MUST escape single quotes in string
// literals ('  -> '') to avoid injection via user-supplied concept names."
// The typed builder above always parameterizes values and never needs this,
// but it is exposed for any caller that must render a literal by hand.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// allowedIdent restricts column names to the fixed schema so quoteIdent can
// never be used to smuggle arbitrary SQL even though columns never come
// from request input in practice.
var allowedIdent = map[string]bool{
	"id": true, "source": true, "hash": true, "title": true, "catalog_id": true,
	"concept": true, "category": true, "parent_category_id": true,
	"visual_type": true, "page_number": true,
}

func quoteIdent(column string) string {
	if !allowedIdent[column] {
		// Columns are always constants chosen by this package's own
		// repositories, never by request input; an unknown column is a
		// programming error, not a runtime injection path.
		panic(fmt.Sprintf("store: unknown predicate column %q", column))
	}
	return `"` + column + `"`
}
