package domain

// FieldAny marks an unscoped free-text term: the value may match in any
// searchable field, including nested alias collections.
const FieldAny = "any"

// Term is a single AND-term of a parsed query.
type Term struct {
	Field string
	Value string
	Exact bool
	Not   bool
}

// Group is a conjunction of terms. The document must satisfy every term.
type Group struct {
	Terms []Term
}

// Query is an ordered disjunction of groups. The document must satisfy at
// least one group. Constructed per request, immutable afterwards.
type Query struct {
	Groups []Group
}

// IsEmpty reports whether the query has no terms at all.
func (q Query) IsEmpty() bool {
	for _, g := range q.Groups {
		if len(g.Terms) > 0 {
			return false
		}
	}
	return true
}

// Sort enumerates the supported result orders.
type Sort string

const (
	// SortRecent orders by primary key descending.
	SortRecent Sort = "recent"
	// SortDiffAsc orders by difficulty ascending.
	SortDiffAsc Sort = "diff-asc"
	// SortDiffDesc orders by difficulty descending.
	SortDiffDesc Sort = "diff-desc"
	// SortClears orders by clear count descending.
	SortClears Sort = "clears"
	// SortRandom returns a uniform random sample of the matches.
	SortRandom Sort = "random"
)

// Valid reports whether s is a known sort order.
func (s Sort) Valid() bool {
	switch s {
	case SortRecent, SortDiffAsc, SortDiffDesc, SortClears, SortRandom:
		return true
	}
	return false
}

// Viewer carries the caller-scoped visibility rules folded into every
// compiled query: a viewer sees their own hidden records, moderators see
// everything.
type Viewer struct {
	PlayerID    int64
	IsModerator bool
}
