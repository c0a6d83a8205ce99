package domain

// ClauseType is the kind of a backend query clause.
type ClauseType string

const (
	// ClauseTerm matches the untokenized field value exactly
	ClauseTerm ClauseType = "term"

	// ClauseMatch is an analyzed full-text match
	ClauseMatch ClauseType = "match"

	// ClauseFuzzy is a backend-native edit-distance match
	ClauseFuzzy ClauseType = "fuzzy"

	// ClauseWildcard matches a wildcard pattern against the field
	ClauseWildcard ClauseType = "wildcard"
)

// QueryClause is one should-clause of a backend query. Zero values mean
// "backend default": Boost 0 sends no boost, empty Fuzziness disables
// edit-distance matching, empty MinShouldMatch sends no per-clause minimum.
type QueryClause struct {
	Type           ClauseType
	Field          string
	Text           string
	Boost          float64
	Fuzziness      string
	MinShouldMatch string
}

// BackendQuery is the structured boolean/should query the pipeline sends to
// the search backend. Clauses are combined with OR semantics; a single
// clause is sent as-is.
type BackendQuery struct {
	Clauses []QueryClause

	// MinimumShouldMatch is the number of clauses that must match;
	// 0 leaves it to the backend default
	MinimumShouldMatch int

	// Size caps the number of hits returned
	Size int
}
