package query

import "strings"

// Query is a normalized free-text search string: whitespace-trimmed and
// case-folded. A multi-word query stays one contiguous substring target;
// there is no tokenized boolean grammar.
type Query string

// Normalize folds a raw search string into a Query. Empty or
// whitespace-only input yields the empty query, which matches every
// record (no text filter).
func Normalize(raw string) Query {
	return Query(strings.ToLower(strings.TrimSpace(raw)))
}

// IsEmpty reports whether the query carries no text filter.
func (q Query) IsEmpty() bool { return q == "" }

// String returns the normalized query text.
func (q Query) String() string { return string(q) }
