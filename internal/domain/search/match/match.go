package match

import (
	"strings"

	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/query"
)

// Record reports whether the query is a case-insensitive substring of at
// least one of the record's searchable text fields. An empty query
// matches everything. This is a pure boolean gate: OR across fields, no
// per-field weighting.
func Record(q query.Query, rec *record.Record) bool {
	if q.IsEmpty() {
		return true
	}
	needle := q.String()
	for _, text := range rec.SearchTexts() {
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}
