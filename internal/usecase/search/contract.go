package search

import (
	"context"

	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
)

// CandidateProvider supplies the candidate record collection for one
// request. The assembler does not care whether it is backed by a remote
// store, a cache or a static fixture; it only requires records with
// absent optional facets left out of the sparse maps.
type CandidateProvider interface {
	FetchCandidates(ctx context.Context, kind record.Kind, filters filter.State) ([]record.Record, error)
}
