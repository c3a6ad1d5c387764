package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
	"github.com/glowpages/spaseek/internal/domain/search/match"
	"github.com/glowpages/spaseek/internal/domain/search/query"
	"github.com/glowpages/spaseek/internal/domain/search/rank"
	"github.com/glowpages/spaseek/internal/domain/search/request"
	"github.com/glowpages/spaseek/internal/domain/search/result"
	"github.com/glowpages/spaseek/internal/metrics"
)

// Service assembles search results: it pulls a candidate collection
// from the provider and runs the normalize -> text filter -> enrich ->
// facet filter -> rank -> paginate pipeline over it in memory. The
// service holds no state across requests; concurrent searches do not
// interfere.
type Service struct {
	provider CandidateProvider
}

// New creates a search service.
func New(provider CandidateProvider) *Service {
	return &Service{provider: provider}
}

// Search executes one search request and returns a bounded result page.
// Provider failures are wrapped in domain.ErrDataUnavailable and not
// retried here; empty candidate sets and zero matches are normal
// outcomes.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := time.Now()

	page, err := s.search(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchesTotal.WithLabelValues(string(req.Kind()), string(req.Mode()), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Kind()), string(req.Mode())).
		Observe(time.Since(start).Seconds())

	return page, err
}

// SearchByTag runs the same pipeline scoped to records carrying the
// given tag, reusing the set-membership evaluator.
func (s *Service) SearchByTag(ctx context.Context, tag string, req *request.Request) (result.Page, error) {
	if tag == "" {
		return result.Page{}, fmt.Errorf("%w: tag is required", domain.ErrMalformedFilter)
	}
	scoped := req.WithFilters(req.Filters().WithTag(tag))
	return s.Search(ctx, &scoped)
}

func (s *Service) search(ctx context.Context, req *request.Request) (result.Page, error) {
	candidates, err := s.provider.FetchCandidates(ctx, req.Kind(), req.Filters())
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	noCandidates := len(candidates) == 0
	metrics.CandidatesFetched.WithLabelValues(string(req.Kind())).Observe(float64(len(candidates)))

	q := query.Normalize(req.RawQuery())

	matched := textFilter(q, candidates)
	enriched := enrich(req.Reference(), matched)
	survivors := facetFilter(req.Filters(), enriched)

	less := rank.Less(req.Mode())
	sort.Slice(survivors, func(i, j int) bool {
		return less(&survivors[i], &survivors[j])
	})

	return paginate(survivors, req.Offset(), req.PageSize(), noCandidates), nil
}

// textFilter keeps records that pass the field-match gate.
func textFilter(q query.Query, candidates []record.Record) []record.Record {
	if q.IsEmpty() {
		return candidates
	}
	kept := make([]record.Record, 0, len(candidates))
	for i := range candidates {
		if match.Record(q, &candidates[i]) {
			kept = append(kept, candidates[i])
		}
	}
	return kept
}

// enrich attaches the distance to the reference coordinate; with no
// reference the distance stays nil and ranking by distance is not
// reachable (rejected at request construction).
func enrich(ref *geo.Coordinate, recs []record.Record) []result.Ranked {
	out := make([]result.Ranked, 0, len(recs))
	for i := range recs {
		out = append(out, result.New(recs[i], geo.DistanceKm(ref, recs[i].Coordinate())))
	}
	return out
}

// facetFilter keeps results whose record satisfies every active
// constraint. Runs after enrichment because the distance bound consumes
// the computed distance; both filters are independent pure predicates,
// so the surviving set matches any evaluation order.
func facetFilter(state filter.State, results []result.Ranked) []result.Ranked {
	if state.IsEmpty() {
		return results
	}
	kept := make([]result.Ranked, 0, len(results))
	for i := range results {
		if state.Matches(results[i].Record(), results[i].DistanceKm()) {
			kept = append(kept, results[i])
		}
	}
	return kept
}

// paginate slices the ranked set to [offset, offset+limit) and assigns
// 1-based global positions.
func paginate(ranked []result.Ranked, offset, limit int, noCandidates bool) result.Page {
	total := len(ranked)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]result.Ranked, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, ranked[i].WithPosition(i+1))
	}

	return result.NewPage(items, total, end < total, noCandidates)
}
