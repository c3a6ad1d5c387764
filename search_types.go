package spaseek

import (
	"context"
	"fmt"
	"math"

	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
	"github.com/glowpages/spaseek/internal/domain/search/rank"
	"github.com/glowpages/spaseek/internal/domain/search/request"
	"github.com/glowpages/spaseek/internal/domain/search/result"
)

// Sort selects the ranking strategy for a search.
type Sort string

// Supported sort modes.
const (
	SortLatest   Sort = Sort(rank.Latest)
	SortPopular  Sort = Sort(rank.Popular)
	SortTrending Sort = Sort(rank.Trending)
	SortDistance Sort = Sort(rank.Distance)
)

// RangeFilter constrains a numeric facet to an inclusive interval.
// A nil bound leaves that side open.
type RangeFilter struct {
	Facet string
	Min   *float64
	Max   *float64
}

// Filters is the public facet filter set, combined with logical AND.
// Tags is an any-of membership constraint; Flags require exact equality
// on set record flags.
type Filters struct {
	Ranges []RangeFilter
	Tags   []string
	Flags  map[string]bool
	MaxKm  *float64
}

// SearchOptions configures one search invocation.
type SearchOptions struct {
	Sort     Sort
	Filters  Filters
	Ref      *Coordinate
	Page     int
	PageSize int
}

// SearchResult is one ranked record.
type SearchResult struct {
	ID         string
	Kind       string
	Name       string
	Title      string
	Tags       []string
	Numerics   map[string]float64
	DistanceKm *float64
	Position   int
	CreatedAt  int64 // unix millis
}

// SearchPage is a bounded slice of the ranked result set.
type SearchPage struct {
	Items        []SearchResult
	Total        int
	HasMore      bool
	NoCandidates bool
}

// SearchListings searches marketplace listings.
func (c *Client) SearchListings(ctx context.Context, query string, opts *SearchOptions) (SearchPage, error) {
	return c.doSearch(ctx, record.KindListing, query, "", opts)
}

// SearchPosts searches community posts.
func (c *Client) SearchPosts(ctx context.Context, query string, opts *SearchOptions) (SearchPage, error) {
	return c.doSearch(ctx, record.KindPost, query, "", opts)
}

// PostsByTag browses posts scoped to one tag.
func (c *Client) PostsByTag(ctx context.Context, tag string, opts *SearchOptions) (SearchPage, error) {
	return c.doSearch(ctx, record.KindPost, "", tag, opts)
}

func (c *Client) doSearch(
	ctx context.Context, kind record.Kind, query, tag string, opts *SearchOptions,
) (SearchPage, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	state, err := toInternalFilters(opts.Filters)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}

	req, err := request.New(
		query, kind, state, rank.Mode(opts.Sort),
		toInternalCoordinate(opts.Ref),
		opts.Page, opts.PageSize,
	)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}

	var page result.Page
	if tag != "" {
		page, err = c.searchSvc.SearchByTag(ctx, tag, &req)
	} else {
		page, err = c.searchSvc.Search(ctx, &req)
	}
	if err != nil {
		return SearchPage{}, fmt.Errorf("search: %w", err)
	}
	return fromPage(&page), nil
}

func toInternalFilters(f Filters) (filter.State, error) {
	var ranges []filter.Range
	for _, r := range f.Ranges {
		min := 0.0
		if r.Min != nil {
			min = *r.Min
		}
		max := math.Inf(1)
		if r.Max != nil {
			max = *r.Max
		}
		rf, err := filter.NewRange(r.Facet, min, max)
		if err != nil {
			return filter.State{}, err
		}
		ranges = append(ranges, rf)
	}

	var flags []filter.Flag
	for name, want := range f.Flags {
		ff, err := filter.NewFlag(name, want)
		if err != nil {
			return filter.State{}, err
		}
		flags = append(flags, ff)
	}

	return filter.NewState(ranges, f.Tags, flags, f.MaxKm)
}

func fromPage(page *result.Page) SearchPage {
	items := make([]SearchResult, 0, len(page.Items()))
	for _, r := range page.Items() {
		rec := r.Record()
		items = append(items, SearchResult{
			ID:         rec.ID(),
			Kind:       string(rec.Kind()),
			Name:       rec.Name(),
			Title:      rec.Title(),
			Tags:       rec.Tags(),
			Numerics:   rec.Numerics(),
			DistanceKm: r.DistanceKm(),
			Position:   r.Position(),
			CreatedAt:  rec.CreatedAt(),
		})
	}
	return SearchPage{
		Items:        items,
		Total:        page.Total(),
		HasMore:      page.HasMore(),
		NoCandidates: page.NoCandidates(),
	}
}
