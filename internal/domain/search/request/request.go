package request

import (
	"fmt"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
	"github.com/glowpages/spaseek/internal/domain/search/rank"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length.
	MaxQueryLength  = 512
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request is a validated search invocation: the raw query text, the
// caller-owned filter state, a rank mode, an optional reference
// coordinate and a page window.
type Request struct {
	rawQuery string
	kind     record.Kind
	filters  filter.State
	mode     rank.Mode
	ref      *geo.Coordinate
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: mode=latest, page=1, pageSize=20 (clamped to 100).
// Requesting distance mode without a reference coordinate is a caller
// error and fails fast.
func New(
	rawQuery string,
	kind record.Kind,
	filters filter.State,
	mode rank.Mode,
	ref *geo.Coordinate,
	page, pageSize int,
) (Request, error) {
	if len(rawQuery) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if !kind.IsValid() {
		return Request{}, fmt.Errorf("invalid record kind: %q", kind)
	}
	if mode == "" {
		mode = rank.Latest
	}
	if !mode.IsValid() {
		return Request{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRankMode, mode)
	}
	if mode == rank.Distance && ref == nil {
		return Request{}, fmt.Errorf("%w: distance ranking requires a reference coordinate",
			domain.ErrInvalidRankMode)
	}
	if ref != nil && !geo.Validate(ref.Lat(), ref.Lng()) {
		return Request{}, fmt.Errorf("reference coordinate out of range: (%v, %v)", ref.Lat(), ref.Lng())
	}
	if filters.MaxDistanceKm() != nil && ref == nil {
		return Request{}, fmt.Errorf("%w: distance bound requires a reference coordinate",
			domain.ErrMalformedFilter)
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Request{
		rawQuery: rawQuery,
		kind:     kind,
		filters:  filters,
		mode:     mode,
		ref:      ref,
		page:     page,
		pageSize: pageSize,
	}, nil
}

// RawQuery returns the raw query text (may be empty: no text filter).
func (r *Request) RawQuery() string { return r.rawQuery }

// Kind returns the searched record kind.
func (r *Request) Kind() record.Kind { return r.kind }

// Filters returns the facet filter state.
func (r *Request) Filters() filter.State { return r.filters }

// Mode returns the ranking strategy.
func (r *Request) Mode() rank.Mode { return r.mode }

// Reference returns the reference coordinate (nil when absent).
func (r *Request) Reference() *geo.Coordinate { return r.ref }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the page size.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the zero-based index of the first item on the page.
func (r *Request) Offset() int { return (r.page - 1) * r.pageSize }

// WithFilters returns a copy of the request with the filter state
// replaced. Used by tag-scoped browsing.
func (r Request) WithFilters(f filter.State) Request {
	r.filters = f
	return r
}
