package result

import "github.com/glowpages/spaseek/internal/domain/record"

// Ranked is a record annotated with its computed distance and position
// in the final ordering.
type Ranked struct {
	rec        record.Record
	distanceKm *float64
	position   int
}

// New creates a Ranked result. position is assigned later by the
// assembler via WithPosition.
func New(rec record.Record, distanceKm *float64) Ranked {
	return Ranked{rec: rec, distanceKm: distanceKm}
}

// Record returns the underlying record.
func (r *Ranked) Record() *record.Record { return &r.rec }

// DistanceKm returns the distance to the reference coordinate, nil when
// no enrichment happened.
func (r *Ranked) DistanceKm() *float64 { return r.distanceKm }

// Position returns the 1-based global rank of the result.
func (r *Ranked) Position() int { return r.position }

// WithPosition returns a copy with the final rank assigned.
func (r Ranked) WithPosition(pos int) Ranked {
	r.position = pos
	return r
}

// Page is one bounded slice of the ranked result set.
type Page struct {
	items        []Ranked
	total        int
	hasMore      bool
	noCandidates bool
}

// NewPage creates a result page. noCandidates distinguishes "the
// provider returned nothing" from "records were fetched but none
// matched".
func NewPage(items []Ranked, total int, hasMore, noCandidates bool) Page {
	return Page{items: items, total: total, hasMore: hasMore, noCandidates: noCandidates}
}

// Items returns the page slice.
func (p *Page) Items() []Ranked { return p.items }

// Total returns the surviving record count across all pages.
func (p *Page) Total() int { return p.total }

// HasMore reports whether later pages exist.
func (p *Page) HasMore() bool { return p.hasMore }

// NoCandidates reports whether the provider returned an empty candidate
// collection.
func (p *Page) NoCandidates() bool { return p.noCandidates }
