package record

import (
	"fmt"
	"regexp"

	"github.com/glowpages/spaseek/internal/domain/geo"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxIDLength is the maximum record identifier length.
const MaxIDLength = 128

// Kind distinguishes marketplace listings from community posts.
type Kind string

// Record kinds.
const (
	KindListing Kind = "listing"
	KindPost    Kind = "post"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindListing || k == KindPost
}

// Numeric facet names shared with the filter and rank layers.
const (
	FacetPriceMin      = "price_min"
	FacetGoogleStars   = "google_stars"
	FacetGoogleReviews = "google_reviews"
	FacetYelpStars     = "yelp_stars"
	FacetYelpReviews   = "yelp_reviews"
	FacetUpvotes       = "upvotes"
	FacetComments      = "comments"
)

// Boolean flag names.
const (
	FlagFreeConsult = "free_consult"
	FlagSaved       = "saved"
)

// Treatment is a single offered treatment with an optional price point.
type Treatment struct {
	Name  string
	Price *float64
}

// Record is a searchable marketplace listing or community post
// (immutable value object). Numeric facets live in a sparse map: an
// absent key means the facet is null, and null never satisfies a
// constraint.
type Record struct {
	id   string
	kind Kind

	// Listing text fields.
	name          string
	location      string
	neighborhood  string
	treatments    []Treatment
	practitioners []string

	// Post text fields.
	title   string
	excerpt string

	tags      []string
	numerics  map[string]float64
	flags     map[string]bool
	coord     *geo.Coordinate
	createdAt int64 // unix millis
}

// ListingParams holds the inputs for NewListing.
type ListingParams struct {
	ID            string
	Name          string
	Location      string
	Neighborhood  string
	Treatments    []Treatment
	Practitioners []string
	Tags          []string
	GoogleStars   *float64
	GoogleReviews *float64
	YelpStars     *float64
	YelpReviews   *float64
	FreeConsult   *bool
	Coordinate    *geo.Coordinate
	CreatedAt     int64
}

// PostParams holds the inputs for NewPost.
type PostParams struct {
	ID         string
	Title      string
	Excerpt    string
	Tags       []string
	Upvotes    *float64
	Comments   *float64
	Saved      *bool
	Coordinate *geo.Coordinate
	CreatedAt  int64
}

// NewListing validates and creates a listing record.
// The price_min facet is derived from the lowest priced treatment.
func NewListing(p ListingParams) (Record, error) {
	if err := validateID(p.ID); err != nil {
		return Record{}, err
	}
	if p.Name == "" {
		return Record{}, fmt.Errorf("listing name is required")
	}
	if err := validateCoordinate(p.Coordinate); err != nil {
		return Record{}, err
	}

	numerics := make(map[string]float64)
	putFacet(numerics, FacetGoogleStars, p.GoogleStars)
	putFacet(numerics, FacetGoogleReviews, p.GoogleReviews)
	putFacet(numerics, FacetYelpStars, p.YelpStars)
	putFacet(numerics, FacetYelpReviews, p.YelpReviews)
	if min, ok := minTreatmentPrice(p.Treatments); ok {
		numerics[FacetPriceMin] = min
	}

	flags := make(map[string]bool)
	if p.FreeConsult != nil {
		flags[FlagFreeConsult] = *p.FreeConsult
	}

	return Record{
		id:            p.ID,
		kind:          KindListing,
		name:          p.Name,
		location:      p.Location,
		neighborhood:  p.Neighborhood,
		treatments:    cloneTreatments(p.Treatments),
		practitioners: cloneStrings(p.Practitioners),
		tags:          cloneStrings(p.Tags),
		numerics:      numerics,
		flags:         flags,
		coord:         cloneCoord(p.Coordinate),
		createdAt:     p.CreatedAt,
	}, nil
}

// NewPost validates and creates a community post record.
func NewPost(p PostParams) (Record, error) {
	if err := validateID(p.ID); err != nil {
		return Record{}, err
	}
	if p.Title == "" {
		return Record{}, fmt.Errorf("post title is required")
	}
	if err := validateCoordinate(p.Coordinate); err != nil {
		return Record{}, err
	}

	numerics := make(map[string]float64)
	putFacet(numerics, FacetUpvotes, p.Upvotes)
	putFacet(numerics, FacetComments, p.Comments)

	flags := make(map[string]bool)
	if p.Saved != nil {
		flags[FlagSaved] = *p.Saved
	}

	return Record{
		id:        p.ID,
		kind:      KindPost,
		title:     p.Title,
		excerpt:   p.Excerpt,
		tags:      cloneStrings(p.Tags),
		numerics:  numerics,
		flags:     flags,
		coord:     cloneCoord(p.Coordinate),
		createdAt: p.CreatedAt,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	id string, kind Kind,
	name, location, neighborhood string,
	treatments []Treatment, practitioners []string,
	title, excerpt string,
	tags []string,
	numerics map[string]float64, flags map[string]bool,
	coord *geo.Coordinate, createdAt int64,
) Record {
	return Record{
		id:            id,
		kind:          kind,
		name:          name,
		location:      location,
		neighborhood:  neighborhood,
		treatments:    treatments,
		practitioners: practitioners,
		title:         title,
		excerpt:       excerpt,
		tags:          tags,
		numerics:      numerics,
		flags:         flags,
		coord:         coord,
		createdAt:     createdAt,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Kind returns the record kind.
func (r *Record) Kind() Kind { return r.kind }

// Name returns the listing name.
func (r *Record) Name() string { return r.name }

// Location returns the listing location label.
func (r *Record) Location() string { return r.location }

// Neighborhood returns the listing neighborhood label.
func (r *Record) Neighborhood() string { return r.neighborhood }

// Treatments returns the offered treatments.
func (r *Record) Treatments() []Treatment { return r.treatments }

// Practitioners returns the practitioner names.
func (r *Record) Practitioners() []string { return r.practitioners }

// Title returns the post title.
func (r *Record) Title() string { return r.title }

// Excerpt returns the post excerpt.
func (r *Record) Excerpt() string { return r.excerpt }

// Tags returns the categorical tags.
func (r *Record) Tags() []string { return r.tags }

// Numerics returns the sparse numeric facet map.
func (r *Record) Numerics() map[string]float64 { return r.numerics }

// Flags returns the sparse boolean flag map.
func (r *Record) Flags() map[string]bool { return r.flags }

// Coordinate returns the record coordinate, or nil when absent.
func (r *Record) Coordinate() *geo.Coordinate { return r.coord }

// CreatedAt returns the creation timestamp in unix millis.
func (r *Record) CreatedAt() int64 { return r.createdAt }

// Numeric returns a facet value; ok is false when the facet is null.
func (r *Record) Numeric(facet string) (float64, bool) {
	v, ok := r.numerics[facet]
	return v, ok
}

// Flag returns a boolean flag; ok is false when the flag is unset.
func (r *Record) Flag(name string) (bool, bool) {
	v, ok := r.flags[name]
	return v, ok
}

// HasTag reports whether the record carries the given tag.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SearchTexts returns the ordered free-text fields the field matcher
// scans: listings expose name, location, neighborhood, treatment names
// and practitioner names; posts expose title, excerpt and tag names.
// Empty fields are skipped.
func (r *Record) SearchTexts() []string {
	var texts []string
	appendText := func(s string) {
		if s != "" {
			texts = append(texts, s)
		}
	}

	switch r.kind {
	case KindListing:
		appendText(r.name)
		appendText(r.location)
		appendText(r.neighborhood)
		for _, t := range r.treatments {
			appendText(t.Name)
		}
		for _, p := range r.practitioners {
			appendText(p)
		}
	case KindPost:
		appendText(r.title)
		appendText(r.excerpt)
		for _, t := range r.tags {
			appendText(t)
		}
	}
	return texts
}

// PrimaryScore returns the popularity score: the rating-weighted Google
// review count for listings, the upvote count for posts. Missing facets
// contribute zero (ranking is not filtering; absence only blocks
// constraints, not ordering).
func (r *Record) PrimaryScore() float64 {
	switch r.kind {
	case KindListing:
		return r.numerics[FacetGoogleStars] * r.numerics[FacetGoogleReviews]
	case KindPost:
		return r.numerics[FacetUpvotes]
	}
	return 0
}

// SecondaryScore returns the trending secondary factor: the
// rating-weighted Yelp review count for listings, the comment count for
// posts.
func (r *Record) SecondaryScore() float64 {
	switch r.kind {
	case KindListing:
		return r.numerics[FacetYelpStars] * r.numerics[FacetYelpReviews]
	case KindPost:
		return r.numerics[FacetComments]
	}
	return 0
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("record ID is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("record ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("record ID must be alphanumeric with underscores and hyphens")
	}
	return nil
}

func validateCoordinate(c *geo.Coordinate) error {
	if c == nil {
		return nil
	}
	if !geo.Validate(c.Lat(), c.Lng()) {
		return fmt.Errorf("coordinate out of range: (%v, %v)", c.Lat(), c.Lng())
	}
	return nil
}

func putFacet(m map[string]float64, name string, v *float64) {
	if v != nil {
		m[name] = *v
	}
}

func minTreatmentPrice(ts []Treatment) (float64, bool) {
	var min float64
	found := false
	for _, t := range ts {
		if t.Price == nil {
			continue
		}
		if !found || *t.Price < min {
			min = *t.Price
			found = true
		}
	}
	return min, found
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneTreatments(ts []Treatment) []Treatment {
	if len(ts) == 0 {
		return nil
	}
	out := make([]Treatment, len(ts))
	copy(out, ts)
	return out
}

func cloneCoord(c *geo.Coordinate) *geo.Coordinate {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}
