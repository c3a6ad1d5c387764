package chi

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
	"github.com/glowpages/spaseek/internal/domain/search/rank"
	"github.com/glowpages/spaseek/internal/domain/search/request"
	"github.com/glowpages/spaseek/internal/domain/search/result"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeInvalidFilter    = "invalid_filter"
	codeInvalidRankMode  = "invalid_rank_mode"
	codeNotFound         = "not_found"
	codeDataUnavailable  = "data_unavailable"
	codeUnauthorized     = "unauthorized"
	codeInternalError    = "internal_error"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// treatmentDTO is the wire shape of one treatment.
type treatmentDTO struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// listingUpsertRequest is the PUT /v1/listings/{id} body.
type listingUpsertRequest struct {
	Name          string         `json:"name"`
	Location      string         `json:"location,omitempty"`
	Neighborhood  string         `json:"neighborhood,omitempty"`
	Treatments    []treatmentDTO `json:"treatments,omitempty"`
	Practitioners []string       `json:"practitioners,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	GoogleStars   *float64       `json:"google_stars,omitempty"`
	GoogleReviews *float64       `json:"google_reviews,omitempty"`
	YelpStars     *float64       `json:"yelp_stars,omitempty"`
	YelpReviews   *float64       `json:"yelp_reviews,omitempty"`
	FreeConsult   *bool          `json:"free_consult,omitempty"`
	Lat           *float64       `json:"lat,omitempty"`
	Lng           *float64       `json:"lng,omitempty"`
	CreatedAt     int64          `json:"created_at,omitempty"` // unix millis
}

// postUpsertRequest is the PUT /v1/posts/{id} body.
type postUpsertRequest struct {
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Upvotes   *float64 `json:"upvotes,omitempty"`
	Comments  *float64 `json:"comments,omitempty"`
	Saved     *bool    `json:"saved,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	CreatedAt int64    `json:"created_at,omitempty"`
}

// recordDTO is the wire shape of one record inside search responses.
type recordDTO struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	Name          string             `json:"name,omitempty"`
	Location      string             `json:"location,omitempty"`
	Neighborhood  string             `json:"neighborhood,omitempty"`
	Treatments    []treatmentDTO     `json:"treatments,omitempty"`
	Practitioners []string           `json:"practitioners,omitempty"`
	Title         string             `json:"title,omitempty"`
	Excerpt       string             `json:"excerpt,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Numerics      map[string]float64 `json:"numerics,omitempty"`
	Flags         map[string]bool    `json:"flags,omitempty"`
	Lat           *float64           `json:"lat,omitempty"`
	Lng           *float64           `json:"lng,omitempty"`
	CreatedAt     int64              `json:"created_at"`
}

// resultItemDTO is one ranked search hit.
type resultItemDTO struct {
	Position   int       `json:"position"`
	DistanceKm *float64  `json:"distance_km,omitempty"`
	Record     recordDTO `json:"record"`
}

// searchResponse is the search result envelope.
type searchResponse struct {
	Items        []resultItemDTO `json:"items"`
	Total        int             `json:"total"`
	Page         int             `json:"page"`
	PageSize     int             `json:"page_size"`
	HasMore      bool            `json:"has_more"`
	NoCandidates bool            `json:"no_candidates"`
}

// upvoteResponse is the POST /v1/posts/{id}/upvote response.
type upvoteResponse struct {
	ID      string `json:"id"`
	Upvotes int64  `json:"upvotes"`
}

func (req *listingUpsertRequest) toParams(id string) record.ListingParams {
	return record.ListingParams{
		ID:            id,
		Name:          req.Name,
		Location:      req.Location,
		Neighborhood:  req.Neighborhood,
		Treatments:    treatmentsFromDTO(req.Treatments),
		Practitioners: req.Practitioners,
		Tags:          req.Tags,
		GoogleStars:   req.GoogleStars,
		GoogleReviews: req.GoogleReviews,
		YelpStars:     req.YelpStars,
		YelpReviews:   req.YelpReviews,
		FreeConsult:   req.FreeConsult,
		Coordinate:    coordFromParts(req.Lat, req.Lng),
		CreatedAt:     req.CreatedAt,
	}
}

func (req *postUpsertRequest) toParams(id string) record.PostParams {
	return record.PostParams{
		ID:         id,
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Tags:       req.Tags,
		Upvotes:    req.Upvotes,
		Comments:   req.Comments,
		Saved:      req.Saved,
		Coordinate: coordFromParts(req.Lat, req.Lng),
		CreatedAt:  req.CreatedAt,
	}
}

func treatmentsFromDTO(dtos []treatmentDTO) []record.Treatment {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]record.Treatment, len(dtos))
	for i, d := range dtos {
		out[i] = record.Treatment{Name: d.Name, Price: d.Price}
	}
	return out
}

func coordFromParts(lat, lng *float64) *geo.Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	c := geo.NewCoordinate(*lat, *lng)
	return &c
}

func recordToDTO(rec *record.Record) recordDTO {
	dto := recordDTO{
		ID:            rec.ID(),
		Kind:          string(rec.Kind()),
		Name:          rec.Name(),
		Location:      rec.Location(),
		Neighborhood:  rec.Neighborhood(),
		Practitioners: rec.Practitioners(),
		Title:         rec.Title(),
		Excerpt:       rec.Excerpt(),
		Tags:          rec.Tags(),
		CreatedAt:     rec.CreatedAt(),
	}
	if len(rec.Treatments()) > 0 {
		dto.Treatments = make([]treatmentDTO, len(rec.Treatments()))
		for i, t := range rec.Treatments() {
			dto.Treatments[i] = treatmentDTO{Name: t.Name, Price: t.Price}
		}
	}
	if len(rec.Numerics()) > 0 {
		dto.Numerics = rec.Numerics()
	}
	if len(rec.Flags()) > 0 {
		dto.Flags = rec.Flags()
	}
	if c := rec.Coordinate(); c != nil {
		lat, lng := c.Lat(), c.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func pageToResponse(page *result.Page, req *request.Request) searchResponse {
	items := make([]resultItemDTO, len(page.Items()))
	for i := range page.Items() {
		it := &page.Items()[i]
		items[i] = resultItemDTO{
			Position:   it.Position(),
			DistanceKm: it.DistanceKm(),
			Record:     recordToDTO(it.Record()),
		}
	}
	return searchResponse{
		Items:        items,
		Total:        page.Total(),
		Page:         req.Page(),
		PageSize:     req.PageSize(),
		HasMore:      page.HasMore(),
		NoCandidates: page.NoCandidates(),
	}
}

// rangeParam pairs min/max query parameters with the facet they bound.
type rangeParam struct {
	facet    string
	minParam string
	maxParam string
}

var listingRangeParams = []rangeParam{
	{record.FacetPriceMin, "price_min", "price_max"},
	{record.FacetGoogleStars, "google_stars_min", "google_stars_max"},
	{record.FacetGoogleReviews, "google_reviews_min", "google_reviews_max"},
	{record.FacetYelpStars, "yelp_stars_min", "yelp_stars_max"},
	{record.FacetYelpReviews, "yelp_reviews_min", "yelp_reviews_max"},
}

var postRangeParams = []rangeParam{
	{record.FacetUpvotes, "upvotes_min", "upvotes_max"},
	{record.FacetComments, "comments_min", "comments_max"},
}

// flagParam pairs a boolean query parameter with a record flag.
type flagParam struct {
	flag  string
	param string
}

var listingFlagParams = []flagParam{{record.FlagFreeConsult, "free_consult"}}
var postFlagParams = []flagParam{{record.FlagSaved, "saved"}}

// parseSearchRequest builds a validated search request from query
// parameters. When lat/lng are absent the locator (if any) supplies the
// reference coordinate; a locator failure degrades to no distance
// enrichment rather than failing the request.
func (s *Server) parseSearchRequest(
	r *http.Request, kind record.Kind,
) (request.Request, error) {
	q := r.URL.Query()

	var rangeParams []rangeParam
	var flagParams []flagParam
	switch kind {
	case record.KindListing:
		rangeParams, flagParams = listingRangeParams, listingFlagParams
	case record.KindPost:
		rangeParams, flagParams = postRangeParams, postFlagParams
	}

	var ranges []filter.Range
	for _, rp := range rangeParams {
		min, minSet, err := parseFloatParam(q, rp.minParam)
		if err != nil {
			return request.Request{}, err
		}
		max, maxSet, err := parseFloatParam(q, rp.maxParam)
		if err != nil {
			return request.Request{}, err
		}
		if !minSet && !maxSet {
			continue
		}
		if !maxSet {
			max = math.Inf(1)
		}
		rg, err := filter.NewRange(rp.facet, min, max)
		if err != nil {
			return request.Request{}, err
		}
		ranges = append(ranges, rg)
	}

	var flags []filter.Flag
	for _, fp := range flagParams {
		raw := q.Get(fp.param)
		if raw == "" {
			continue
		}
		want, err := strconv.ParseBool(raw)
		if err != nil {
			return request.Request{}, fmt.Errorf("invalid %s: %q", fp.param, raw)
		}
		fl, err := filter.NewFlag(fp.flag, want)
		if err != nil {
			return request.Request{}, err
		}
		flags = append(flags, fl)
	}

	var tags []string
	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	var maxDistanceKm *float64
	if v, set, err := parseFloatParam(q, "max_km"); err != nil {
		return request.Request{}, err
	} else if set {
		maxDistanceKm = &v
	}

	state, err := filter.NewState(ranges, tags, flags, maxDistanceKm)
	if err != nil {
		return request.Request{}, err
	}

	ref, err := s.referenceCoordinate(r)
	if err != nil {
		return request.Request{}, err
	}

	page, err := parseIntParam(q, "page", 1)
	if err != nil {
		return request.Request{}, err
	}
	pageSize, err := parseIntParam(q, "page_size", s.defaultPageSize)
	if err != nil {
		return request.Request{}, err
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	return request.New(
		q.Get("q"), kind, state, rank.Mode(q.Get("sort")), ref, page, pageSize,
	)
}

// referenceCoordinate resolves the reference point: explicit lat/lng
// parameters win, then the geolocation provider, then none.
func (s *Server) referenceCoordinate(r *http.Request) (*geo.Coordinate, error) {
	q := r.URL.Query()
	lat, latSet, err := parseFloatParam(q, "lat")
	if err != nil {
		return nil, err
	}
	lng, lngSet, err := parseFloatParam(q, "lng")
	if err != nil {
		return nil, err
	}
	if latSet != lngSet {
		return nil, fmt.Errorf("lat and lng must be supplied together")
	}
	if latSet {
		c := geo.NewCoordinate(lat, lng)
		return &c, nil
	}
	if s.locator == nil {
		return nil, nil
	}
	coord, err := s.locator.Locate(r.Context())
	if err != nil {
		// Geolocation is best-effort: degrade to no enrichment.
		return nil, nil
	}
	return coord, nil
}

func parseFloatParam(q url.Values, name string) (float64, bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, true, nil
}

func parseIntParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
