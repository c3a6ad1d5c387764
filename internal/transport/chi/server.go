package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	cataloguc "github.com/glowpages/spaseek/internal/usecase/catalog"
	healthuc "github.com/glowpages/spaseek/internal/usecase/health"
	searchuc "github.com/glowpages/spaseek/internal/usecase/search"
)

// Locator supplies a fallback reference coordinate for requests that
// carry no lat/lng. Optional: nil disables the fallback.
type Locator interface {
	Locate(ctx context.Context) (*geo.Coordinate, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search, catalog and health services over HTTP.
type Server struct {
	search          *searchuc.Service
	catalog         *cataloguc.Service
	health          *healthuc.Service
	locator         Locator
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server. locator may be nil.
func NewServer(
	search *searchuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	locator Locator,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:          search,
		catalog:         catalog,
		health:          health,
		locator:         locator,
		logger:          logger,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidRankMode, http.StatusBadRequest, codeInvalidRankMode),
		sentinelHandler(domain.ErrMalformedFilter, http.StatusBadRequest, codeInvalidFilter),
		sentinelHandler(domain.ErrDataUnavailable, http.StatusServiceUnavailable, codeDataUnavailable),
	}
	return s
}

// WithPagination overrides the page size defaults.
func (s *Server) WithPagination(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/listings/search", s.SearchListings)
		r.Put("/listings/{id}", s.UpsertListing)
		r.Delete("/listings/{id}", s.DeleteListing)

		r.Get("/posts/search", s.SearchPosts)
		r.Put("/posts/{id}", s.UpsertPost)
		r.Delete("/posts/{id}", s.DeletePost)
		r.Post("/posts/{id}/upvote", s.UpvotePost)

		r.Get("/tags/{tag}/posts", s.PostsByTag)
	})
}

// SearchListings handles GET /v1/listings/search.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, record.KindListing)
}

// SearchPosts handles GET /v1/posts/search.
func (s *Server) SearchPosts(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, record.KindPost)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, kind record.Kind) {
	req, err := s.parseSearchRequest(r, kind)
	if err != nil {
		s.handleRequestError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page, &req))
}

// PostsByTag handles GET /v1/tags/{tag}/posts: the community tag page,
// a tag-scoped run of the same pipeline.
func (s *Server) PostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	req, err := s.parseSearchRequest(r, record.KindPost)
	if err != nil {
		s.handleRequestError(w, err)
		return
	}

	page, err := s.search.SearchByTag(r.Context(), tag, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page, &req))
}

// UpsertListing handles PUT /v1/listings/{id}.
func (s *Server) UpsertListing(w http.ResponseWriter, r *http.Request) {
	var body listingUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.catalog.UpsertListing(r.Context(), body.toParams(chi.URLParam(r, "id")))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

// UpsertPost handles PUT /v1/posts/{id}.
func (s *Server) UpsertPost(w http.ResponseWriter, r *http.Request) {
	var body postUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.catalog.UpsertPost(r.Context(), body.toParams(chi.URLParam(r, "id")))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

// DeleteListing handles DELETE /v1/listings/{id}.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, record.KindListing)
}

// DeletePost handles DELETE /v1/posts/{id}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, record.KindPost)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, kind record.Kind) {
	if err := s.catalog.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpvotePost handles POST /v1/posts/{id}/upvote.
func (s *Server) UpvotePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	upvotes, err := s.catalog.Upvote(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, upvoteResponse{ID: id, Upvotes: upvotes})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// handleRequestError maps request construction failures: sentinel
// wrapped errors keep their mapping, everything else is a 400 with the
// parse message (it never contains internals, only parameter names).
func (s *Server) handleRequestError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err, safeDomainMessage(err)) {
			return
		}
	}
	writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidRecord,
		domain.ErrInvalidRankMode,
		domain.ErrMalformedFilter,
		domain.ErrDataUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
