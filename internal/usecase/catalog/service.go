package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/record"
)

// Service handles the catalog write path: listing and post ingest,
// deletion and upvote increments. Validation happens in the record
// constructors; this layer wraps their failures in ErrInvalidRecord and
// fills defaulted timestamps.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a catalog service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the timestamp source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UpsertListing validates and stores a listing.
func (s *Service) UpsertListing(ctx context.Context, p record.ListingParams) (record.Record, error) {
	if p.CreatedAt == 0 {
		p.CreatedAt = s.now().UnixMilli()
	}
	rec, err := record.NewListing(p)
	if err != nil {
		return record.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	if err := s.repo.Upsert(ctx, &rec); err != nil {
		return record.Record{}, fmt.Errorf("upsert listing: %w", err)
	}
	return rec, nil
}

// UpsertPost validates and stores a community post.
func (s *Service) UpsertPost(ctx context.Context, p record.PostParams) (record.Record, error) {
	if p.CreatedAt == 0 {
		p.CreatedAt = s.now().UnixMilli()
	}
	rec, err := record.NewPost(p)
	if err != nil {
		return record.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	if err := s.repo.Upsert(ctx, &rec); err != nil {
		return record.Record{}, fmt.Errorf("upsert post: %w", err)
	}
	return rec, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	rec, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return record.Record{}, fmt.Errorf("get %s: %w", kind, err)
	}
	return rec, nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, kind record.Kind, id string) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// Upvote bumps a post's upvote count by one and returns the new count.
func (s *Service) Upvote(ctx context.Context, id string) (int64, error) {
	v, err := s.repo.IncrementFacet(ctx, record.KindPost, id, record.FacetUpvotes, 1)
	if err != nil {
		return 0, fmt.Errorf("upvote post: %w", err)
	}
	return v, nil
}
