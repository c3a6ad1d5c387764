package records

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
)

// store is the consumer interface for record storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores listings and posts as one Redis hash per record under
// <prefix><kind>:<id>. It implements usecase/search.CandidateProvider
// and the catalog storage contract.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a records repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// FetchCandidates returns every stored record of the kind. The filter
// state is accepted for interface fidelity but pruning happens in the
// search pipeline: candidate sets are page-sized, not index-scale, and
// store-side prefiltering would need a search index this system
// deliberately does not maintain.
func (r *Repo) FetchCandidates(
	ctx context.Context, kind record.Kind, _ filter.State,
) ([]record.Record, error) {
	prefix := r.key(kind, "")
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	// SCAN order is arbitrary; fixed key order keeps fetches reproducible.
	sort.Strings(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch %s candidates: %w", kind, err)
	}

	recs := make([]record.Record, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			// Key expired or deleted between SCAN and HGETALL.
			continue
		}
		recs = append(recs, parseHashFields(strings.TrimPrefix(keys[i], prefix), m))
	}
	return recs, nil
}

// Upsert stores a record, replacing any previous version.
func (r *Repo) Upsert(ctx context.Context, rec *record.Record) error {
	fields, err := buildHashFields(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID(), err)
	}
	key := r.key(rec.Kind(), rec.ID())
	// Replace, not merge: stale facets from the previous version must not survive.
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("replace record %s: %w", rec.ID(), err)
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("store record %s: %w", rec.ID(), err)
	}
	return nil
}

// Get returns one record by kind and id.
func (r *Repo) Get(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	m, err := r.store.HGetAll(ctx, r.key(kind, id))
	if err != nil {
		return record.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if len(m) == 0 {
		return record.Record{}, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, kind record.Kind, id string) error {
	key := r.key(kind, id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check record %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// IncrementFacet atomically bumps a numeric facet (upvotes) and returns
// the new value.
func (r *Repo) IncrementFacet(
	ctx context.Context, kind record.Kind, id, facet string, delta int64,
) (int64, error) {
	key := r.key(kind, id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("check record %s: %w", id, err)
	}
	if !exists {
		return 0, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	v, err := r.store.HIncrBy(ctx, key, facet, delta)
	if err != nil {
		return 0, fmt.Errorf("increment %s on record %s: %w", facet, id, err)
	}
	return v, nil
}

func (r *Repo) key(kind record.Kind, id string) string {
	return r.keyPrefix + string(kind) + ":" + id
}
