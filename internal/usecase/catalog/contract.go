package catalog

import (
	"context"

	"github.com/glowpages/spaseek/internal/domain/record"
)

// Repository defines the storage contract for catalog writes.
type Repository interface {
	Upsert(ctx context.Context, rec *record.Record) error
	Get(ctx context.Context, kind record.Kind, id string) (record.Record, error)
	Delete(ctx context.Context, kind record.Kind, id string) error
	IncrementFacet(ctx context.Context, kind record.Kind, id, facet string, delta int64) (int64, error)
}
