package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
	"github.com/glowpages/spaseek/internal/domain/search/filter"
	"github.com/glowpages/spaseek/internal/domain/search/rank"
)

func floatPtr(f float64) *float64 { return &f }

func TestNew_Defaults(t *testing.T) {
	req, err := New("botox", record.KindListing, filter.State{}, "", nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Mode() != rank.Latest {
		t.Errorf("Mode() = %q, want latest", req.Mode())
	}
	if req.Page() != 1 {
		t.Errorf("Page() = %d, want 1", req.Page())
	}
	if req.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", req.PageSize(), DefaultPageSize)
	}
	if req.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", req.Offset())
	}
}

func TestNew_PageSizeClamped(t *testing.T) {
	req, err := New("", record.KindPost, filter.State{}, rank.Popular, nil, 3, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PageSize() != MaxPageSize {
		t.Errorf("PageSize() = %d, want %d", req.PageSize(), MaxPageSize)
	}
	if req.Offset() != 2*MaxPageSize {
		t.Errorf("Offset() = %d, want %d", req.Offset(), 2*MaxPageSize)
	}
}

func TestNew_NegativePageNormalized(t *testing.T) {
	req, err := New("", record.KindPost, filter.State{}, "", nil, -5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Page() != 1 {
		t.Errorf("Page() = %d, want 1", req.Page())
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	long := strings.Repeat("x", MaxQueryLength+1)
	_, err := New(long, record.KindListing, filter.State{}, "", nil, 1, 20)
	if err == nil {
		t.Fatal("expected error for oversized query")
	}
}

func TestNew_InvalidKind(t *testing.T) {
	_, err := New("", record.Kind("user"), filter.State{}, "", nil, 1, 20)
	if err == nil {
		t.Fatal("expected error for invalid kind")
	}
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New("", record.KindListing, filter.State{}, rank.Mode("relevance"), nil, 1, 20)
	if !errors.Is(err, domain.ErrInvalidRankMode) {
		t.Errorf("error = %v, want ErrInvalidRankMode", err)
	}
}

func TestNew_DistanceWithoutReference(t *testing.T) {
	_, err := New("", record.KindListing, filter.State{}, rank.Distance, nil, 1, 20)
	if !errors.Is(err, domain.ErrInvalidRankMode) {
		t.Errorf("error = %v, want ErrInvalidRankMode", err)
	}

	ref := geo.NewCoordinate(34.05, -118.24)
	req, err := New("", record.KindListing, filter.State{}, rank.Distance, &ref, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error with reference: %v", err)
	}
	if req.Reference() == nil {
		t.Error("Reference() = nil")
	}
}

func TestNew_DistanceBoundWithoutReference(t *testing.T) {
	state, err := filter.NewState(nil, nil, nil, floatPtr(5))
	if err != nil {
		t.Fatalf("build state: %v", err)
	}

	_, err = New("", record.KindListing, state, "", nil, 1, 20)
	if !errors.Is(err, domain.ErrMalformedFilter) {
		t.Errorf("error = %v, want ErrMalformedFilter", err)
	}
}

func TestNew_ReferenceOutOfRange(t *testing.T) {
	ref := geo.NewCoordinate(91, 0)
	_, err := New("", record.KindListing, filter.State{}, "", &ref, 1, 20)
	if err == nil {
		t.Fatal("expected error for out-of-range reference")
	}
}

func TestWithFilters(t *testing.T) {
	base, err := New("botox", record.KindPost, filter.State{}, rank.Popular, nil, 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scoped := base.WithFilters(base.Filters().WithTag("aftercare"))

	if len(base.Filters().Tags()) != 0 {
		t.Errorf("base mutated: tags = %v", base.Filters().Tags())
	}
	if len(scoped.Filters().Tags()) != 1 {
		t.Errorf("scoped tags = %v, want one tag", scoped.Filters().Tags())
	}
	// Everything else carries over.
	if scoped.RawQuery() != "botox" || scoped.Mode() != rank.Popular || scoped.Page() != 2 {
		t.Error("scoped request lost unrelated fields")
	}
}
