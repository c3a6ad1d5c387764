// Package geoloc supplies the reference coordinate for distance ranking
// when a request carries none. The production app resolved it from the
// browser; server-side the fallback is a configured metro-area default.
package geoloc

import (
	"context"

	"github.com/glowpages/spaseek/internal/domain/geo"
)

// Static returns one fixed coordinate for every caller.
type Static struct {
	coord geo.Coordinate
}

// NewStatic creates a static locator.
func NewStatic(lat, lng float64) *Static {
	return &Static{coord: geo.NewCoordinate(lat, lng)}
}

// Locate returns the configured coordinate.
func (s *Static) Locate(_ context.Context) (*geo.Coordinate, error) {
	c := s.coord
	return &c, nil
}
