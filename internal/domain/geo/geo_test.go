package geo

import (
	"math"
	"testing"
)

// --- Haversine ---

func TestHaversine_SamePoint(t *testing.T) {
	if d := Haversine(34.05, -118.24, 34.05, -118.24); d != 0 {
		t.Errorf("distance = %v, want 0", d)
	}
}

func TestHaversine_OneDegreeOnEquator(t *testing.T) {
	// One degree of longitude on the equator is about 111.19 km.
	d := Haversine(0, 0, 0, 1)
	if math.Abs(d-111.19) > 0.1 {
		t.Errorf("distance = %v, want ~111.19", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(34.05, -118.24, 37.77, -122.42)
	b := Haversine(37.77, -122.42, 34.05, -118.24)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("asymmetric: %v vs %v", a, b)
	}
}

func TestHaversine_LAtoSF(t *testing.T) {
	// Los Angeles to San Francisco, roughly 559 km.
	d := Haversine(34.0522, -118.2437, 37.7749, -122.4194)
	if d < 550 || d > 570 {
		t.Errorf("distance = %v, want ~559", d)
	}
}

// --- DistanceKm ---

func TestDistanceKm_BothPresent(t *testing.T) {
	ref := NewCoordinate(0, 0)
	rec := NewCoordinate(0, 1)

	d := DistanceKm(&ref, &rec)
	if d == nil {
		t.Fatal("expected non-nil distance")
	}
	if math.Abs(*d-111.19) > 0.1 {
		t.Errorf("distance = %v, want ~111.19", *d)
	}
}

func TestDistanceKm_MissingSide(t *testing.T) {
	c := NewCoordinate(0, 0)

	if d := DistanceKm(nil, &c); d != nil {
		t.Errorf("distance = %v, want nil for missing reference", *d)
	}
	if d := DistanceKm(&c, nil); d != nil {
		t.Errorf("distance = %v, want nil for missing record coordinate", *d)
	}
	if d := DistanceKm(nil, nil); d != nil {
		t.Errorf("distance = %v, want nil for both missing", *d)
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"extremes", 90, 180, true},
		{"negative extremes", -90, -180, true},
		{"lat too high", 90.1, 0, false},
		{"lat too low", -90.1, 0, false},
		{"lng too high", 0, 180.1, false},
		{"lng too low", 0, -180.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Validate(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestCoordinate_Accessors(t *testing.T) {
	c := NewCoordinate(34.05, -118.24)
	if c.Lat() != 34.05 {
		t.Errorf("Lat() = %v", c.Lat())
	}
	if c.Lng() != -118.24 {
		t.Errorf("Lng() = %v", c.Lng())
	}
}
