package geo

import "math"

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	lat float64
	lng float64
}

// NewCoordinate creates a Coordinate without validation (storage hydration,
// fixtures). Use Validate when the values come from a caller.
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{lat: lat, lng: lng}
}

// Lat returns the latitude in degrees.
func (c Coordinate) Lat() float64 { return c.lat }

// Lng returns the longitude in degrees.
func (c Coordinate) Lng() float64 { return c.lng }

// Validate checks that latitude is in [-90,90] and longitude in [-180,180].
func Validate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Haversine returns the great-circle distance in kilometers between two
// points specified by latitude and longitude in degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceKm returns the Haversine distance between a reference coordinate
// and a record coordinate, or nil when either side is absent.
func DistanceKm(ref, rec *Coordinate) *float64 {
	if ref == nil || rec == nil {
		return nil
	}
	d := Haversine(ref.lat, ref.lng, rec.lat, rec.lng)
	return &d
}
