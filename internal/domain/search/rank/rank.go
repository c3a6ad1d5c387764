package rank

import "github.com/glowpages/spaseek/internal/domain/search/result"

// Mode is the ranking strategy.
type Mode string

// Rank mode constants.
const (
	// Latest orders by creation timestamp, newest first.
	Latest Mode = "latest"
	// Popular orders by the primary popularity score, highest first.
	Popular Mode = "popular"
	// Trending orders by the composite primary + 2*secondary score.
	Trending Mode = "trending"
	// Distance orders by distance from the reference coordinate,
	// closest first; records without a coordinate sort last.
	Distance Mode = "distance"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Latest || m == Popular || m == Trending || m == Distance
}

// TrendingSecondaryWeight doubles the secondary engagement factor in the
// trending composite. Fixed product constant, not tunable per request.
const TrendingSecondaryWeight = 2.0

// TrendingScore computes the trending composite for a record's primary
// and secondary scores.
func TrendingScore(primary, secondary float64) float64 {
	return primary + TrendingSecondaryWeight*secondary
}

// Less returns a strict total-order comparator for the mode. Every
// comparator breaks ties by identifier ascending, so no two distinct
// records ever compare equal and repeated runs over the same input
// reproduce the same sequence and page boundaries.
//
// The caller guarantees mode validity and, for Distance, that results
// were enriched against a reference coordinate; both are enforced when
// the search request is constructed.
func Less(m Mode) func(a, b *result.Ranked) bool {
	switch m {
	case Popular:
		return func(a, b *result.Ranked) bool {
			return scoreDesc(a, b, a.Record().PrimaryScore(), b.Record().PrimaryScore())
		}
	case Trending:
		return func(a, b *result.Ranked) bool {
			sa := TrendingScore(a.Record().PrimaryScore(), a.Record().SecondaryScore())
			sb := TrendingScore(b.Record().PrimaryScore(), b.Record().SecondaryScore())
			return scoreDesc(a, b, sa, sb)
		}
	case Distance:
		return lessByDistance
	default: // Latest
		return func(a, b *result.Ranked) bool {
			ta, tb := a.Record().CreatedAt(), b.Record().CreatedAt()
			if ta != tb {
				return ta > tb
			}
			return idAsc(a, b)
		}
	}
}

// lessByDistance sorts ascending by distance with nil distances after
// every non-nil distance, ties by identifier.
func lessByDistance(a, b *result.Ranked) bool {
	da, db := a.DistanceKm(), b.DistanceKm()
	switch {
	case da == nil && db == nil:
		return idAsc(a, b)
	case da == nil:
		return false
	case db == nil:
		return true
	case *da != *db:
		return *da < *db
	default:
		return idAsc(a, b)
	}
}

func scoreDesc(a, b *result.Ranked, sa, sb float64) bool {
	if sa != sb {
		return sa > sb
	}
	return idAsc(a, b)
}

func idAsc(a, b *result.Ranked) bool {
	return a.Record().ID() < b.Record().ID()
}
