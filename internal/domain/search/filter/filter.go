package filter

import (
	"fmt"
	"math"

	"github.com/glowpages/spaseek/internal/domain"
	"github.com/glowpages/spaseek/internal/domain/record"
)

// MaxConstraints is the maximum number of range plus flag constraints.
const MaxConstraints = 32

// Range is an inclusive numeric facet constraint [min, max].
type Range struct {
	facet string
	min   float64
	max   float64
}

// NewRange validates and creates a Range. Pass 0 and math.Inf(1) for an
// unbounded side; a fully unbounded range is a no-op that never touches
// the facet.
func NewRange(facet string, min, max float64) (Range, error) {
	if facet == "" {
		return Range{}, fmt.Errorf("%w: facet name is required", domain.ErrMalformedFilter)
	}
	if math.IsNaN(min) || math.IsNaN(max) {
		return Range{}, fmt.Errorf("%w: range bound is NaN for facet %q", domain.ErrMalformedFilter, facet)
	}
	if min > max {
		return Range{}, fmt.Errorf("%w: min %v exceeds max %v for facet %q",
			domain.ErrMalformedFilter, min, max, facet)
	}
	return Range{facet: facet, min: min, max: max}, nil
}

// Facet returns the constrained facet name.
func (r Range) Facet() string { return r.facet }

// Min returns the inclusive lower bound.
func (r Range) Min() float64 { return r.min }

// Max returns the inclusive upper bound.
func (r Range) Max() float64 { return r.max }

// Unbounded reports whether the range is the unconstrained default
// [0, +Inf]. Such a range matches every record, including records with a
// null facet.
func (r Range) Unbounded() bool {
	return r.min <= 0 && math.IsInf(r.max, 1)
}

// matches evaluates the range against a record facet. A null facet never
// satisfies an active range.
func (r Range) matches(rec *record.Record) bool {
	if r.Unbounded() {
		return true
	}
	v, ok := rec.Numeric(r.facet)
	if !ok {
		return false
	}
	return v >= r.min && v <= r.max
}

// Flag is a boolean equality constraint on a record flag.
type Flag struct {
	name string
	want bool
}

// NewFlag creates a Flag constraint.
func NewFlag(name string, want bool) (Flag, error) {
	if name == "" {
		return Flag{}, fmt.Errorf("%w: flag name is required", domain.ErrMalformedFilter)
	}
	return Flag{name: name, want: want}, nil
}

// Name returns the constrained flag name.
func (f Flag) Name() string { return f.name }

// Want returns the required flag value.
func (f Flag) Want() bool { return f.want }

func (f Flag) matches(rec *record.Record) bool {
	v, ok := rec.Flag(f.name)
	if !ok {
		// Absence is not false; an unset record flag satisfies nothing.
		return false
	}
	return v == f.want
}

// State is the full set of active facet constraints, combined with
// logical AND. Inactive constraints are vacuously true. State is an
// immutable value object owned by the caller; the engine never mutates
// it.
type State struct {
	ranges        []Range
	tags          []string
	flags         []Flag
	maxDistanceKm *float64
}

// NewState validates and creates a State. tags is a set-membership
// constraint over record tags: empty means no constraint, otherwise a
// record matches when it carries at least one allowed tag.
func NewState(ranges []Range, tags []string, flags []Flag, maxDistanceKm *float64) (State, error) {
	if len(ranges)+len(flags) > MaxConstraints {
		return State{}, fmt.Errorf("%w: too many constraints (max %d)", domain.ErrMalformedFilter, MaxConstraints)
	}
	for _, t := range tags {
		if t == "" {
			return State{}, fmt.Errorf("%w: empty tag in membership constraint", domain.ErrMalformedFilter)
		}
	}
	if maxDistanceKm != nil && (*maxDistanceKm < 0 || math.IsNaN(*maxDistanceKm)) {
		return State{}, fmt.Errorf("%w: max distance must be non-negative", domain.ErrMalformedFilter)
	}
	return State{
		ranges:        cloneRanges(ranges),
		tags:          cloneTags(tags),
		flags:         cloneFlags(flags),
		maxDistanceKm: cloneFloat(maxDistanceKm),
	}, nil
}

// Ranges returns the numeric range constraints.
func (s State) Ranges() []Range { return s.ranges }

// Tags returns the allowed tag set (empty = no constraint).
func (s State) Tags() []string { return s.tags }

// Flags returns the boolean flag constraints.
func (s State) Flags() []Flag { return s.flags }

// MaxDistanceKm returns the distance bound (nil = no constraint).
func (s State) MaxDistanceKm() *float64 { return s.maxDistanceKm }

// IsEmpty reports whether no constraint is active.
func (s State) IsEmpty() bool {
	return len(s.ranges) == 0 && len(s.tags) == 0 && len(s.flags) == 0 && s.maxDistanceKm == nil
}

// WithTag returns a copy of the state with tag added to the allowed set.
// Used by tag-scoped browsing, which reuses the same membership
// evaluator.
func (s State) WithTag(tag string) State {
	out := s
	out.tags = append(cloneTags(s.tags), tag)
	return out
}

// Matches reports whether every active constraint is satisfied by the
// record. distanceKm is the precomputed distance to the reference
// coordinate, nil when either coordinate is absent; a nil distance never
// satisfies an active distance bound. Pure function, evaluation order of
// the constituent constraints is irrelevant.
func (s State) Matches(rec *record.Record, distanceKm *float64) bool {
	for _, r := range s.ranges {
		if !r.matches(rec) {
			return false
		}
	}
	if len(s.tags) > 0 && !hasAnyTag(rec, s.tags) {
		return false
	}
	for _, f := range s.flags {
		if !f.matches(rec) {
			return false
		}
	}
	if s.maxDistanceKm != nil {
		if distanceKm == nil || *distanceKm > *s.maxDistanceKm {
			return false
		}
	}
	return true
}

func hasAnyTag(rec *record.Record, allowed []string) bool {
	for _, t := range allowed {
		if rec.HasTag(t) {
			return true
		}
	}
	return false
}

func cloneRanges(r []Range) []Range {
	if len(r) == 0 {
		return nil
	}
	out := make([]Range, len(r))
	copy(out, r)
	return out
}

func cloneTags(t []string) []string {
	if len(t) == 0 {
		return nil
	}
	out := make([]string, len(t))
	copy(out, t)
	return out
}

func cloneFlags(f []Flag) []Flag {
	if len(f) == 0 {
		return nil
	}
	out := make([]Flag, len(f))
	copy(out, f)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
