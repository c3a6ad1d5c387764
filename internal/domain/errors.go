package domain

import "errors"

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRecord signals a record that fails construction validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrDataUnavailable signals that the candidate provider failed.
	// It is surfaced to the caller and never retried internally.
	ErrDataUnavailable = errors.New("candidate data unavailable")
	// ErrInvalidRankMode signals a rank mode misconfiguration by the caller,
	// such as distance ranking without a reference coordinate.
	ErrInvalidRankMode = errors.New("invalid rank mode configuration")
	// ErrMalformedFilter signals a filter constraint that cannot be evaluated,
	// such as a range whose min exceeds its max. Rejected before any record
	// is looked at so a caller bug never masquerades as an empty result.
	ErrMalformedFilter = errors.New("malformed filter state")
)
