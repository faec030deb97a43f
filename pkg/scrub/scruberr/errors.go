package scruberr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownRule      = errors.New("unknown rule")
	ErrStatsUnavailable = errors.New("corpus statistics unavailable")
	ErrMalformedRecord  = errors.New("malformed record")
)
