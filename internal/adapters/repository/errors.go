package repository

import "errors"

// Sentinel kinds for result store errors.
var (
	ErrNotFound          = errors.New("trial not found")
	ErrInvalidLimit      = errors.New("invalid result limit")
	ErrInvalidPercentile = errors.New("percentile must be within [0,100]")
)
