package simulation

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrInvalidAccuracy     = errors.New("accuracy must be within [0, 1]")
	ErrInvalidApproachRate = errors.New("approach rate must be within [1, 10]")
	ErrInvalidTrials       = errors.New("trial count must not be negative")
	ErrNilTeam             = errors.New("team is required")
	ErrNilSong             = errors.New("song is required")
)
