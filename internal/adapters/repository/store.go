// Package repository keeps finished trials ranked by score.
package repository

import (
	"context"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/simulation"
)

// Entry is one ranked trial.
type Entry struct {
	Rank         int
	Trial        int
	Score        int
	PerfectRatio float64
	LockUptime   float64
}

// Store provides read/write access to the ranked trials.
type Store interface {
	// Record stores a finished trial. Recording the same trial index again
	// replaces the earlier result.
	Record(ctx context.Context, res simulation.TrialResult) error

	// Rank returns the position of a trial, 1 being the best score.
	// Returns ErrNotFound if the trial is unknown.
	Rank(ctx context.Context, trial int) (Entry, error)

	// TopN returns the best n trials ordered by score desc, trial asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Percentile returns the nearest-rank trial at percentile p in [0,100]:
	// p percent of trials score at or below it.
	Percentile(ctx context.Context, p float64) (Entry, error)

	// Count returns the number of trials stored.
	Count(ctx context.Context) int
}
