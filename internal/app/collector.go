package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/adapters/repository"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/simulation"
)

// collector records worker results into the store and keeps them in trial
// order for the summary.
type collector struct {
	store repository.Store

	mu   sync.Mutex
	byID []simulation.TrialResult
	seen []bool
}

func newCollector(store repository.Store, trials int) *collector {
	return &collector{
		store: store,
		byID:  make([]simulation.TrialResult, trials),
		seen:  make([]bool, trials),
	}
}

// Record implements worker.Recorder.
func (c *collector) Record(ctx context.Context, res simulation.TrialResult) error {
	if res.Index < 0 || res.Index >= len(c.byID) {
		return fmt.Errorf("trial %d out of range", res.Index)
	}
	if err := c.store.Record(ctx, res); err != nil {
		return err
	}
	c.mu.Lock()
	c.byID[res.Index] = res
	c.seen[res.Index] = true
	c.mu.Unlock()
	return nil
}

// results returns every trial in index order, failing if any is missing.
func (c *collector) results() ([]simulation.TrialResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ok := range c.seen {
		if !ok {
			return nil, fmt.Errorf("trial %d was not recorded", i)
		}
	}
	return c.byID, nil
}
