// Package service runs batches of trials for one play and aggregates them
// into a report.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/adapters/mq/queue"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/adapters/mq/worker"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/adapters/repository"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/simulation"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/metrics"
)

// enqueueRetry is how long the producer waits when the job queue is full.
const enqueueRetry = time.Millisecond

// Percentile is one score percentile of a run.
type Percentile struct {
	P     float64
	Entry repository.Entry
}

// Report is the outcome of one Run.
type Report struct {
	RunID        string
	Seed         int64
	SplitStreams bool
	Summary      simulation.Summary
	Top          []repository.Entry
	Percentiles  []Percentile
	Elapsed      time.Duration
}

// Fields renders the report headline for structured logs.
func (r *Report) Fields() []logger.Field {
	fields := []logger.Field{
		logger.String("run_id", r.RunID),
		logger.Any("seed", r.Seed),
		logger.Bool("split_streams", r.SplitStreams),
		logger.Duration("elapsed", r.Elapsed),
	}
	return append(fields, r.Summary.Fields()...)
}

// String renders the report for a terminal.
func (r *Report) String() string {
	out := fmt.Sprintf("run %s (seed %d)\n", r.RunID, r.Seed)
	out += fmt.Sprintf("trials: %s  mean: %s  max: %s  min: %s  std dev: %.2f\n",
		humanize.Comma(int64(r.Summary.Trials)),
		humanize.Comma(int64(math.Round(r.Summary.Mean))),
		humanize.Comma(int64(r.Summary.Max)),
		humanize.Comma(int64(r.Summary.Min)),
		r.Summary.StdDev,
	)
	out += fmt.Sprintf("perfect lock uptime: %.2fs (%.2f%%)  perfect ratio: %.4f\n",
		r.Summary.AvgLockUptime, r.Summary.AvgUptimePercent, r.Summary.AvgPerfectRatio)
	for _, p := range r.Percentiles {
		out += fmt.Sprintf("p%g: %s\n", p.P, humanize.Comma(int64(p.Entry.Score)))
	}
	for _, e := range r.Top {
		out += fmt.Sprintf("#%d trial %d: %s\n", e.Rank, e.Trial+1, humanize.Comma(int64(e.Score)))
	}
	return out
}

// Service runs trials for a single play.
type Service struct {
	mu sync.RWMutex

	play  *simulation.Play
	store repository.Store

	trials       int
	workerCount  int
	queueSize    int
	topN         int
	percentiles  []float64
	splitStreams bool

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(play *simulation.Play, opts ...Option) *Service {
	s := &Service{
		play:        play,
		trials:      1000,
		workerCount: runtime.NumCPU(),
		queueSize:   4096,
		topN:        5,
		percentiles: []float64{10, 50, 90},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the result store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil {
		return ErrNilPlay
	}
	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.store = repository.NewTreapStore()
	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.Int("trials", s.trials),
		logger.Bool("split_streams", s.splitStreams),
		logger.Int("workers", s.workerCount),
	)
	return nil
}

// Stop releases the result store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.store = nil
	s.started = false
	s.logger.Info(context.Background(), "simulation service stopped")
}

// Run simulates the configured number of trials and reports on them. Each
// Run replaces the results of the previous one.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	start := time.Now()
	report := &Report{
		RunID:        uuid.NewString(),
		Seed:         s.play.Seed(),
		SplitStreams: s.splitStreams,
	}
	s.store = repository.NewTreapStore()
	var (
		results []simulation.TrialResult
		err     error
	)
	if s.splitStreams {
		results, err = s.runSplit(ctx)
	} else {
		results, err = s.runShared(ctx)
	}
	if err != nil {
		metrics.RecordErrorByComponent("service", "run")
		return nil, err
	}

	report.Summary = simulation.Summarize(results, s.play.Song().Length)
	if s.topN > 0 {
		if report.Top, err = s.store.TopN(ctx, s.topN); err != nil {
			return nil, fmt.Errorf("top trials: %w", err)
		}
	}
	for _, p := range s.percentiles {
		entry, err := s.store.Percentile(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("percentile %g: %w", p, err)
		}
		report.Percentiles = append(report.Percentiles, Percentile{P: p, Entry: entry})
	}
	report.Elapsed = time.Since(start)

	s.logger.Info(ctx, "simulation finished", report.Fields()...)
	return report, nil
}

// runShared draws every trial from the play's own generator in order.
func (s *Service) runShared(ctx context.Context) ([]simulation.TrialResult, error) {
	results, err := s.play.SimulateDetailed(ctx, s.trials)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if err := s.store.Record(ctx, res); err != nil {
			return nil, fmt.Errorf("record trial %d: %w", res.Index, err)
		}
	}
	return results, nil
}

// runSplit fans trials out to the worker pool, each on a generator seeded
// from the play seed and the trial index.
func (s *Service) runSplit(ctx context.Context) ([]simulation.TrialResult, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	rec := newCollector(s.store, s.trials)
	pool := worker.NewPool(s.workerCount, q, s.play, rec, worker.WithLogger(s.logger))
	pool.Start(ctx)

	seed := s.play.Seed()
	for i := 0; i < s.trials; i++ {
		job := queue.Job{Index: i, Seed: simulation.TrialSeed(seed, i)}
		if err := enqueue(ctx, q, job); err != nil {
			_ = pool.Shutdown(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("enqueue trial %d: %w", i, err)
		}
	}
	_ = q.Close()

	if err := pool.Wait(ctx); err != nil {
		return nil, err
	}
	return rec.results()
}

// enqueue retries while the queue is full.
func enqueue(ctx context.Context, q *queue.InMemoryQueue, job queue.Job) error {
	for {
		err := q.Enqueue(ctx, job)
		if !errors.Is(err, queue.ErrFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(enqueueRetry):
		}
	}
}

// TopN returns the best n trials of the last run.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.TopN(ctx, n)
}

// Rank returns the position of a trial of the last run.
func (s *Service) Rank(ctx context.Context, trial int) (repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Entry{}, ErrNotStarted
	}
	return s.store.Rank(ctx, trial)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"trials":       s.trials,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"splitStreams": s.splitStreams,
	}
	if s.started {
		stats["recorded"] = s.store.Count(context.Background())
	}
	return stats
}
