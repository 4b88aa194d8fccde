package service

import "github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTrials sets the number of trials each Run simulates.
func WithTrials(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trials = n
		}
	}
}

// WithWorkerCount sets the number of worker goroutines in split-stream mode.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithTopN sets how many best trials a report lists.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.topN = n
		}
	}
}

// WithPercentiles sets the score percentiles a report lists.
func WithPercentiles(ps ...float64) Option {
	return func(s *Service) {
		s.percentiles = ps
	}
}

// WithSplitStreams runs each trial on its own generator across the worker
// pool instead of sharing one generator sequentially.
func WithSplitStreams(enabled bool) Option {
	return func(s *Service) {
		s.splitStreams = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
