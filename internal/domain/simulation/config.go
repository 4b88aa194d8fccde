package simulation

import "fmt"

// Approach rate bounds.
const (
	MinApproachRate = 1
	MaxApproachRate = 10
)

// PlayConfig holds the per-play settings. Build it with NewPlayConfig.
type PlayConfig struct {
	Accuracy          float64
	ApproachRate      int
	Seed              *int64
	EnableDetailedLog bool
}

// ConfigOption applies an optional setting to a PlayConfig.
type ConfigOption func(*PlayConfig)

// WithSeed fixes the random generator seed so runs are reproducible.
func WithSeed(seed int64) ConfigOption {
	return func(c *PlayConfig) {
		c.Seed = &seed
	}
}

// WithDetailedLog turns on per-event and per-skill logging.
func WithDetailedLog(enabled bool) ConfigOption {
	return func(c *PlayConfig) {
		c.EnableDetailedLog = enabled
	}
}

// NewPlayConfig validates accuracy and approach rate and applies opts.
func NewPlayConfig(accuracy float64, approachRate int, opts ...ConfigOption) (PlayConfig, error) {
	c := PlayConfig{Accuracy: accuracy, ApproachRate: approachRate}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return PlayConfig{}, err
	}
	return c, nil
}

// Validate reports whether the config is usable.
func (c PlayConfig) Validate() error {
	if !(c.Accuracy >= 0 && c.Accuracy <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidAccuracy, c.Accuracy)
	}
	if c.ApproachRate < MinApproachRate || c.ApproachRate > MaxApproachRate {
		return fmt.Errorf("%w: got %d", ErrInvalidApproachRate, c.ApproachRate)
	}
	return nil
}
