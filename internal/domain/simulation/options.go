package simulation

import "github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"

// Option applies a configuration option to a Play.
type Option func(*Play)

// WithLogger sets the logger used for summaries and, when the config enables
// it, the detailed event log.
func WithLogger(l logger.Logger) Option {
	return func(p *Play) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics toggles Prometheus recording of trial outcomes.
func WithMetrics(enabled bool) Option {
	return func(p *Play) {
		p.recordMetrics = enabled
	}
}
