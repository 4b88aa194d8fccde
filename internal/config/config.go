// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - New(ctx) returns a Config carrying every default.
// - Load(ctx) layers a YAML file and SIFSIM_* environment variables on top.
// - Errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" output.
	LogFormat string `koanf:"log_format"`

	// GameDataPath optionally points at a YAML file overriding the built-in
	// game tables.
	GameDataPath string `koanf:"game_data_path"`

	// TeamPath and SongPath point at the team and song documents.
	TeamPath string `koanf:"team_path"`
	SongPath string `koanf:"song_path"`

	// Trials is the number of playthroughs to simulate.
	Trials int `koanf:"trials"`

	// Accuracy is the chance of a natural Perfect, within [0,1].
	Accuracy float64 `koanf:"accuracy"`

	// ApproachRate is the note speed setting, 1 through 10.
	ApproachRate int `koanf:"approach_rate"`

	// Seed fixes the random generator. Zero leaves the run unseeded.
	Seed int64 `koanf:"seed"`

	// DetailedLog logs every event and skill roll.
	DetailedLog bool `koanf:"detailed_log"`

	// SplitStreams gives each trial its own generator and runs trials on
	// the worker pool.
	SplitStreams bool `koanf:"split_streams"`

	// WorkerCount sets the number of trial workers. Zero uses one per CPU.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory trial job queue.
	QueueSize int `koanf:"queue_size"`

	// TopN is how many best trials the report lists.
	TopN int `koanf:"top_n"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file"`

	// HealMultiplier and MaxComboFeverBonus override the game data constants
	// when positive.
	HealMultiplier     int `koanf:"heal_multiplier"`
	MaxComboFeverBonus int `koanf:"max_combo_fever_bonus"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		TeamPath:     "team.yaml",
		SongPath:     "song.yaml",
		Trials:       1000,
		Accuracy:     0.9,
		ApproachRate: 9,
		WorkerCount:  runtime.NumCPU(),
		QueueSize:    4096,
		TopN:         5,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Trials < 1:
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, c.Trials)
	case !(c.Accuracy >= 0 && c.Accuracy <= 1):
		return fmt.Errorf("%w: accuracy must be within [0,1], got %v", ErrInvalidConfig, c.Accuracy)
	case c.ApproachRate < 1 || c.ApproachRate > 10:
		return fmt.Errorf("%w: approach_rate must be within [1,10], got %d", ErrInvalidConfig, c.ApproachRate)
	case c.TeamPath == "":
		return fmt.Errorf("%w: team_path must not be empty", ErrInvalidConfig)
	case c.SongPath == "":
		return fmt.Errorf("%w: song_path must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.TopN < 0:
		return fmt.Errorf("%w: top_n must not be negative, got %d", ErrInvalidConfig, c.TopN)
	case c.HealMultiplier < 0 || c.MaxComboFeverBonus < 0:
		return fmt.Errorf("%w: game constants must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Seeded reports whether a fixed seed was configured.
func (c *Config) Seeded() bool { return c.Seed != 0 }
