// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of intake workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the event store.
	ShardCount int `koanf:"shard_count"`

	// WindowYears is the length of the rolling compliance window.
	WindowYears int `koanf:"window_years"`

	// RequiredHours is the training hours required inside the window.
	RequiredHours float64 `koanf:"required_hours"`

	// MinLiveRatio is the minimum share of live hours over total hours.
	MinLiveRatio float64 `koanf:"min_live_ratio"`

	// AtRiskHorizonYears is how far ahead the at-risk projection looks.
	AtRiskHorizonYears int `koanf:"at_risk_horizon_years"`

	// InvalidEventMode selects how stored malformed events are treated
	// during evaluation: "skip" or "abort".
	InvalidEventMode string `koanf:"invalid_event_mode"`
}

// New creates a Config populated with defaults. The compliance defaults
// mirror the three-days-a-year rule: a 6 year window, 21 required hours,
// and at least a third of them live.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		EventQueueSize:     100_000,
		WorkerCount:        runtime.NumCPU() * 4,
		DedupeSize:         50_000,
		ShardCount:         8,
		WindowYears:        6,
		RequiredHours:      21,
		MinLiveRatio:       1.0 / 3.0,
		AtRiskHorizonYears: 1,
		InvalidEventMode:   "skip",
	}
}
