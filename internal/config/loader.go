package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/verdello/traintrack/internal/domain/compliance"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRAINTRACK_CONFIG is set
//  3. env (prefix TRAINTRACK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRAINTRACK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRAINTRACK_ADDR, TRAINTRACK_QUEUE_SIZE, ...
	// Map env keys like TRAINTRACK_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TRAINTRACK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "traintrack_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := c.EventMode(); err != nil {
		return err
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Policy assembles the compliance policy from configured values.
func (c *Config) Policy() compliance.Policy {
	return compliance.Policy{
		WindowYears:        c.WindowYears,
		RequiredHours:      c.RequiredHours,
		MinLiveRatio:       c.MinLiveRatio,
		AtRiskHorizonYears: c.AtRiskHorizonYears,
	}
}

// EventMode resolves the configured invalid event handling mode.
func (c *Config) EventMode() (compliance.InvalidEventMode, error) {
	switch strings.ToLower(c.InvalidEventMode) {
	case "", "skip":
		return compliance.SkipInvalid, nil
	case "abort":
		return compliance.AbortOnInvalid, nil
	default:
		return compliance.SkipInvalid, fmt.Errorf("%w: unknown invalid_event_mode %q", ErrInvalidConfig, c.InvalidEventMode)
	}
}
