// Package config loads spike-jump run configuration from YAML files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"spikejump/internal/scape"
)

// Config contains every setting of a spikejumpctl run.
type Config struct {
	// LaneWidth and LaneHeight are the playfield dimensions in lane units.
	LaneWidth  float64 `json:"lane_width" yaml:"lane_width"`
	LaneHeight float64 `json:"lane_height" yaml:"lane_height"`

	// ObstacleCount is the number of spikes in every batch.
	ObstacleCount int `json:"obstacle_count" yaml:"obstacle_count"`

	// RosterSize is the number of jumpers per session.
	RosterSize int `json:"roster_size" yaml:"roster_size"`

	// MaxTicks caps a session; 0 runs until the roster is empty.
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"`

	Seed int64 `json:"seed" yaml:"seed"`

	// Iterations is how many independent sessions one run executes.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Morphology selects the sensor profile of constructed policies.
	Morphology string `json:"morphology" yaml:"morphology"`

	// HiddenNeurons is the hidden layer width of constructed policies.
	HiddenNeurons int `json:"hidden_neurons" yaml:"hidden_neurons"`

	Store   StoreConfig   `json:"store" yaml:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Kind is "memory" or "sqlite".
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type LoggingConfig struct {
	// Level is one of error, warn, info, debug or trace.
	Level string `json:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LaneWidth:     scape.DefaultLaneWidth,
		LaneHeight:    scape.DefaultLaneHeight,
		ObstacleCount: scape.DefaultObstacleCount,
		RosterSize:    8,
		MaxTicks:      5000,
		Seed:          1,
		Iterations:    1,
		Morphology:    "default",
		HiddenNeurons: 3,
		Store: StoreConfig{
			Kind: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration in order: defaults, then path (when set),
// then environment variables.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	config.Store.Path = os.Expand(config.Store.Path, os.Getenv)
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.SpikeJump().Validate(c.RosterSize); err != nil {
		return err
	}
	if c.RosterSize <= 0 {
		return fmt.Errorf("%w: roster_size must be > 0, got %d", scape.ErrInvalidConfiguration, c.RosterSize)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be > 0, got %d", c.Iterations)
	}
	if c.HiddenNeurons < 0 {
		return fmt.Errorf("hidden_neurons must be >= 0, got %d", c.HiddenNeurons)
	}

	switch c.Store.Kind {
	case "", "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid store kind: %s (valid: memory, sqlite)", c.Store.Kind)
	}

	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace)", c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}
	return nil
}

// SpikeJump converts the run settings into one session configuration.
func (c *Config) SpikeJump() scape.SpikeJumpConfig {
	return scape.SpikeJumpConfig{
		LaneWidth:     c.LaneWidth,
		LaneHeight:    c.LaneHeight,
		ObstacleCount: c.ObstacleCount,
		RosterSize:    c.RosterSize,
		MaxTicks:      c.MaxTicks,
		Seed:          c.Seed,
	}
}

// applyEnvOverrides applies SPIKEJUMP_* variables. Values that do not parse
// are collected and returned together rather than skipped.
func applyEnvOverrides(config *Config) error {
	var errs []error
	envFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				return
			}
			*dst = f
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}

	envFloat("SPIKEJUMP_LANE_WIDTH", &config.LaneWidth)
	envFloat("SPIKEJUMP_LANE_HEIGHT", &config.LaneHeight)
	envInt("SPIKEJUMP_OBSTACLE_COUNT", &config.ObstacleCount)
	envInt("SPIKEJUMP_ROSTER_SIZE", &config.RosterSize)
	envInt("SPIKEJUMP_MAX_TICKS", &config.MaxTicks)
	if v := os.Getenv("SPIKEJUMP_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SPIKEJUMP_SEED=%q: %w", v, err))
		} else {
			config.Seed = n
		}
	}
	if v := os.Getenv("SPIKEJUMP_STORE"); v != "" {
		config.Store.Kind = v
	}
	if v := os.Getenv("SPIKEJUMP_STORE_PATH"); v != "" {
		config.Store.Path = v
	}
	if v := os.Getenv("SPIKEJUMP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	return errors.Join(errs...)
}
