package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"spikejump/internal/scape"
)

func TestDefault(t *testing.T) {
	config := Default()
	if config.LaneWidth != 1500 || config.LaneHeight != 300 {
		t.Fatalf("unexpected lane: %fx%f", config.LaneWidth, config.LaneHeight)
	}
	if config.ObstacleCount != 5 || config.RosterSize != 8 || config.Iterations != 1 {
		t.Fatalf("unexpected counts: %+v", config)
	}
	if config.Store.Kind != "memory" || config.Logging.Level != "info" {
		t.Fatalf("unexpected ambient defaults: %+v", config)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("SPIKEJUMP_TEST_DIR", "/var/lib/spikejump")
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
lane_width: 750
obstacle_count: 3
roster_size: 4
max_ticks: 100
seed: 42
iterations: 2
store:
  kind: sqlite
  path: ${SPIKEJUMP_TEST_DIR}/runs.db
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.LaneWidth != 750 || config.LaneHeight != 300 {
		t.Fatalf("expected file width and default height, got %fx%f", config.LaneWidth, config.LaneHeight)
	}
	if config.ObstacleCount != 3 || config.RosterSize != 4 || config.MaxTicks != 100 || config.Seed != 42 || config.Iterations != 2 {
		t.Fatalf("unexpected file values: %+v", config)
	}
	if config.Store.Kind != "sqlite" || config.Store.Path != "/var/lib/spikejump/runs.db" {
		t.Fatalf("unexpected store config: %+v", config.Store)
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "text" {
		t.Fatalf("unexpected logging config: %+v", config.Logging)
	}

	sj := config.SpikeJump()
	if sj.LaneWidth != 750 || sj.ObstacleCount != 3 || sj.RosterSize != 4 || sj.MaxTicks != 100 || sj.Seed != 42 {
		t.Fatalf("unexpected session config: %+v", sj)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("lane_width: [1, 2"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(bad); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SPIKEJUMP_OBSTACLE_COUNT", "9")
	t.Setenv("SPIKEJUMP_ROSTER_SIZE", "2")
	t.Setenv("SPIKEJUMP_SEED", "7")
	t.Setenv("SPIKEJUMP_LANE_WIDTH", "750.5")
	t.Setenv("SPIKEJUMP_LOG_LEVEL", "trace")

	config, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.ObstacleCount != 9 || config.RosterSize != 2 || config.Seed != 7 || config.LaneWidth != 750.5 {
		t.Fatalf("env overrides not applied: %+v", config)
	}
	if config.Logging.Level != "trace" {
		t.Fatalf("unexpected log level: %s", config.Logging.Level)
	}
}

func TestLoadRejectsMalformedEnvOverrides(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{key: "SPIKEJUMP_OBSTACLE_COUNT", value: "abc"},
		{key: "SPIKEJUMP_MAX_TICKS", value: "not-a-number"},
		{key: "SPIKEJUMP_LANE_HEIGHT", value: "tall"},
		{key: "SPIKEJUMP_SEED", value: "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load("")
			if err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.key) || !errors.Is(err, strconv.ErrSyntax) {
				t.Fatalf("expected a syntax error naming %s, got %v", tc.key, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "obstacles", mutate: func(c *Config) { c.ObstacleCount = 0 }, want: "obstacle count"},
		{name: "lane", mutate: func(c *Config) { c.LaneHeight = 0 }, want: "lane dimensions"},
		{name: "roster", mutate: func(c *Config) { c.RosterSize = 0 }, want: "roster_size"},
		{name: "iterations", mutate: func(c *Config) { c.Iterations = 0 }, want: "iterations"},
		{name: "hidden", mutate: func(c *Config) { c.HiddenNeurons = -1 }, want: "hidden_neurons"},
		{name: "store kind", mutate: func(c *Config) { c.Store.Kind = "redis" }, want: "store kind"},
		{name: "store path", mutate: func(c *Config) { c.Store.Kind = "sqlite" }, want: "store.path"},
		{name: "level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, want: "log level"},
		{name: "format", mutate: func(c *Config) { c.Logging.Format = "xml" }, want: "log format"},
	}
	for _, tc := range cases {
		config := Default()
		tc.mutate(config)
		err := config.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}

	config := Default()
	config.ObstacleCount = -1
	if err := config.Validate(); !errors.Is(err, scape.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
