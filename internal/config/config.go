// Package config loads the YAML configuration shared by the local demo and
// the SSH server.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"statbars/internal/stats"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds everything a session needs.
type Config struct {
	LogLevel       string        `yaml:"log_level"`
	FrameRate      int           `yaml:"frame_rate"`       // frames per second of the session loop
	BeginPlayDelay time.Duration `yaml:"begin_play_delay"` // delay before stat setup runs

	SSH  SSHConfig  `yaml:"ssh"`
	Feed FeedConfig `yaml:"feed"`

	// SaveDB is the sqlite file holding saved stat sheets. Empty disables saving.
	SaveDB string `yaml:"save_db"`

	Stats []StatConfig `yaml:"stats"`
	Dummy DummyConfig  `yaml:"dummy"`
}

// SSHConfig configures cmd/server.
type SSHConfig struct {
	Port    int    `yaml:"port"`
	HostKey string `yaml:"host_key"`
}

// FeedConfig configures the websocket bar feed. Empty Addr disables it.
type FeedConfig struct {
	Addr string `yaml:"addr"`
}

// StatConfig is the YAML form of one statistic.
type StatConfig struct {
	Name               string        `yaml:"name"`
	Min                float64       `yaml:"min"`
	Max                float64       `yaml:"max"`
	Current            *float64      `yaml:"current"` // nil starts full
	MinLerpTime        time.Duration `yaml:"min_lerp_time"`
	MaxLerpTime        time.Duration `yaml:"max_lerp_time"`
	HasRegeneration    bool          `yaml:"has_regeneration"`
	RegenValue         float64       `yaml:"regen_value"`
	RegenInterval      time.Duration `yaml:"regen_interval"`
	ReenableRegenDelay time.Duration `yaml:"reenable_regen_delay"`
}

// DummyConfig tunes the training dummy that hits back.
type DummyConfig struct {
	Health         float64       `yaml:"health"`
	AttackInterval time.Duration `yaml:"attack_interval"`
	Damage         int           `yaml:"damage"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		LogLevel:       "info",
		FrameRate:      30,
		BeginPlayDelay: stats.DefaultBeginPlayDelay,
		SSH: SSHConfig{
			Port:    2222,
			HostKey: "server_host_key",
		},
		SaveDB: "",
		Stats:  DefaultStats(),
		Dummy: DummyConfig{
			Health:         200,
			AttackInterval: 3 * time.Second,
			Damage:         12,
		},
	}
}

// DefaultStats returns the four stock bars.
func DefaultStats() []StatConfig {
	zero := 0.0
	return []StatConfig{
		{
			Name: "health", Min: 0, Max: 100,
			MinLerpTime: 500 * time.Millisecond, MaxLerpTime: 1500 * time.Millisecond,
			HasRegeneration: true, RegenValue: 1,
			RegenInterval: 250 * time.Millisecond, ReenableRegenDelay: 2 * time.Second,
		},
		{
			Name: "mana", Min: 0, Max: 80,
			MinLerpTime: 400 * time.Millisecond, MaxLerpTime: time.Second,
			HasRegeneration: true, RegenValue: 0.5,
			RegenInterval: 100 * time.Millisecond, ReenableRegenDelay: time.Second,
		},
		{
			Name: "stamina", Min: 0, Max: 120,
			MinLerpTime: 200 * time.Millisecond, MaxLerpTime: 600 * time.Millisecond,
			HasRegeneration: true, RegenValue: 2,
			RegenInterval: 50 * time.Millisecond, ReenableRegenDelay: 200 * time.Millisecond,
		},
		{
			Name: "experience", Min: 0, Max: 1000, Current: &zero,
			MinLerpTime: 500 * time.Millisecond, MaxLerpTime: 1500 * time.Millisecond,
		},
	}
}

// Load reads a YAML config from path over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and stat names.
func (c Config) Validate() error {
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		return fmt.Errorf("%w: frame_rate %d out of range 1..240", ErrInvalid, c.FrameRate)
	}
	if c.BeginPlayDelay < 0 {
		return fmt.Errorf("%w: negative begin_play_delay", ErrInvalid)
	}
	if c.SSH.Port < 0 || c.SSH.Port > 65535 {
		return fmt.Errorf("%w: ssh port %d", ErrInvalid, c.SSH.Port)
	}
	if len(c.Stats) == 0 {
		return fmt.Errorf("%w: no stats configured", ErrInvalid)
	}
	seen := make(map[stats.Stat]bool, len(c.Stats))
	for i, sc := range c.Stats {
		key, err := stats.ParseStat(sc.Name)
		if err != nil {
			return fmt.Errorf("%w: stats[%d]: %w", ErrInvalid, i, err)
		}
		if seen[key] {
			return fmt.Errorf("%w: stats[%d]: duplicate %s", ErrInvalid, i, key)
		}
		seen[key] = true
		if sc.Min > sc.Max {
			return fmt.Errorf("%w: %s: min %v above max %v", ErrInvalid, key, sc.Min, sc.Max)
		}
		if sc.MinLerpTime < 0 || sc.MaxLerpTime < sc.MinLerpTime {
			return fmt.Errorf("%w: %s: lerp times must satisfy 0 <= min <= max", ErrInvalid, key)
		}
		if sc.HasRegeneration && sc.RegenInterval <= 0 {
			return fmt.Errorf("%w: %s: regeneration needs a positive regen_interval", ErrInvalid, key)
		}
	}
	if c.Dummy.Damage < 0 || c.Dummy.Health <= 0 {
		return fmt.Errorf("%w: dummy health must be positive and damage non-negative", ErrInvalid)
	}
	return nil
}

// Data converts the YAML form into a stats.StatData. Current is clamped
// into [Min, Max] and Displayed starts equal to it.
func (sc StatConfig) Data() (stats.Stat, stats.StatData, error) {
	key, err := stats.ParseStat(sc.Name)
	if err != nil {
		return stats.StatNull, stats.StatData{}, err
	}
	d := stats.NewStatData(sc.Min, sc.Max)
	if sc.Current != nil {
		d.Current = min(max(*sc.Current, sc.Min), sc.Max)
		d.Displayed = d.Current
	}
	d.MinLerpTime = sc.MinLerpTime
	d.MaxLerpTime = sc.MaxLerpTime
	d.HasRegeneration = sc.HasRegeneration
	d.RegenValue = sc.RegenValue
	d.RegenInterval = sc.RegenInterval
	d.ReenableRegenDelay = sc.ReenableRegenDelay
	return key, d, nil
}

// FrameInterval is the wall-clock time between session frames.
func (c Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FrameRate)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
