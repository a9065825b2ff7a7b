// Package config loads the antfarm configuration from YAML with environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/antfarm/colony"
)

// ErrInvalid reports a configuration value outside its domain
var ErrInvalid = errors.New("invalid configuration")

// Environment variables applied after the file is read
const (
	EnvSeed     = "ANTFARM_SEED"
	EnvAgents   = "ANTFARM_AGENTS"
	EnvFood     = "ANTFARM_FOOD"
	EnvAddr     = "ANTFARM_ADDR"
	EnvLogLevel = "ANTFARM_LOG_LEVEL"
)

// Config is the complete host configuration
type Config struct {
	Simulation colony.SimulationConfig `yaml:"simulation"`
	Run        RunConfig               `yaml:"run"`
	Render     RenderConfig            `yaml:"render"`
	Server     ServerConfig            `yaml:"server"`
	Audio      AudioConfig             `yaml:"audio"`
	Logging    LoggingConfig           `yaml:"logging"`
}

// RunConfig controls world size, seeding and pacing
type RunConfig struct {
	Seed               uint64        `yaml:"seed"` // 0 derives a seed from the clock
	Width              float64       `yaml:"width"`
	Height             float64       `yaml:"height"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	MaxTicks           uint64        `yaml:"max_ticks"` // Headless limit, 0 runs until done
	PauseWhenDepleted  bool          `yaml:"pause_when_depleted"`
	PauseWhenDelivered bool          `yaml:"pause_when_delivered"` // Pause again once carried food is home
	Autostart          bool          `yaml:"autostart"`
}

// RenderConfig controls the terminal view
type RenderConfig struct {
	FrameInterval  time.Duration `yaml:"frame_interval"`
	ShowPheromones bool          `yaml:"show_pheromones"`
	CellWidth      float64       `yaml:"cell_width"`  // World units per terminal column
	CellHeight     float64       `yaml:"cell_height"` // World units per terminal row
}

// ServerConfig controls the snapshot stream
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	SendBuffer        int           `yaml:"send_buffer"`
	SnapshotDeposits  int           `yaml:"snapshot_deposits"`
	SnapshotTrail     int           `yaml:"snapshot_trail"`  // Trail points per agent in snapshots
	AllowedOrigins    []string      `yaml:"allowed_origins"` // Empty accepts any origin
}

// AudioConfig controls the sound cues
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	Dir    string `yaml:"dir"`    // Debug log directory
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Simulation: colony.DefaultConfig(),
		Run: RunConfig{
			Width:             800,
			Height:            600,
			TickInterval:      time.Second / 60,
			PauseWhenDepleted: true,
			Autostart:         true,
		},
		Render: RenderConfig{
			FrameInterval:  33 * time.Millisecond,
			ShowPheromones: true,
			CellWidth:      4,
			CellHeight:     8,
		},
		Server: ServerConfig{
			Addr:              ":7777",
			BroadcastInterval: 100 * time.Millisecond,
			SendBuffer:        8,
			SnapshotDeposits:  512,
			SnapshotTrail:     12,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Dir:    "logs",
		},
	}
}

// Load reads path over the defaults and applies environment overrides
// A missing file yields the defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSeed, v, err)
		}
		c.Run.Seed = seed
	}
	if v := os.Getenv(EnvAgents); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvAgents, v, err)
		}
		c.Simulation.AgentCount = n
	}
	if v := os.Getenv(EnvFood); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvFood, v, err)
		}
		c.Simulation.FoodCount = n
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate reports the first unusable value
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := (colony.Bounds{Width: c.Run.Width, Height: c.Run.Height}).Validate(); err != nil {
		return err
	}
	if c.Run.TickInterval <= 0 {
		return fmt.Errorf("%w: run.tick_interval %v must be positive", ErrInvalid, c.Run.TickInterval)
	}
	if c.Render.FrameInterval <= 0 {
		return fmt.Errorf("%w: render.frame_interval %v must be positive", ErrInvalid, c.Render.FrameInterval)
	}
	if !(c.Render.CellWidth > 0) || !(c.Render.CellHeight > 0) {
		return fmt.Errorf("%w: render cell size %vx%v must be positive", ErrInvalid, c.Render.CellWidth, c.Render.CellHeight)
	}
	if c.Server.BroadcastInterval < 0 {
		return fmt.Errorf("%w: server.broadcast_interval %v is negative", ErrInvalid, c.Server.BroadcastInterval)
	}
	if c.Server.SendBuffer <= 0 {
		return fmt.Errorf("%w: server.send_buffer %d must be positive", ErrInvalid, c.Server.SendBuffer)
	}
	if c.Server.SnapshotDeposits < 0 {
		return fmt.Errorf("%w: server.snapshot_deposits %d is negative", ErrInvalid, c.Server.SnapshotDeposits)
	}
	if c.Server.SnapshotTrail < 0 {
		return fmt.Errorf("%w: server.snapshot_trail %d is negative", ErrInvalid, c.Server.SnapshotTrail)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume %v outside [0,1]", ErrInvalid, c.Audio.Volume)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: logging.format %q (valid: json, console)", ErrInvalid, c.Logging.Format)
	}
	return nil
}

// ResolveSeed returns the configured seed, or one derived from now when unset
func (c *Config) ResolveSeed(now time.Time) uint64 {
	if c.Run.Seed != 0 {
		return c.Run.Seed
	}
	return uint64(now.UnixNano())
}
