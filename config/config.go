// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Screen    ScreenConfig    `yaml:"screen"`
	Run       RunConfig       `yaml:"run"`
	Spawns    []SpawnConfig   `yaml:"spawns"`
	Quirks    QuirksConfig    `yaml:"quirks"`
	Message   MessageConfig   `yaml:"message"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the render grid dimensions.
type WorldConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	TargetFPS int `yaml:"target_fps"`
}

// RunConfig holds the driver's per-run parameters.
type RunConfig struct {
	MaxTicks int     `yaml:"max_ticks"` // 0 = unlimited
	ForceX   float64 `yaml:"force_x"`   // Uniform force applied every tick
	ForceY   float64 `yaml:"force_y"`
	KickMin  float64 `yaml:"kick_min"` // Random force applied once after the first frame
	KickMax  float64 `yaml:"kick_max"`
	Seed     int64   `yaml:"seed"` // 0 = time-based
}

// SpawnConfig places Count identical particles at (X, Y).
// A negative X is measured from the right edge (cols + X).
type SpawnConfig struct {
	Count int     `yaml:"count"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Value int     `yaml:"value"`
}

// QuirksConfig toggles behaviors inherited from the first version of the
// simulator. Both default to on so runs reproduce its output.
type QuirksConfig struct {
	DoubleStepY         bool `yaml:"double_step_y"`         // Extra y += vy after the y-axis branch
	MirroredRandomForce bool `yaml:"mirrored_random_force"` // Random force uses cos for both axes
}

// MessageConfig holds decoded-message settings.
type MessageConfig struct {
	FakeText string `yaml:"fake_text"` // Written instead of decoded characters when non-empty
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulated time per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT            float64       // Seconds per tick (1 / target_fps)
	FrameDuration time.Duration // Wall-clock budget per frame
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns the embedded default configuration with derived values.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Rows <= 0 || c.World.Cols <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Rows, c.World.Cols)
	}
	if c.Screen.TargetFPS <= 0 {
		return fmt.Errorf("screen.target_fps must be positive, got %d", c.Screen.TargetFPS)
	}
	if c.Run.KickMax < c.Run.KickMin {
		return fmt.Errorf("run.kick_max (%v) is below run.kick_min (%v)", c.Run.KickMax, c.Run.KickMin)
	}
	for i, s := range c.Spawns {
		if s.Count < 0 {
			return fmt.Errorf("spawns[%d].count must not be negative, got %d", i, s.Count)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	fps := c.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	c.Derived.DT = 1.0 / float64(fps)
	c.Derived.FrameDuration = time.Second / time.Duration(fps)
}

// SpawnX resolves a spawn's x coordinate against the grid width.
func (c *Config) SpawnX(s SpawnConfig) float64 {
	if s.X < 0 {
		return float64(c.World.Cols) + s.X
	}
	return s.X
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
