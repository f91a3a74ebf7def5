package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned when a loaded configuration fails
// validation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds all engine and demo configuration values.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	World    WorldConfig    `yaml:"world"`
	Vision   VisionConfig   `yaml:"vision"`
	Lighting LightingConfig `yaml:"lighting"`
	Weather  WeatherConfig  `yaml:"weather"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	WindowTitle  string `yaml:"window_title"`
	Resizable    bool   `yaml:"resizable"`
}

type WorldConfig struct {
	TilesFile string   `yaml:"tiles_file"`
	MapFiles  []string `yaml:"map_files"` // one ASCII map per z-level, bottom first
}

// VisionConfig tunes the visibility side of the engine. MaxViewDistance is
// the radius (in tiles, king-move metric) past which nothing classifies
// better than obstructed.
type VisionConfig struct {
	MaxViewDistance int `yaml:"max_view_distance"`
}

// LightingConfig holds the tuned brightness constants. Only the ordering
// bright > lit > low and the monotonic falloff shape are contractual; the
// exact numbers are free to tune.
type LightingConfig struct {
	BrightThreshold float64 `yaml:"bright_threshold"`
	LitThreshold    float64 `yaml:"lit_threshold"`
	LowThreshold    float64 `yaml:"low_threshold"`
	MinUsableLight  float64 `yaml:"min_usable_light"` // sources below this are no-ops
	AmbientDaylight float64 `yaml:"ambient_daylight"` // applied to outdoor tiles
	ArcRayCount     int     `yaml:"arc_ray_count"`    // minimum rays per arc source
}

// WeatherConfig feeds the global sight penalty added to the open-air
// attenuation rate while bad weather is active.
type WeatherConfig struct {
	SightPenalty float64 `yaml:"sight_penalty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig loads and validates configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoadConfig loads configuration or panics. Demo-binary entry points
// use this; the engine itself never panics.
func MustLoadConfig(filename string) *Config {
	cfg, err := LoadConfig(filename)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// Default returns a standalone configuration usable without a config file
// (tests, benchmarks).
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Display.ScreenWidth == 0 {
		c.Display.ScreenWidth = 1200
	}
	if c.Display.ScreenHeight == 0 {
		c.Display.ScreenHeight = 800
	}
	if c.Display.WindowTitle == "" {
		c.Display.WindowTitle = "duskgrid"
	}
	if c.Vision.MaxViewDistance == 0 {
		c.Vision.MaxViewDistance = 60
	}
	if c.Lighting.BrightThreshold == 0 {
		c.Lighting.BrightThreshold = 20
	}
	if c.Lighting.LitThreshold == 0 {
		c.Lighting.LitThreshold = 10
	}
	if c.Lighting.LowThreshold == 0 {
		c.Lighting.LowThreshold = 3.5
	}
	if c.Lighting.MinUsableLight == 0 {
		c.Lighting.MinUsableLight = 0.1
	}
	if c.Lighting.AmbientDaylight == 0 {
		c.Lighting.AmbientDaylight = 25
	}
	if c.Lighting.ArcRayCount == 0 {
		c.Lighting.ArcRayCount = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration invariants the engine relies on.
func (c *Config) Validate() error {
	if c.Vision.MaxViewDistance <= 0 {
		return fmt.Errorf("%w: max_view_distance must be positive, got %d",
			ErrInvalidConfiguration, c.Vision.MaxViewDistance)
	}
	l := c.Lighting
	if !(l.BrightThreshold > l.LitThreshold && l.LitThreshold > l.LowThreshold && l.LowThreshold > 0) {
		return fmt.Errorf("%w: thresholds must satisfy bright > lit > low > 0 (got %v > %v > %v)",
			ErrInvalidConfiguration, l.BrightThreshold, l.LitThreshold, l.LowThreshold)
	}
	if l.MinUsableLight < 0 {
		return fmt.Errorf("%w: min_usable_light must not be negative", ErrInvalidConfiguration)
	}
	if l.ArcRayCount < 2 {
		return fmt.Errorf("%w: arc_ray_count must be at least 2, got %d",
			ErrInvalidConfiguration, l.ArcRayCount)
	}
	if c.Weather.SightPenalty < 0 {
		return fmt.Errorf("%w: weather sight_penalty must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// GetScreenWidth returns the configured window width.
func (c *Config) GetScreenWidth() int { return c.Display.ScreenWidth }

// GetScreenHeight returns the configured window height.
func (c *Config) GetScreenHeight() int { return c.Display.ScreenHeight }

// GetMaxViewDistance returns the vision radius in tiles.
func (c *Config) GetMaxViewDistance() int { return c.Vision.MaxViewDistance }
