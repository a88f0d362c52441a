//Package config loads the shadow simulation settings from YAML
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shadowlife/src/background"
	"shadowlife/src/filter"
	"shadowlife/src/source"
	"shadowlife/src/universe"
)

//Config is the complete configuration
type Config struct {
	ShadowThreshold float64       `yaml:"shadow_threshold"`  // grayscale distance marking foreground
	BackgroundAlpha float64       `yaml:"background_alpha"`  // background adaptation rate, 0..1
	StackBlurRadius int           `yaml:"stack_blur_radius"` // noise filter radius, 0 disables it
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	Interval        time.Duration `yaml:"interval"`  // pause between ticks
	MaxSteps        int           `yaml:"max_steps"` // 0 = unlimited
	AutoCapture     bool          `yaml:"auto_capture"`
	Workers         int           `yaml:"workers"` // goroutines per generation step
	Display         DisplayConfig `yaml:"display"`
	Input           InputConfig   `yaml:"input"`
	LogLevel        string        `yaml:"log_level"` // debug, info, warn, error
}

//DisplayConfig holds the view toggles, the engine ignores them
type DisplayConfig struct {
	ShowRaw    bool `yaml:"show_raw"`
	ShowShadow bool `yaml:"show_shadow"`
}

//InputConfig selects the frame source
type InputConfig struct {
	Source string `yaml:"source"` // synthetic, images
	Dir    string `yaml:"dir"`
	Mirror bool   `yaml:"mirror"`
	Seed   int64  `yaml:"seed"`
}

//Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ShadowThreshold: background.DefThreshold,
		BackgroundAlpha: background.DefAlpha,
		StackBlurRadius: universe.DefBlurRadius,
		Width:           universe.DefWidth,
		Height:          universe.DefHeight,
		Interval:        universe.DefSimulationInterval,
		MaxSteps:        universe.DefMaxSteps,
		Workers:         universe.DefWorkers,
		Display:         DisplayConfig{ShowRaw: false, ShowShadow: true},
		Input:           InputConfig{Source: source.NameSynthetic, Mirror: true, Seed: 1},
		LogLevel:        "info",
	}
}

//Load reads a YAML file on top of the defaults
//keys missing from the file keep their default value
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

//Validate checks every value range
func (c *Config) Validate() error {
	if c.ShadowThreshold < 0 {
		return fmt.Errorf("shadow_threshold must be non-negative, got %v", c.ShadowThreshold)
	}
	if c.BackgroundAlpha < 0 || c.BackgroundAlpha > 1 {
		return fmt.Errorf("background_alpha must be in [0, 1], got %v", c.BackgroundAlpha)
	}
	if c.StackBlurRadius < 0 || c.StackBlurRadius > filter.MaxRadius {
		return fmt.Errorf("stack_blur_radius must be in [0, %d], got %d", filter.MaxRadius, c.StackBlurRadius)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be non-negative, got %v", c.Interval)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", c.MaxSteps)
	}
	switch c.Input.Source {
	case source.NameSynthetic:
	case source.NameImages:
		if c.Input.Dir == "" {
			return fmt.Errorf("input.dir is required for the %s source", source.NameImages)
		}
	default:
		return fmt.Errorf("unknown input.source %q (want %s)", c.Input.Source, strings.Join(source.Names(), "|"))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

//Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

//UniverseOptions converts the config to engine options
func (c *Config) UniverseOptions() *universe.Options {
	return &universe.Options{
		Width:       c.Width,
		Height:      c.Height,
		Interval:    c.Interval,
		MaxSteps:    c.MaxSteps,
		Threshold:   c.ShadowThreshold,
		Alpha:       c.BackgroundAlpha,
		BlurRadius:  c.StackBlurRadius,
		AutoCapture: c.AutoCapture,
		Workers:     c.Workers,
		Advanced: map[string]interface{}{
			"Source": c.Input.Source,
			"Mirror": c.Input.Mirror,
		},
	}
}

//SourceParams converts the input section to source parameters
func (c *Config) SourceParams() source.Params {
	return source.Params{
		Width:  c.Width,
		Height: c.Height,
		Dir:    c.Input.Dir,
		Seed:   c.Input.Seed,
		Mirror: c.Input.Mirror,
	}
}
