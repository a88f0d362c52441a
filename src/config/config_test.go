package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10.0, cfg.ShadowThreshold)
	assert.Equal(t, 0.05, cfg.BackgroundAlpha)
	assert.Equal(t, 10, cfg.StackBlurRadius)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.False(t, cfg.Display.ShowRaw)
	assert.True(t, cfg.Display.ShowShadow)
	assert.Equal(t, "synthetic", cfg.Input.Source)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadow.yaml")
	data := `
shadow_threshold: 25
interval: 40ms
display:
  show_raw: true
input:
  source: images
  dir: /tmp/frames
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.ShadowThreshold)
	assert.Equal(t, 40*time.Millisecond, cfg.Interval)
	assert.True(t, cfg.Display.ShowRaw)
	assert.True(t, cfg.Display.ShowShadow, "missing keys keep their default")
	assert.Equal(t, 0.05, cfg.BackgroundAlpha)
	assert.Equal(t, "/tmp/frames", cfg.Input.Dir)
	assert.True(t, cfg.Input.Mirror)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("width: [1, 2"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("background_alpha: 1.5"), 0o644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "background_alpha")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{"negative threshold", func(c *Config) { c.ShadowThreshold = -1 }, "shadow_threshold"},
		{"alpha above one", func(c *Config) { c.BackgroundAlpha = 1.01 }, "background_alpha"},
		{"negative alpha", func(c *Config) { c.BackgroundAlpha = -0.1 }, "background_alpha"},
		{"negative radius", func(c *Config) { c.StackBlurRadius = -2 }, "stack_blur_radius"},
		{"radius too large", func(c *Config) { c.StackBlurRadius = 255 }, "stack_blur_radius"},
		{"zero width", func(c *Config) { c.Width = 0 }, "width and height"},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }, "interval"},
		{"negative max steps", func(c *Config) { c.MaxSteps = -1 }, "max_steps"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"unknown source", func(c *Config) { c.Input.Source = "kinect" }, "unknown input.source"},
		{"images without dir", func(c *Config) { c.Input.Source = "images" }, "input.dir"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	edges := Default()
	edges.BackgroundAlpha = 0
	edges.StackBlurRadius = 0
	edges.ShadowThreshold = 0
	assert.NoError(t, edges.Validate())
	edges.BackgroundAlpha = 1
	assert.NoError(t, edges.Validate())
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.AutoCapture = true
	cfg.MaxSteps = 7
	cfg.Workers = 4

	o := cfg.UniverseOptions()
	assert.Equal(t, cfg.Width, o.Width)
	assert.Equal(t, cfg.ShadowThreshold, o.Threshold)
	assert.Equal(t, cfg.BackgroundAlpha, o.Alpha)
	assert.Equal(t, cfg.StackBlurRadius, o.BlurRadius)
	assert.Equal(t, 7, o.MaxSteps)
	assert.True(t, o.AutoCapture)
	assert.Equal(t, 4, o.Workers)
	assert.Equal(t, "synthetic", o.Advanced["Source"])

	p := cfg.SourceParams()
	assert.Equal(t, cfg.Height, p.Height)
	assert.Equal(t, int64(1), p.Seed)
	assert.True(t, p.Mirror)
}
