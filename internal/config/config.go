// Package config loads editor settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jwulff/sprite-go/internal/bounds"
	"github.com/jwulff/sprite-go/internal/viewport"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDatabase = "SPRITE_DB"
	EnvPixooIP  = "PIXOO_IP"
	EnvLogLevel = "SPRITE_LOG_LEVEL"
)

// DefaultDatabase is the project database used when none is configured.
const DefaultDatabase = "sprite.db"

// Config is the full editor configuration.
type Config struct {
	Canvas   CanvasConfig   `yaml:"canvas"`
	Viewport ViewportConfig `yaml:"viewport"`
	Playback PlaybackConfig `yaml:"playback"`
	Bounds   BoundsConfig   `yaml:"bounds"`
	Storage  StorageConfig  `yaml:"storage"`
	Pixoo    PixooConfig    `yaml:"pixoo"`
	LogLevel string         `yaml:"log_level"`
}

// CanvasConfig sizes new projects.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ViewportConfig sizes the workspace and bounds zoom.
type ViewportConfig struct {
	WorkspaceWidth  int     `yaml:"workspace_width"`
	WorkspaceHeight int     `yaml:"workspace_height"`
	MinZoom         int     `yaml:"min_zoom"`
	MaxZoom         int     `yaml:"max_zoom"`
	Zoom            int     `yaml:"zoom"`
	WheelFactor     float64 `yaml:"wheel_factor"`
	MinWheelStep    bool    `yaml:"min_wheel_step"`
}

// PlaybackConfig sets player defaults.
type PlaybackConfig struct {
	Speed       float64 `yaml:"speed"`
	Loop        *bool   `yaml:"loop"`
	RefreshRate int     `yaml:"refresh_rate"`
}

// BoundsConfig tunes bounds detection.
type BoundsConfig struct {
	SampleThreshold int `yaml:"sample_threshold"`
	SampleTarget    int `yaml:"sample_target"`
}

// StorageConfig locates the project database. ":memory:" keeps it in memory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// PixooConfig addresses an optional LED display.
type PixooConfig struct {
	IP         string `yaml:"ip"`
	Port       int    `yaml:"port"`
	Brightness int    `yaml:"brightness"`
}

// Default returns a configuration with every field set.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML file, applies defaults and environment overrides. An
// empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = 64
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = 64
	}

	v := &c.Viewport
	if v.WorkspaceWidth <= 0 {
		v.WorkspaceWidth = 512
	}
	if v.WorkspaceHeight <= 0 {
		v.WorkspaceHeight = 512
	}
	if v.MinZoom <= 0 {
		v.MinZoom = 1
	}
	if v.MaxZoom <= 0 {
		v.MaxZoom = 64
	}
	if v.Zoom <= 0 {
		v.Zoom = max(v.MinZoom, min(8, v.MaxZoom))
	}
	if v.WheelFactor <= 0 {
		v.WheelFactor = viewport.DefaultWheelFactor
	}

	if c.Playback.Speed <= 0 {
		c.Playback.Speed = 1
	}
	if c.Playback.Loop == nil {
		loop := true
		c.Playback.Loop = &loop
	}
	if c.Playback.RefreshRate <= 0 {
		c.Playback.RefreshRate = 60
	}

	if c.Bounds.SampleThreshold <= 0 {
		c.Bounds.SampleThreshold = bounds.DefaultSampleThreshold
	}
	if c.Bounds.SampleTarget <= 0 {
		c.Bounds.SampleTarget = bounds.DefaultSampleTarget
	}

	if c.Storage.Path == "" {
		c.Storage.Path = DefaultDatabase
	}

	if c.Pixoo.Port <= 0 {
		c.Pixoo.Port = 80
	}
	if c.Pixoo.Brightness <= 0 {
		c.Pixoo.Brightness = 80
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvPixooIP); v != "" {
		c.Pixoo.IP = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks ranges that defaults cannot repair.
func (c *Config) Validate() error {
	v := c.Viewport
	if v.MaxZoom < v.MinZoom {
		return fmt.Errorf("invalid zoom range [%d,%d]", v.MinZoom, v.MaxZoom)
	}
	if v.Zoom < v.MinZoom || v.Zoom > v.MaxZoom {
		return fmt.Errorf("zoom %d outside [%d,%d]", v.Zoom, v.MinZoom, v.MaxZoom)
	}
	if v.WheelFactor <= 1 {
		return fmt.Errorf("wheel factor must be greater than 1, got %v", v.WheelFactor)
	}
	if c.Pixoo.Brightness > 100 {
		return fmt.Errorf("pixoo brightness must be 0-100, got %d", c.Pixoo.Brightness)
	}
	return nil
}

// Looping reports the playback loop setting.
func (c *Config) Looping() bool {
	return c.Playback.Loop == nil || *c.Playback.Loop
}

// RefreshInterval is the tick period for the configured refresh rate.
func (c *Config) RefreshInterval() time.Duration {
	return time.Second / time.Duration(max(1, c.Playback.RefreshRate))
}

// ViewportFor builds a viewport configuration for a canvas of the given size.
func (c *Config) ViewportFor(canvasW, canvasH int) viewport.Config {
	return viewport.Config{
		CanvasWidth:     canvasW,
		CanvasHeight:    canvasH,
		WorkspaceWidth:  c.Viewport.WorkspaceWidth,
		WorkspaceHeight: c.Viewport.WorkspaceHeight,
		MinZoom:         c.Viewport.MinZoom,
		MaxZoom:         c.Viewport.MaxZoom,
		Zoom:            c.Viewport.Zoom,
		WheelFactor:     c.Viewport.WheelFactor,
		MinWheelStep:    c.Viewport.MinWheelStep,
	}
}

// BoundsOptions returns the detector thresholds.
func (c *Config) BoundsOptions() bounds.Options {
	return bounds.Options{
		SampleThreshold: c.Bounds.SampleThreshold,
		SampleTarget:    c.Bounds.SampleTarget,
	}
}
