// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/clipedit/pkg/preview"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid")

// Config represents the full configuration for clipedit.
type Config struct {
	// Server
	Listen     string `yaml:"listen"`
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Preview
	Preview PreviewConfig `yaml:"preview"`

	// Stream
	StreamQuality  int `yaml:"stream_quality"`
	StreamBuffer   int `yaml:"stream_buffer"`
	StreamMaxWidth int `yaml:"stream_max_width"`

	// Clips added before the server starts accepting requests
	Clips []ClipConfig `yaml:"clips"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Debug
	Debug              bool   `yaml:"debug"`
	DebugDir           string `yaml:"debug_dir"`
	DebugFrameInterval int    `yaml:"debug_frame_interval"`
}

// PreviewConfig represents the preview sink geometry.
type PreviewConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
}

// ClipConfig places one media file on the timeline.
type ClipConfig struct {
	Path     string        `yaml:"path"`
	Layer    uint32        `yaml:"layer"`
	Start    time.Duration `yaml:"start"`
	Duration time.Duration `yaml:"duration"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	opts := preview.DefaultOptions()
	return Config{
		Listen: "127.0.0.1:8080",

		Preview: PreviewConfig{
			Width:  opts.Width,
			Height: opts.Height,
			FPS:    opts.FrameRate,
		},

		StreamQuality: 80,
		StreamBuffer:  1,

		LogLevel:  "info",
		LogFormat: "console",

		DebugDir:           "./debug",
		DebugFrameInterval: 30,
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
// Durations accept Go syntax such as "1.5s" or "250ms".
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Preview.Width <= 0 || c.Preview.Height <= 0:
		return fmt.Errorf("%w: preview size %dx%d", ErrInvalid, c.Preview.Width, c.Preview.Height)
	case c.Preview.FPS <= 0 || c.Preview.FPS > 120:
		return fmt.Errorf("%w: preview fps %g", ErrInvalid, c.Preview.FPS)
	case c.StreamQuality < 1 || c.StreamQuality > 100:
		return fmt.Errorf("%w: stream quality %d", ErrInvalid, c.StreamQuality)
	case c.StreamBuffer < 1:
		return fmt.Errorf("%w: stream buffer %d", ErrInvalid, c.StreamBuffer)
	case c.StreamMaxWidth < 0:
		return fmt.Errorf("%w: stream max width %d", ErrInvalid, c.StreamMaxWidth)
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	case c.DebugFrameInterval < 0:
		return fmt.Errorf("%w: debug frame interval %d", ErrInvalid, c.DebugFrameInterval)
	}
	for i, clip := range c.Clips {
		if clip.Path == "" {
			return fmt.Errorf("%w: clip %d has no path", ErrInvalid, i)
		}
	}
	return nil
}

// PreviewOptions converts the preview section to preview.Options.
func (c Config) PreviewOptions() preview.Options {
	return preview.Options{
		Width:     c.Preview.Width,
		Height:    c.Preview.Height,
		FrameRate: c.Preview.FPS,
	}
}
