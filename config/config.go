// Package config loads the application settings: built-in defaults, then an
// optional YAML file, then explicit command-line flags.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"inkpad/hal"
	"inkpad/predict"
	"inkpad/surface"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v2"
)

const DefaultTitle = "Letter Recognition"

type Config struct {
	// EndpointURL is where snapshots are POSTed.
	EndpointURL string `yaml:"endpointUrl"`
	// Timeout bounds one prediction request. Zero means none.
	Timeout time.Duration `yaml:"timeout"`
	Canvas  Canvas        `yaml:"canvas"`
	Window  Window        `yaml:"window"`
	Log     Log           `yaml:"log"`
}

type Canvas struct {
	Size int `yaml:"size"`
	// Scale overrides the device pixel ratio. Zero means detect.
	Scale       float64 `yaml:"scale"`
	StrokeWidth float64 `yaml:"strokeWidth"`
	StrokeColor string  `yaml:"strokeColor"`
	Background  string  `yaml:"background"`
}

type Window struct {
	Title string `yaml:"title"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		EndpointURL: predict.DefaultEndpoint,
		Canvas: Canvas{
			Size:        surface.DefaultSize,
			StrokeWidth: surface.DefaultStyle().Width,
			StrokeColor: "black",
			Background:  "white",
		},
		Window: Window{Title: DefaultTitle},
		Log:    Log{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg. Keys missing from data keep their value.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

var ErrInvalid = errors.New("invalid config")

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.EndpointURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpointUrl %q must be an http(s) URL", ErrInvalid, c.EndpointURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalid, c.Timeout)
	}
	if c.Canvas.Size <= 0 {
		return fmt.Errorf("%w: canvas.size %d", ErrInvalid, c.Canvas.Size)
	}
	if c.Canvas.Scale < 0 {
		return fmt.Errorf("%w: negative canvas.scale %g", ErrInvalid, c.Canvas.Scale)
	}
	if c.Canvas.StrokeWidth <= 0 {
		return fmt.Errorf("%w: canvas.strokeWidth %g", ErrInvalid, c.Canvas.StrokeWidth)
	}
	if _, err := c.Style(); err != nil {
		return err
	}
	if _, err := hal.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// Style returns the stroke style described by the canvas section.
func (c Config) Style() (surface.Style, error) {
	stroke, err := ParseColor(c.Canvas.StrokeColor)
	if err != nil {
		return surface.Style{}, fmt.Errorf("%w: canvas.strokeColor: %v", ErrInvalid, err)
	}
	bg, err := ParseColor(c.Canvas.Background)
	if err != nil {
		return surface.Style{}, fmt.Errorf("%w: canvas.background: %v", ErrInvalid, err)
	}
	return surface.Style{Width: c.Canvas.StrokeWidth, Stroke: stroke, Background: bg}, nil
}

// LogConfig returns the host logger settings.
func (c Config) LogConfig() hal.LogConfig {
	return hal.LogConfig{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

// HTTPClient returns the client prediction requests are sent with.
func (c Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}

// ParseColor accepts "#rgb", "#rrggbb" or an SVG color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return color.RGBA{}, fmt.Errorf("bad hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("bad hex color %q", s)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}
