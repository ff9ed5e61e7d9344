// Package config handles painter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Config errors.
var (
	ErrInvalidColor  = errors.New("invalid colour")
	ErrInvalidFormat = errors.New("invalid export format")
	ErrInvalidWindow = errors.New("invalid window size")
)

// Config holds all painter settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Brush   BrushConfig   `yaml:"brush"`
	View    ViewConfig    `yaml:"view"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// AssetsConfig holds model and texture sources.
type AssetsConfig struct {
	CatalogDirs []string `yaml:"catalog_dirs"` // searched before the bundled catalog, last first
	Model       string   `yaml:"model"`        // catalog name or .geo.json path
	Texture     string   `yaml:"texture"`      // catalog name or image path
	Watch       bool     `yaml:"watch"`        // reload model files on change
}

// BrushConfig holds brush settings.
type BrushConfig struct {
	Color   string `yaml:"color"`   // #rrggbb or #rrggbbaa
	Overlay string `yaml:"overlay"` // normal, color-burn, multiply, darken
}

// ViewConfig holds 3D view settings.
type ViewConfig struct {
	Preset         string  `yaml:"preset"`          // front, back, left, right, up, down
	TransitionTime float32 `yaml:"transition_time"` // seconds
	ShowLayers     bool    `yaml:"show_layers"`     // draw inflated overlay cubes
	ShowGrid       bool    `yaml:"show_grid"`       // pixel grid on the preview
}

// ExportConfig holds atlas export settings.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or webp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Assets: AssetsConfig{
			Model: "steve",
		},
		Brush: BrushConfig{
			Color:   "#ff0000",
			Overlay: "color-burn",
		},
		View: ViewConfig{
			Preset:         "front",
			TransitionTime: 0.4,
			ShowLayers:     true,
			ShowGrid:       true,
		},
		Export: ExportConfig{
			Dir:    "exports",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindow, c.Window.Width, c.Window.Height)
	}
	if _, err := c.Brush.RGBA(); err != nil {
		return err
	}
	switch strings.ToLower(c.Export.Format) {
	case "png", "webp":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Export.Format)
	}
	return nil
}

// RGBA parses the brush colour.
func (b BrushConfig) RGBA() (color.RGBA, error) {
	return ParseColor(b.Color)
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
