// Package config handles skyfish configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"slices"
)

// Display modes.
const (
	ModeTerminal = "terminal"
	ModeWindow   = "window"
	ModeHeadless = "headless"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Game     GameConfig     `yaml:"game"`
	Assets   AssetsConfig   `yaml:"assets"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings. Width and Height size the
// framebuffer in window and headless mode; the terminal front end sizes it
// from the terminal instead.
type GraphicsConfig struct {
	Mode        string `yaml:"mode"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	WindowScale int    `yaml:"window_scale"`
	FPSLimit    int    `yaml:"fps_limit"`
}

// RenderConfig holds rasterizer settings. FOV is in degrees.
type RenderConfig struct {
	FOV            float64 `yaml:"fov"`
	Near           float64 `yaml:"near"`
	Far            float64 `yaml:"far"`
	Darkness       bool    `yaml:"darkness"`
	DarknessNear   float64 `yaml:"darkness_near"`
	DarknessFar    float64 `yaml:"darkness_far"`
	TriangleLimit  int     `yaml:"triangle_limit"`
	DisableCulling bool    `yaml:"disable_culling"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	StartScene  string             `yaml:"start_scene"`
	ShowFPS     bool               `yaml:"show_fps"`
	Decorations []DecorationConfig `yaml:"decorations"`
}

// DecorationConfig places one static model in the stage.
type DecorationConfig struct {
	Mesh     string     `yaml:"mesh"`
	Bitmap   string     `yaml:"bitmap"`
	Position [3]float64 `yaml:"position"`
	Scale    [3]float64 `yaml:"scale"`
	Solid    bool       `yaml:"solid"`
}

// AssetsConfig points at an optional asset manifest. Empty means the
// procedural built-in assets only.
type AssetsConfig struct {
	Manifest string `yaml:"manifest"`
}

// CaptureConfig controls headless frame capture.
type CaptureConfig struct {
	Frames int    `yaml:"frames"`
	OutDir string `yaml:"out_dir"`
	Every  int    `yaml:"every"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock settings.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Mode:        ModeTerminal,
			Width:       256,
			Height:      192,
			WindowScale: 3,
			FPSLimit:    60,
		},
		Render: RenderConfig{
			FOV:           70,
			Near:          0.1,
			Far:           100,
			Darkness:      true,
			DarknessNear:  10,
			DarknessFar:   35,
			TriangleLimit: 8192,
		},
		Game: GameConfig{
			StartScene:  "stage",
			Decorations: DefaultDecorations(),
		},
		Capture: CaptureConfig{
			Frames: 120,
			OutDir: "frames",
			Every:  30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDecorations returns the stock stage layout: a ring of crates
// beside the road and a few pillars.
func DefaultDecorations() []DecorationConfig {
	return []DecorationConfig{
		{Mesh: "cube", Bitmap: "crate", Position: [3]float64{-10, -4, -10}, Scale: [3]float64{2, 2, 2}, Solid: true},
		{Mesh: "cube", Bitmap: "crate", Position: [3]float64{-15, -4, 5}, Scale: [3]float64{2, 2, 2}, Solid: true},
		{Mesh: "cube", Bitmap: "crate", Position: [3]float64{18, -4, -12}, Scale: [3]float64{2, 2, 2}, Solid: true},
		{Mesh: "cube", Bitmap: "crate", Position: [3]float64{16, -4, 14}, Scale: [3]float64{2, 2, 2}, Solid: true},
		{Mesh: "cube", Bitmap: "fence", Position: [3]float64{-5, -1, 0}, Scale: [3]float64{1, 8, 1}, Solid: true},
		{Mesh: "cube", Bitmap: "fence", Position: [3]float64{15, -1, 0}, Scale: [3]float64{1, 8, 1}, Solid: true},
	}
}

// Validate reports settings the renderer cannot work with.
func (c *Config) Validate() error {
	var errs []error

	modes := []string{ModeTerminal, ModeWindow, ModeHeadless}
	if !slices.Contains(modes, c.Graphics.Mode) {
		errs = append(errs, fmt.Errorf("graphics.mode %q: want one of %v", c.Graphics.Mode, modes))
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.FPSLimit <= 0 {
		errs = append(errs, fmt.Errorf("graphics.fps_limit %d must be positive", c.Graphics.FPSLimit))
	}
	if c.Render.FOV <= 0 || c.Render.FOV >= 180 {
		errs = append(errs, fmt.Errorf("render.fov %g must be in (0, 180)", c.Render.FOV))
	}
	if c.Render.Near <= 0 || c.Render.Far <= c.Render.Near {
		errs = append(errs, fmt.Errorf("render clip range [%g, %g] is empty", c.Render.Near, c.Render.Far))
	}
	if c.Render.Darkness && c.Render.DarknessFar <= c.Render.DarknessNear {
		errs = append(errs, fmt.Errorf("render darkness range [%g, %g] is empty", c.Render.DarknessNear, c.Render.DarknessFar))
	}
	if c.Render.TriangleLimit < 0 {
		errs = append(errs, fmt.Errorf("render.triangle_limit %d is negative", c.Render.TriangleLimit))
	}
	for i, d := range c.Game.Decorations {
		if d.Mesh == "" {
			errs = append(errs, fmt.Errorf("game.decorations[%d]: missing mesh", i))
		}
	}

	return errors.Join(errs...)
}
