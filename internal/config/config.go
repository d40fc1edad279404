package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds viewer and render settings.
type Config struct {
	// Camera
	FOV      float64    `json:"fov_degrees"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
	Distance float64    `json:"camera_distance"` // from the model center, along +Z
	Light    [3]float64 `json:"light"`           // position relative to the camera

	// Render
	Width      int    `json:"width"` // snapshot size; the viewer follows the terminal
	Height     int    `json:"height"`
	Background string `json:"background"` // "R,G,B"
	ShowBounds bool   `json:"show_bounds"`
	FPS        int    `json:"fps"`

	// Controls
	MoveStep  float64 `json:"move_step"`  // world units per key press; models are normalized to size 2
	TurnSpeed float64 `json:"turn_speed"` // multiplier on mouse drag deltas

	// Output
	Snapshot string `json:"snapshot"`
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	FPS        int
	Background string
	Snapshot   string
	Width      int
	Height     int
	ShowBounds bool
	LogFile    string
	LogLevel   string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.Snapshot != "" {
		c.Snapshot = flags.Snapshot
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.ShowBounds {
		c.ShowBounds = true
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Defaults
	if c.FOV <= 0 || c.FOV >= 180 {
		c.FOV = 60
	}
	if c.Near >= 0 {
		c.Near = -0.1
	}
	if c.Far >= c.Near {
		c.Far = c.Near * 1000
	}
	if c.Distance <= 0 {
		c.Distance = 4
	}
	if c.Light == [3]float64{} {
		c.Light = [3]float64{2, 4, 3}
	}
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.Background == "" {
		c.Background = "30,30,40"
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.MoveStep <= 0 {
		c.MoveStep = 0.1
	}
	if c.TurnSpeed <= 0 {
		c.TurnSpeed = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// BackgroundRGB parses Background as "R,G,B".
func (c *Config) BackgroundRGB() (r, g, b uint8, err error) {
	parts := strings.Split(c.Background, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("config: background %q: want R,G,B", c.Background)
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("config: background %q: %w", c.Background, err)
		}
		rgb[i] = uint8(v)
	}
	return rgb[0], rgb[1], rgb[2], nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}
