// Package config loads the whiteboard settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"whiteboard/internal/logging"
	"whiteboard/internal/render"
)

// Canvas configures the rendering surface.
type Canvas struct {
	Background string `toml:"background"` // fill colour behind the strokes
	Width      int    `toml:"width"`      // initial surface size in pixels
	Height     int    `toml:"height"`
	MaxWidth   int    `toml:"max_width"` // largest surface a window or browser may request
	MaxHeight  int    `toml:"max_height"`
}

// Pen configures the initial colour and the pen-size slider range.
type Pen struct {
	Color         string  `toml:"color"`
	SliderMin     float64 `toml:"slider_min"`
	SliderMax     float64 `toml:"slider_max"`
	SliderDefault float64 `toml:"slider_default"`
}

// Zoom configures wheel sensitivity and scale limits.
type Zoom struct {
	WheelDivisor float64 `toml:"wheel_divisor"` // zoom amount = -deltaY / wheel_divisor
	WheelScale   float64 `toml:"wheel_scale"`   // desktop scroll units to browser deltaY
	MinScale     float64 `toml:"min_scale"`
	MaxScale     float64 `toml:"max_scale"`
}

// Storage configures where and how often the drawing is persisted.
type Storage struct {
	Directory    string `toml:"directory"`
	PersistEvery int    `toml:"persist_every"`
}

// Export configures PNG/PDF export.
type Export struct {
	Directory string `toml:"directory"`
	Name      string `toml:"name"`
}

// Remote configures the browser surface.
type Remote struct {
	Listen    string `toml:"listen"`
	Advertise bool   `toml:"advertise"`
}

// Config is the full settings tree.
type Config struct {
	Canvas  Canvas  `toml:"canvas"`
	Pen     Pen     `toml:"pen"`
	Zoom    Zoom    `toml:"zoom"`
	Storage Storage `toml:"storage"`
	Export  Export  `toml:"export"`
	Remote  Remote  `toml:"remote"`
}

// Default returns the built-in settings.
func Default() *Config {
	dataDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "whiteboard")
	}
	return &Config{
		Canvas: Canvas{Background: "#ffffff", Width: 1024, Height: 768, MaxWidth: 8192, MaxHeight: 8192},
		Pen:    Pen{Color: "#000000", SliderMin: 30, SliderMax: 100, SliderDefault: 50},
		Zoom:   Zoom{WheelDivisor: 500, WheelScale: 10, MinScale: 0.01, MaxScale: 100},
		Storage: Storage{
			Directory:    dataDir,
			PersistEvery: 1,
		},
		Export: Export{Directory: ".", Name: "whiteboard"},
		Remote: Remote{Listen: ":8888", Advertise: true},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/whiteboard/config.toml or its platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "whiteboard", "config.toml")
}

// Load reads the config at path over the defaults. With an empty path the
// default location is used and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg.Validate()
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.For("config").Warn("unknown config key", "key", key.String(), "path", path)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces unusable values with defaults.
func (c *Config) Validate() {
	d := Default()

	if _, err := render.ParseColor(c.Canvas.Background); err != nil {
		c.Canvas.Background = d.Canvas.Background
	}
	if c.Canvas.MaxWidth < 1 || c.Canvas.MaxHeight < 1 {
		c.Canvas.MaxWidth, c.Canvas.MaxHeight = d.Canvas.MaxWidth, d.Canvas.MaxHeight
	}
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		c.Canvas.Width, c.Canvas.Height = d.Canvas.Width, d.Canvas.Height
	}
	c.Canvas.Width = min(c.Canvas.Width, c.Canvas.MaxWidth)
	c.Canvas.Height = min(c.Canvas.Height, c.Canvas.MaxHeight)

	if _, err := render.ParseColor(c.Pen.Color); err != nil {
		c.Pen.Color = d.Pen.Color
	}
	if !(c.Pen.SliderMin < c.Pen.SliderMax) {
		c.Pen.SliderMin, c.Pen.SliderMax = d.Pen.SliderMin, d.Pen.SliderMax
	}
	if c.Pen.SliderDefault < c.Pen.SliderMin || c.Pen.SliderDefault > c.Pen.SliderMax {
		c.Pen.SliderDefault = (c.Pen.SliderMin + c.Pen.SliderMax) / 2
	}

	if !(c.Zoom.WheelDivisor > 0) {
		c.Zoom.WheelDivisor = d.Zoom.WheelDivisor
	}
	if !(c.Zoom.WheelScale > 0) {
		c.Zoom.WheelScale = d.Zoom.WheelScale
	}
	if !(c.Zoom.MinScale > 0) || !(c.Zoom.MaxScale > c.Zoom.MinScale) {
		c.Zoom.MinScale, c.Zoom.MaxScale = d.Zoom.MinScale, d.Zoom.MaxScale
	}

	if c.Storage.Directory == "" {
		c.Storage.Directory = d.Storage.Directory
	}
	c.Storage.Directory = expandHome(c.Storage.Directory)
	if c.Storage.PersistEvery < 1 {
		c.Storage.PersistEvery = 1
	}

	if c.Export.Directory == "" {
		c.Export.Directory = d.Export.Directory
	}
	c.Export.Directory = expandHome(c.Export.Directory)
	if c.Export.Name == "" || strings.ContainsAny(c.Export.Name, `/\`) {
		c.Export.Name = d.Export.Name
	}

	if c.Remote.Listen == "" {
		c.Remote.Listen = d.Remote.Listen
	}
}

// StoragePath is the JSON file used when no fyne preferences are available.
func (c *Config) StoragePath() string {
	return filepath.Join(c.Storage.Directory, "board.json")
}

func expandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}
