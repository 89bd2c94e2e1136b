package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	d := Default()
	c := *d
	c.Validate()
	assert.Equal(t, *d, c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[canvas]
background = "#202020"

[pen]
color = "red"
slider_default = 60

[zoom]
wheel_divisor = 250

[storage]
directory = "/tmp/wb"
persist_every = 20

[remote]
listen = "127.0.0.1:9000"
advertise = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "#202020", cfg.Canvas.Background)
	assert.Equal(t, 1024, cfg.Canvas.Width)
	assert.Equal(t, "red", cfg.Pen.Color)
	assert.Equal(t, 60.0, cfg.Pen.SliderDefault)
	assert.Equal(t, 250.0, cfg.Zoom.WheelDivisor)
	assert.Equal(t, 100.0, cfg.Zoom.MaxScale)
	assert.Equal(t, "/tmp/wb", cfg.Storage.Directory)
	assert.Equal(t, 20, cfg.Storage.PersistEvery)
	assert.Equal(t, filepath.Join("/tmp/wb", "board.json"), cfg.StoragePath())
	assert.Equal(t, "127.0.0.1:9000", cfg.Remote.Listen)
	assert.False(t, cfg.Remote.Advertise)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "[canvas\nwidth = "))
	assert.Error(t, err)
}

func TestValidateBoundsCanvas(t *testing.T) {
	c := Default()
	c.Canvas.Width, c.Canvas.Height = 20000, 500
	c.Validate()
	assert.Equal(t, 8192, c.Canvas.Width)
	assert.Equal(t, 500, c.Canvas.Height)

	c.Canvas.MaxWidth, c.Canvas.MaxHeight = 0, 300
	c.Validate()
	assert.Equal(t, 8192, c.Canvas.MaxWidth)
	assert.Equal(t, 8192, c.Canvas.MaxHeight)
}

func TestValidateCorrects(t *testing.T) {
	c := Config{
		Canvas:  Canvas{Background: "nope", Width: -1, Height: 10},
		Pen:     Pen{Color: "", SliderMin: 80, SliderMax: 20, SliderDefault: 500},
		Zoom:    Zoom{WheelDivisor: -3, MinScale: 5, MaxScale: 1},
		Storage: Storage{PersistEvery: 0},
		Export:  Export{Name: "../evil"},
	}
	c.Validate()
	d := Default()

	assert.Equal(t, d.Canvas, c.Canvas)
	assert.Equal(t, d.Pen.Color, c.Pen.Color)
	assert.Equal(t, 30.0, c.Pen.SliderMin)
	assert.Equal(t, 100.0, c.Pen.SliderMax)
	assert.Equal(t, 65.0, c.Pen.SliderDefault)
	assert.Equal(t, d.Zoom, c.Zoom)
	assert.Equal(t, 1, c.Storage.PersistEvery)
	assert.Equal(t, d.Storage.Directory, c.Storage.Directory)
	assert.Equal(t, "whiteboard", c.Export.Name)
	assert.Equal(t, ":8888", c.Remote.Listen)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "boards"), expandHome("~/boards"))
	assert.Equal(t, "/abs", expandHome("/abs"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}
