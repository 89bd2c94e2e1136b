// Package export writes the current screen rendering of a board to disk.
// Exports are raster: what is on screen, at the current zoom and pan.
package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// DefaultName is the base file name of exports.
const DefaultName = "whiteboard"

// Path joins dir, name and ext, falling back to DefaultName.
func Path(dir, name, ext string) string {
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(dir, name+ext)
}

// PNG writes img to path, creating the parent directory.
func PNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
