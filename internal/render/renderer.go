// Package render paints the drawing onto a raster surface.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"

	"whiteboard/internal/logging"
	"whiteboard/internal/strokes"
	"whiteboard/internal/viewport"
)

// DefaultMaxSize bounds each surface dimension until SetMaxSize is called.
const DefaultMaxSize = 8192

// Renderer owns the screen-space surface. Every redraw repaints all
// segments; there is no dirty-region tracking.
type Renderer struct {
	background color.Color
	img        *image.RGBA
	dc         *gg.Context
	colors     map[string]color.Color
	maxW, maxH int
}

// New returns a renderer with a w×h surface filled with background.
func New(w, h int, background color.Color) *Renderer {
	r := &Renderer{
		background: background,
		colors:     make(map[string]color.Color),
		maxW:       DefaultMaxSize,
		maxH:       DefaultMaxSize,
	}
	r.allocate(w, h)
	r.fill()
	return r
}

// SetMaxSize bounds later resizes to w×h. Non-positive values keep the
// current limit.
func (r *Renderer) SetMaxSize(w, h int) {
	if w > 0 {
		r.maxW = w
	}
	if h > 0 {
		r.maxH = h
	}
}

// MaxSize returns the largest surface Resize allocates.
func (r *Renderer) MaxSize() (int, int) { return r.maxW, r.maxH }

// bound clamps a requested size to [1, max] on both axes.
func (r *Renderer) bound(w, h int) (int, int) {
	return min(max(w, 1), r.maxW), min(max(h, 1), r.maxH)
}

func (r *Renderer) allocate(w, h int) {
	w, h = r.bound(w, h)
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	r.dc = gg.NewContextForRGBA(r.img)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
}

// Resize reallocates the surface when the size changed. The size is
// clamped to [1, MaxSize]. The caller redraws.
func (r *Renderer) Resize(w, h int) bool {
	w, h = r.bound(w, h)
	if b := r.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return false
	}
	r.allocate(w, h)
	r.fill()
	return true
}

// Size returns the surface size in pixels.
func (r *Renderer) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Background returns the fill colour.
func (r *Renderer) Background() color.Color { return r.background }

func (r *Renderer) fill() {
	r.dc.SetColor(r.background)
	r.dc.Clear()
}

// Redraw clears the surface and paints every segment through view.
func (r *Renderer) Redraw(view viewport.Transform, store *strokes.Store) {
	r.fill()
	store.Each(func(seg strokes.Segment) {
		r.Paint(view, seg)
	})
}

// Paint draws a single segment on top of the current surface.
func (r *Renderer) Paint(view viewport.Transform, seg strokes.Segment) {
	x0, y0 := view.ToScreen(seg.X0, seg.Y0)
	x1, y1 := view.ToScreen(seg.X1, seg.Y1)
	r.Line(x0, y0, x1, y1, seg.Color, seg.Width*view.Scale)
}

// Line strokes a round-capped screen-space line.
func (r *Renderer) Line(x0, y0, x1, y1 float64, c string, width float64) {
	if !(width > 0) {
		return
	}
	r.dc.SetColor(r.color(c))
	if x0 == x1 && y0 == y1 {
		// A round cap on a zero-length line is a dot.
		r.dc.DrawCircle(x0, y0, width/2)
		r.dc.Fill()
		return
	}
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x0, y0, x1, y1)
	r.dc.Stroke()
}

func (r *Renderer) color(s string) color.Color {
	if c, ok := r.colors[s]; ok {
		return c
	}
	var c color.Color = color.Black
	if parsed, err := ParseColor(s); err != nil {
		logging.For("render").Warn("painting unknown color as black", "color", s, "err", err)
	} else {
		c = parsed
	}
	r.colors[s] = c
	return c
}

// Image returns the surface. It is overwritten by the next paint.
func (r *Renderer) Image() *image.RGBA { return r.img }

// Snapshot returns a copy of the surface.
func (r *Renderer) Snapshot() *image.RGBA {
	out := image.NewRGBA(r.img.Bounds())
	copy(out.Pix, r.img.Pix)
	return out
}

// EncodePNG writes the surface as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}
