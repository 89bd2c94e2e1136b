// Package viewport maps between screen space (pixels of the rendering
// surface) and true space (the fixed world coordinates strokes are stored in).
package viewport

import "math"

// Default scale limits. A zoom never leaves [MinScale, MaxScale].
const (
	DefaultMinScale = 0.01
	DefaultMaxScale = 100.0
)

// Transform is the current view: the offset is applied before scaling.
type Transform struct {
	OffsetX float64
	OffsetY float64
	Scale   float64

	// MinScale and MaxScale bound zooming. Zero means the package default.
	MinScale float64
	MaxScale float64
}

// Identity returns the untransformed view.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ToScreen projects a true-space point onto the screen.
func (t Transform) ToScreen(x, y float64) (float64, float64) {
	return (x + t.OffsetX) * t.Scale, (y + t.OffsetY) * t.Scale
}

// ToTrue is the inverse of ToScreen for the same transform.
func (t Transform) ToTrue(x, y float64) (float64, float64) {
	return x/t.Scale - t.OffsetX, y/t.Scale - t.OffsetY
}

// TrueSize returns how many true-space units a canvas of w×h pixels shows.
func (t Transform) TrueSize(w, h float64) (float64, float64) {
	return w / t.Scale, h / t.Scale
}

// Pan moves the view by a screen-space delta. Scale is untouched.
func (t *Transform) Pan(dx, dy float64) {
	t.OffsetX += dx / t.Scale
	t.OffsetY += dy / t.Scale
}

// ZoomAt multiplies the scale by factor while keeping the true point under
// the anchor (ax, ay) at the same screen position. w and h are the canvas
// size in pixels. The ratio actually applied is returned; it differs from
// factor when the scale limits clamp it, and is 1 when the request is ignored.
func (t *Transform) ZoomAt(factor, ax, ay, w, h float64) float64 {
	if !(factor > 0) || math.IsInf(factor, 0) || !(w > 0) || !(h > 0) {
		return 1
	}
	next := t.clamp(t.Scale * factor)
	ratio := next / t.Scale
	if ratio == 1 {
		return 1
	}
	t.Scale = next

	// Units gained or lost across the visible area at the new scale,
	// distributed by where the anchor sits inside the canvas.
	tw, th := t.TrueSize(w, h)
	zoomed := ratio - 1
	t.OffsetX -= tw * zoomed * (ax / w)
	t.OffsetY -= th * zoomed * (ay / h)
	return ratio
}

func (t Transform) clamp(s float64) float64 {
	lo, hi := t.MinScale, t.MaxScale
	if lo <= 0 {
		lo = DefaultMinScale
	}
	if hi <= 0 {
		hi = DefaultMaxScale
	}
	return math.Min(math.Max(s, lo), hi)
}
