// Package gesture turns raw pointer, touch and wheel input into drawing,
// panning and zooming of a board.
package gesture

import (
	"fmt"
	"math"

	"whiteboard/internal/logging"
	"whiteboard/internal/strokes"
	"whiteboard/internal/viewport"
)

// DefaultWheelDivisor converts a wheel deltaY into a zoom amount.
const DefaultWheelDivisor = 500

// Mode is the gesture in progress. Exactly one is active at a time.
type Mode int

const (
	Idle Mode = iota
	Drawing
	Panning
	Pinching
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Button identifies a pointer button, numbered like DOM MouseEvent.button.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonSecondary Button = 2
)

// Point is a screen-space position in pixels.
type Point struct {
	X, Y float64
}

// Painter is the surface the resolver paints on.
type Painter interface {
	// Paint draws one segment immediately, projected through the current view.
	Paint(seg strokes.Segment)
	// Redraw repaints the whole drawing.
	Redraw()
	// Size is the canvas size in pixels.
	Size() (w, h float64)
}

// Pen supplies the colour and true-space width of new segments.
type Pen interface {
	Color() string
	Width() float64
}

// Resolver is the input state machine of one board. It is not safe for
// concurrent use.
type Resolver struct {
	view    *viewport.Transform
	store   *strokes.Store
	pen     Pen
	painter Painter

	// WheelDivisor scales wheel deltas: zoom amount = -deltaY / WheelDivisor.
	WheelDivisor float64

	mode        Mode
	prev        Point
	prevTouches [2]Point
}

// New wires a resolver to the board state it drives.
func New(view *viewport.Transform, store *strokes.Store, pen Pen, painter Painter) *Resolver {
	return &Resolver{
		view:         view,
		store:        store,
		pen:          pen,
		painter:      painter,
		WheelDivisor: DefaultWheelDivisor,
	}
}

// Mode returns the active gesture.
func (r *Resolver) Mode() Mode { return r.mode }

func (r *Resolver) setMode(m Mode) {
	if r.mode != m {
		logging.For("gesture").Debug("mode", "from", r.mode, "to", m)
	}
	r.mode = m
}

// PointerDown starts drawing (primary) or panning (secondary). The last
// button pressed wins.
func (r *Resolver) PointerDown(b Button, p Point) {
	switch b {
	case ButtonPrimary:
		r.setMode(Drawing)
	case ButtonSecondary:
		r.setMode(Panning)
	default:
		return
	}
	r.prev = p
}

// PointerMove extends the active gesture to p.
func (r *Resolver) PointerMove(p Point) error {
	prev := r.prev
	r.prev = p

	switch r.mode {
	case Drawing:
		return r.stroke(prev, p)
	case Panning:
		r.view.Pan(p.X-prev.X, p.Y-prev.Y)
		r.painter.Redraw()
	}
	return nil
}

// PointerUp ends any pointer gesture.
func (r *Resolver) PointerUp() error {
	return r.end()
}

// TouchStart begins a touch gesture: one finger draws, two pinch.
func (r *Resolver) TouchStart(touches []Point) {
	switch {
	case len(touches) == 1:
		r.setMode(Drawing)
	case len(touches) >= 2:
		r.setMode(Pinching)
	default:
		return
	}
	r.rememberTouches(touches)
}

// TouchMove follows the active touches.
func (r *Resolver) TouchMove(touches []Point) error {
	if len(touches) == 0 {
		return nil
	}
	prev := r.prevTouches
	r.rememberTouches(touches)

	switch r.mode {
	case Drawing:
		return r.stroke(prev[0], touches[0])
	case Pinching:
		if len(touches) < 2 {
			return nil
		}
		r.pinch(prev, [2]Point{touches[0], touches[1]})
	}
	return nil
}

// TouchEnd is called with the touches still down. Lifting one finger of a
// pinch does not turn the remaining finger into a pen.
func (r *Resolver) TouchEnd(remaining []Point) error {
	r.rememberTouches(remaining)
	if len(remaining) > 0 && r.mode == Drawing {
		return nil
	}
	return r.end()
}

// Wheel zooms around p. A negative deltaY zooms in.
func (r *Resolver) Wheel(p Point, deltaY float64) {
	div := r.WheelDivisor
	if !(div > 0) {
		div = DefaultWheelDivisor
	}
	amount := -deltaY / div
	w, h := r.painter.Size()
	if r.view.ZoomAt(1+amount, p.X, p.Y, w, h) != 1 {
		r.painter.Redraw()
	}
}

func (r *Resolver) end() error {
	r.setMode(Idle)
	return r.store.Flush()
}

func (r *Resolver) rememberTouches(touches []Point) {
	for i := 0; i < len(touches) && i < 2; i++ {
		r.prevTouches[i] = touches[i]
	}
}

// stroke records the screen-space move from a to b as a true-space segment
// and paints it straight away.
func (r *Resolver) stroke(a, b Point) error {
	x0, y0 := r.view.ToTrue(a.X, a.Y)
	x1, y1 := r.view.ToTrue(b.X, b.Y)
	seg := strokes.Segment{X0: x0, Y0: y0, X1: x1, Y1: y1, Color: r.pen.Color(), Width: r.pen.Width()}
	if err := seg.Validate(); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	err := r.store.Append(seg)
	r.painter.Paint(seg)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

// pinch zooms by the change in finger distance around the previous midpoint
// and then pans by the midpoint movement, so the true point that was under
// the fingers stays under them.
func (r *Resolver) pinch(prev, cur [2]Point) {
	mid := midpoint(cur[0], cur[1])
	prevMid := midpoint(prev[0], prev[1])
	dist := distance(cur[0], cur[1])
	prevDist := distance(prev[0], prev[1])

	if prevDist > 0 {
		w, h := r.painter.Size()
		r.view.ZoomAt(dist/prevDist, prevMid.X, prevMid.Y, w, h)
	}
	r.view.Pan(mid.X-prevMid.X, mid.Y-prevMid.Y)
	r.painter.Redraw()
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
