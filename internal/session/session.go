// Package session ties one board together: the view, the stroke store, the
// pen, the renderer and the gesture resolver. A Session is driven from a
// single control flow and is not safe for concurrent use; see Loop.
package session

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"

	"whiteboard/internal/config"
	"whiteboard/internal/gesture"
	"whiteboard/internal/logging"
	"whiteboard/internal/prefs"
	"whiteboard/internal/render"
	"whiteboard/internal/strokes"
	"whiteboard/internal/viewport"
)

// Session is the state of one open board.
type Session struct {
	cfg      config.Config
	storage  prefs.Storage
	view     viewport.Transform
	store    *strokes.Store
	renderer *render.Renderer
	resolver *gesture.Resolver
	pen      pen

	listeners map[int]func()
	nextID    int
}

// Open loads the board persisted in storage and renders it once.
func Open(storage prefs.Storage, cfg config.Config) (*Session, error) {
	bg, err := render.ParseColor(cfg.Canvas.Background)
	if err != nil {
		return nil, fmt.Errorf("canvas background: %w", err)
	}

	s := &Session{
		cfg:       cfg,
		storage:   storage,
		view:      viewport.Identity(),
		store:     strokes.Load(storage, strokes.Options{PersistEvery: cfg.Storage.PersistEvery}),
		renderer:  render.New(cfg.Canvas.Width, cfg.Canvas.Height, bg),
		listeners: make(map[int]func()),
	}
	s.renderer.SetMaxSize(cfg.Canvas.MaxWidth, cfg.Canvas.MaxHeight)
	s.view.MinScale = cfg.Zoom.MinScale
	s.view.MaxScale = cfg.Zoom.MaxScale
	s.pen = loadPen(storage, cfg.Pen)

	s.resolver = gesture.New(&s.view, s.store, &s.pen, painter{s})
	s.resolver.WheelDivisor = cfg.Zoom.WheelDivisor

	s.Redraw()
	return s, nil
}

// Subscribe registers fn to run after every visible change. The returned
// func removes it.
func (s *Session) Subscribe(fn func()) (cancel func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Session) invalidate() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Redraw repaints the whole board.
func (s *Session) Redraw() {
	s.renderer.Redraw(s.view, s.store)
	s.invalidate()
}

// ErrSurfaceSize is returned for a resize outside [1, max_width]×[1, max_height].
var ErrSurfaceSize = errors.New("surface size out of range")

// Resize resizes the surface to w×h pixels and redraws if it changed. Sizes
// outside the configured limits are refused and leave the surface as is.
func (s *Session) Resize(w, h int) error {
	mw, mh := s.renderer.MaxSize()
	if w < 1 || h < 1 || w > mw || h > mh {
		return fmt.Errorf("%w: %dx%d, limit %dx%d", ErrSurfaceSize, w, h, mw, mh)
	}
	if s.renderer.Resize(w, h) {
		s.Redraw()
	}
	return nil
}

// Wipe deletes every stroke.
func (s *Session) Wipe() error {
	err := s.store.Clear()
	s.Redraw()
	if err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	logging.For("session").Info("board wiped")
	return nil
}

// Close persists anything still pending.
func (s *Session) Close() error {
	return s.store.Flush()
}

// View returns the current transform.
func (s *Session) View() viewport.Transform { return s.view }

// Mode returns the active gesture.
func (s *Session) Mode() gesture.Mode { return s.resolver.Mode() }

// Len returns the number of recorded segments.
func (s *Session) Len() int { return s.store.Len() }

// Segments returns a copy of the drawing.
func (s *Session) Segments() []strokes.Segment { return s.store.Segments() }

// Size returns the surface size in pixels.
func (s *Session) Size() (int, int) { return s.renderer.Size() }

// Image returns the live surface; copy it before handing it to another goroutine.
func (s *Session) Image() *image.RGBA { return s.renderer.Image() }

// Snapshot returns a copy of the surface.
func (s *Session) Snapshot() *image.RGBA { return s.renderer.Snapshot() }

// EncodePNG writes the current rendering as PNG.
func (s *Session) EncodePNG(w io.Writer) error { return s.renderer.EncodePNG(w) }

// Background returns the canvas fill colour as #rrggbb, used by the eraser.
func (s *Session) Background() string { return render.Hex(s.renderer.Background()) }

// PointerDown starts drawing or panning at (x, y).
func (s *Session) PointerDown(b gesture.Button, x, y float64) {
	s.resolver.PointerDown(b, gesture.Point{X: x, Y: y})
}

// PointerMove moves the pointer to (x, y).
func (s *Session) PointerMove(x, y float64) error {
	return s.resolver.PointerMove(gesture.Point{X: x, Y: y})
}

// PointerUp releases any pointer button.
func (s *Session) PointerUp() error {
	return s.resolver.PointerUp()
}

// TouchStart, TouchMove and TouchEnd take every touch currently down.
func (s *Session) TouchStart(touches []gesture.Point) { s.resolver.TouchStart(touches) }

func (s *Session) TouchMove(touches []gesture.Point) error { return s.resolver.TouchMove(touches) }

func (s *Session) TouchEnd(remaining []gesture.Point) error { return s.resolver.TouchEnd(remaining) }

// Wheel zooms around (x, y) using a browser-style deltaY.
func (s *Session) Wheel(x, y, deltaY float64) {
	s.resolver.Wheel(gesture.Point{X: x, Y: y}, deltaY)
}

// painter lets the resolver paint through the session's current view.
type painter struct{ s *Session }

func (p painter) Paint(seg strokes.Segment) {
	p.s.renderer.Paint(p.s.view, seg)
	p.s.invalidate()
}

func (p painter) Redraw() { p.s.Redraw() }

func (p painter) Size() (float64, float64) {
	w, h := p.s.renderer.Size()
	return float64(w), float64(h)
}

// PenWidth maps a raw slider value to a true-space stroke width. The curve
// gives fine control over thin pens; the result is at least 1.
func PenWidth(slider float64) float64 {
	w := math.Floor(math.Pow(1.0483, slider) - 2)
	if !(w >= 1) {
		return 1
	}
	return w
}

type pen struct {
	color  string
	slider float64
	width  float64
}

func (p *pen) Color() string  { return p.color }
func (p *pen) Width() float64 { return p.width }

func loadPen(storage prefs.Storage, cfg config.Pen) pen {
	log := logging.For("session")
	p := pen{color: cfg.Color, slider: cfg.SliderDefault}

	if c, ok := storage.Get(prefs.KeyColor); ok && c != "" {
		if _, err := render.ParseColor(c); err == nil {
			p.color = c
		} else {
			log.Warn("ignoring stored pen color", "color", c, "err", err)
		}
	}
	if raw, ok := storage.Get(prefs.KeyPenSize); ok && raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= cfg.SliderMin && v <= cfg.SliderMax {
			p.slider = v
		} else {
			log.Warn("ignoring stored pen size", "value", raw)
		}
	}
	p.width = PenWidth(p.slider)
	return p
}

// Color returns the pen colour.
func (s *Session) Color() string { return s.pen.color }

// PenSize returns the raw slider value of the pen.
func (s *Session) PenSize() float64 { return s.pen.slider }

// PenRange returns the configured slider bounds.
func (s *Session) PenRange() (min, max float64) {
	return s.cfg.Pen.SliderMin, s.cfg.Pen.SliderMax
}

// PenWidth returns the true-space width new strokes get.
func (s *Session) PenWidth() float64 { return s.pen.width }

// SetColor changes and persists the pen colour.
func (s *Session) SetColor(c string) error {
	if _, err := render.ParseColor(c); err != nil {
		return fmt.Errorf("set color: %w", err)
	}
	s.pen.color = c
	if err := s.storage.Set(prefs.KeyColor, c); err != nil {
		return fmt.Errorf("save color: %w", err)
	}
	return nil
}

// SetPenSize changes and persists the raw slider value, clamped to the
// configured range.
func (s *Session) SetPenSize(slider float64) error {
	if math.IsNaN(slider) {
		return fmt.Errorf("set pen size: %v is not a number", slider)
	}
	slider = math.Min(math.Max(slider, s.cfg.Pen.SliderMin), s.cfg.Pen.SliderMax)
	s.pen.slider = slider
	s.pen.width = PenWidth(slider)
	if err := s.storage.Set(prefs.KeyPenSize, strconv.FormatFloat(slider, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save pen size: %w", err)
	}
	return nil
}
