package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"whiteboard/internal/config"
	"whiteboard/internal/gesture"
	"whiteboard/internal/logging"
	"whiteboard/internal/session"
)

// BoardWidget shows a session's surface and feeds it the window's input.
type BoardWidget struct {
	widget.BaseWidget
	session *session.Session
	zoom    config.Zoom

	touching    bool
	lastPointer fyne.Position
	OnStatus    func(msg string)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)

func NewBoardWidget(s *session.Session, zoom config.Zoom) *BoardWidget {
	b := &BoardWidget{session: s, zoom: zoom}
	b.ExtendBaseWidget(b)
	s.Subscribe(b.Refresh)
	return b
}

func (b *BoardWidget) status(msg string) {
	if b.OnStatus != nil {
		b.OnStatus(msg)
	}
}

// report surfaces a gesture error without interrupting the user.
func (b *BoardWidget) report(err error) {
	if err == nil {
		return
	}
	logging.For("ui").Warn("gesture failed", "err", err)
	b.status(err.Error())
}

// scale is the number of pixels per device-independent unit.
func (b *BoardWidget) scale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if c := app.Driver().CanvasForObject(b); c != nil && c.Scale() > 0 {
		return float64(c.Scale())
	}
	return 1
}

func (b *BoardWidget) pixels(pos fyne.Position) (float64, float64) {
	s := b.scale()
	return float64(pos.X) * s, float64(pos.Y) * s
}

func (b *BoardWidget) point(pos fyne.Position) gesture.Point {
	x, y := b.pixels(pos)
	return gesture.Point{X: x, Y: y}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	var btn gesture.Button
	switch e.Button {
	case desktop.MouseButtonPrimary:
		btn = gesture.ButtonPrimary
	case desktop.MouseButtonSecondary:
		btn = gesture.ButtonSecondary
	default:
		return
	}
	b.lastPointer = e.Position
	x, y := b.pixels(e.Position)
	b.session.PointerDown(btn, x, y)
}

func (b *BoardWidget) MouseUp(*desktop.MouseEvent) {
	b.report(b.session.PointerUp())
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.pointerMoved(e.Position)
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}
func (b *BoardWidget) MouseOut()                   {}

// pointerMoved is reached from both MouseMoved and Dragged; a position seen
// twice is one movement.
func (b *BoardWidget) pointerMoved(pos fyne.Position) {
	if pos == b.lastPointer {
		return
	}
	b.lastPointer = pos
	x, y := b.pixels(pos)
	b.report(b.session.PointerMove(x, y))
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.touching {
		b.report(b.session.TouchMove([]gesture.Point{b.point(e.Position)}))
		return
	}
	b.pointerMoved(e.Position)
}

func (b *BoardWidget) DragEnd() {}

func (b *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	b.touching = true
	b.session.TouchStart([]gesture.Point{b.point(e.Position)})
}

func (b *BoardWidget) TouchUp(*mobile.TouchEvent) {
	b.touching = false
	b.report(b.session.TouchEnd(nil))
}

func (b *BoardWidget) TouchCancel(e *mobile.TouchEvent) {
	b.TouchUp(e)
}

// Scrolled zooms. fyne reports wheel-up as positive DY; browsers report it
// as negative deltaY.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	x, y := b.pixels(e.Position)
	b.session.Wheel(x, y, -float64(e.Scrolled.DY)*b.zoom.WheelScale)
}

func (b *BoardWidget) MinSize() fyne.Size {
	b.ExtendBaseWidget(b)
	return fyne.NewSize(300, 300)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.raster = canvas.NewRaster(r.draw)
	return r
}

type boardWidgetRenderer struct {
	board  *BoardWidget
	raster *canvas.Raster
}

func (r *boardWidgetRenderer) draw(int, int) image.Image {
	return r.board.session.Image()
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	s := r.board.scale()
	w, h := int(float64(size.Width)*s), int(float64(size.Height)*s)
	if w < 1 || h < 1 {
		return
	}
	if err := r.board.session.Resize(w, h); err != nil {
		logging.For("ui").Warn("surface not resized", "err", err)
	}
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

func (r *boardWidgetRenderer) Refresh() {
	canvas.Refresh(r.raster)
}

func (r *boardWidgetRenderer) Destroy() {}
