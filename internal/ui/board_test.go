package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/config"
	"whiteboard/internal/gesture"
	"whiteboard/internal/prefs"
	"whiteboard/internal/session"
)

func newBoard(t *testing.T) (*BoardWidget, *session.Session, *config.Config) {
	t.Helper()
	test.NewTempApp(t)

	cfg := config.Default()
	cfg.Export.Directory = t.TempDir()
	s, err := session.Open(prefs.NewMemory(), *cfg)
	require.NoError(t, err)

	b := NewBoardWidget(s, cfg.Zoom)
	w := test.NewWindow(b)
	t.Cleanup(w.Close)
	w.Resize(fyne.NewSize(200, 200))
	return b, s, cfg
}

func mouse(x, y float32, button desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: button}
}

func TestBoardMouseDraws(t *testing.T) {
	b, s, _ := newBoard(t)

	b.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary))
	assert.Equal(t, gesture.Drawing, s.Mode())
	b.MouseMoved(mouse(20, 20, 0))
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(20, 20)}})
	b.MouseUp(mouse(20, 20, desktop.MouseButtonPrimary))

	assert.Equal(t, gesture.Idle, s.Mode())
	require.Equal(t, 1, s.Len())
	seg := s.Segments()[0]
	assert.Equal(t, 10.0, seg.X0)
	assert.Equal(t, 20.0, seg.Y1)
}

func TestBoardSecondaryPans(t *testing.T) {
	b, s, _ := newBoard(t)

	b.MouseDown(mouse(50, 50, desktop.MouseButtonSecondary))
	b.MouseMoved(mouse(60, 45, 0))
	b.MouseUp(mouse(60, 45, desktop.MouseButtonSecondary))

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 10.0, s.View().OffsetX)
	assert.Equal(t, -5.0, s.View().OffsetY)
}

func TestBoardMiddleButtonIgnored(t *testing.T) {
	b, s, _ := newBoard(t)

	b.MouseDown(mouse(50, 50, desktop.MouseButtonTertiary))
	assert.Equal(t, gesture.Idle, s.Mode())
}

func TestBoardScrollZooms(t *testing.T) {
	b, s, _ := newBoard(t)

	b.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
		Scrolled:   fyne.Delta{DY: 10},
	})
	assert.InDelta(t, 1.2, s.View().Scale, 1e-9)

	b.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
		Scrolled:   fyne.Delta{DY: -10},
	})
	assert.InDelta(t, 1.2*0.8, s.View().Scale, 1e-9)
}

func TestBoardSingleTouchDraws(t *testing.T) {
	b, s, _ := newBoard(t)

	b.TouchDown(&mobile.TouchEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(5, 5)}})
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(15, 5)}})
	b.TouchUp(&mobile.TouchEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(15, 5)}})

	assert.Equal(t, gesture.Idle, s.Mode())
	require.Equal(t, 1, s.Len())
	assert.Equal(t, 15.0, s.Segments()[0].X1)
}

func TestBoardRasterShowsSurface(t *testing.T) {
	b, s, _ := newBoard(t)

	r := b.CreateRenderer().(*boardWidgetRenderer)
	assert.Same(t, s.Image(), r.draw(0, 0))
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "Backspace", KeyName(fyne.KeyBackspace))
	assert.Equal(t, "s", KeyName(fyne.KeyS))
	assert.Equal(t, "p", KeyName(fyne.KeyP))
	assert.Equal(t, "", KeyName(fyne.KeyQ))
}

func TestToolbarShortcuts(t *testing.T) {
	_, s, cfg := newBoard(t)
	w := test.NewWindow(widget.NewLabel(""))
	t.Cleanup(w.Close)

	tb, _ := NewToolbar(s, cfg.Pen.SliderMin, cfg.Pen.SliderMax, w)
	tb.setColor("#ff0000")
	assert.Equal(t, "#ff0000", s.Color())

	tb.setColor("not a colour")
	assert.Equal(t, "#ff0000", s.Color())
	assert.NotEmpty(t, tb.status.Text)

	tb.key(session.KeyWipe)
	assert.Equal(t, "board wiped", tb.status.Text)

	assert.Equal(t, "8 px", tb.size.Text)
}
