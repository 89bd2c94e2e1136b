package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/prefs"
	"whiteboard/internal/strokes"
	"whiteboard/internal/viewport"
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

func storeWith(t *testing.T, segs ...strokes.Segment) *strokes.Store {
	t.Helper()
	s := strokes.Load(prefs.NewMemory(), strokes.Options{})
	for _, seg := range segs {
		require.NoError(t, s.Append(seg))
	}
	return s
}

func rgba(r *Renderer, x, y int) color.RGBA {
	return r.Image().RGBAAt(x, y)
}

func TestBackgroundFill(t *testing.T) {
	r := New(20, 10, white)
	r.Redraw(viewport.Identity(), storeWith(t))

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(r, 0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(r, 19, 9))
}

func TestRedrawIsIdempotent(t *testing.T) {
	store := storeWith(t,
		strokes.Segment{X0: 0, Y0: 0, X1: 50, Y1: 40, Color: "#ff0000", Width: 3},
		strokes.Segment{X0: 50, Y0: 40, X1: 10, Y1: 70, Color: "navy", Width: 5},
	)
	view := viewport.Transform{OffsetX: 4, OffsetY: -2, Scale: 1.3}
	r := New(100, 100, white)

	r.Redraw(view, store)
	first := r.Snapshot()
	r.Redraw(view, store)

	assert.Equal(t, first.Pix, r.Image().Pix)
}

func TestSegmentIsProjected(t *testing.T) {
	store := storeWith(t, strokes.Segment{X0: 10, Y0: 10, X1: 30, Y1: 10, Color: "#000000", Width: 4})
	r := New(100, 100, white)

	r.Redraw(viewport.Identity(), store)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgba(r, 20, 10))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(r, 60, 20))

	// Offset (20, 10) at scale 2 puts the midpoint at (80, 40).
	r.Redraw(viewport.Transform{OffsetX: 20, OffsetY: 10, Scale: 2}, store)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgba(r, 80, 40))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgba(r, 80, 37), "width scales with zoom")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(r, 20, 10))
}

func TestZeroLengthSegmentIsADot(t *testing.T) {
	store := storeWith(t, strokes.Segment{X0: 50, Y0: 50, X1: 50, Y1: 50, Color: "#000000", Width: 6})
	r := New(100, 100, white)
	r.Redraw(viewport.Identity(), store)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgba(r, 50, 50))
}

func TestZeroWidthPaintsNothing(t *testing.T) {
	store := storeWith(t, strokes.Segment{X0: 0, Y0: 50, X1: 100, Y1: 50, Color: "#000000", Width: 0})
	r := New(100, 100, white)
	r.Redraw(viewport.Identity(), store)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(r, 50, 50))
}

func TestUnknownColorPaintsBlack(t *testing.T) {
	r := New(100, 100, white)
	r.Line(0, 50, 100, 50, "not-a-color", 4)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgba(r, 50, 50))
}

func TestResize(t *testing.T) {
	r := New(10, 10, white)
	assert.False(t, r.Resize(10, 10))
	assert.True(t, r.Resize(40, 30))
	w, h := r.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)

	r.Resize(0, -5)
	w, h = r.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestResizeIsBounded(t *testing.T) {
	r := New(10, 10, white)
	r.SetMaxSize(64, 32)

	assert.True(t, r.Resize(1<<31, 1<<31))
	w, h := r.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.False(t, r.Resize(100, 100))

	r.SetMaxSize(0, -1)
	mw, mh := r.MaxSize()
	assert.Equal(t, 64, mw)
	assert.Equal(t, 32, mh)
}

func TestEncodePNG(t *testing.T) {
	r := New(16, 8, white)
	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#000000":   {0, 0, 0, 255},
		"#FF8000":   {255, 128, 0, 255},
		"#f80":      {255, 136, 0, 255},
		"#11223344": {0x11, 0x22, 0x33, 0x44},
		"red":       {255, 0, 0, 255},
		" Blue ":    {0, 0, 255, 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "#12", "#gggggg", "chartreuse-ish", "123456"} {
		_, err := ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff8000", Hex(color.NRGBA{255, 128, 0, 255}))
	assert.Equal(t, "#000000", Hex(color.Black))
}
