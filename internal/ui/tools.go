package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"whiteboard/internal/render"
	"whiteboard/internal/session"
)

// Palette is the row of quick colour swatches.
var Palette = []string{"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00"}

type colorSwatch struct {
	widget.BaseWidget
	Color    string
	OnTapped func(string)
}

func newColorSwatch(c string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill, _ := render.ParseColor(s.Color)
	rect := canvas.NewRectangle(fill)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the pen controls of one board.
type Toolbar struct {
	session *session.Session
	window  fyne.Window

	lastColor string
	size      *widget.Label
	status    *widget.Label
}

// NewToolbar builds the controls for s. The window parents dialogs.
func NewToolbar(s *session.Session, min, max float64, w fyne.Window) (*Toolbar, fyne.CanvasObject) {
	t := &Toolbar{
		session:   s,
		window:    w,
		lastColor: s.Color(),
		size:      widget.NewLabel(""),
		status:    widget.NewLabel(""),
	}
	t.showSize()

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			t.setColor(t.lastColor)
		}), // Pen
		widget.NewToolbarAction(theme.ContentRemoveIcon(), func() {
			t.apply(s.SetColor(s.Background()))
		}), // Eraser
		widget.NewToolbarAction(theme.ColorPaletteIcon(), t.pickColor),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			t.key(session.KeyWipe)
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			t.key(session.KeyExportPNG)
		}),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			t.key(session.KeyExportPDF)
		}),
	)

	swatches := container.NewHBox()
	for _, c := range Palette {
		swatches.Add(newColorSwatch(c, t.setColor))
	}

	slider := widget.NewSlider(min, max)
	slider.Step = 1
	slider.SetValue(s.PenSize())
	slider.OnChanged = func(v float64) {
		t.apply(s.SetPenSize(v))
		t.showSize()
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), slider)

	return t, container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		sliderBox,
		t.size,
		layout.NewSpacer(),
		t.status,
	)
}

func (t *Toolbar) setColor(c string) {
	if err := t.session.SetColor(c); err != nil {
		t.apply(err)
		return
	}
	t.lastColor = c
}

func (t *Toolbar) pickColor() {
	d := dialog.NewColorPicker("Pen colour", "", func(c color.Color) {
		t.setColor(render.Hex(c))
	}, t.window)
	d.Advanced = true
	d.Show()
}

// key runs a board shortcut and reports its outcome.
func (t *Toolbar) key(name string) {
	res, err := t.session.HandleKey(name)
	if err != nil {
		t.apply(err)
		return
	}
	t.SetStatus(res.String())
}

func (t *Toolbar) apply(err error) {
	if err != nil {
		t.SetStatus(err.Error())
	}
}

func (t *Toolbar) showSize() {
	t.size.SetText(fmt.Sprintf("%d px", int(t.session.PenWidth())))
}

// SetStatus shows msg at the end of the toolbar.
func (t *Toolbar) SetStatus(msg string) {
	t.status.SetText(msg)
}
