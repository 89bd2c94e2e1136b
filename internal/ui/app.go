package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"whiteboard/internal/config"
	"whiteboard/internal/logging"
	"whiteboard/internal/session"
)

// keyNames maps fyne key names to the DOM names the session binds.
var keyNames = map[fyne.KeyName]string{
	fyne.KeyBackspace: session.KeyWipe,
	fyne.KeyS:         session.KeyExportPNG,
	fyne.KeyP:         session.KeyExportPDF,
}

// KeyName returns the DOM name for k, or "" when k is not bound.
func KeyName(k fyne.KeyName) string {
	return keyNames[k]
}

// NewWindow builds the board window for s on a.
func NewWindow(a fyne.App, s *session.Session, cfg *config.Config) fyne.Window {
	w := a.NewWindow("Whiteboard")
	w.Resize(fyne.NewSize(float32(cfg.Canvas.Width), float32(cfg.Canvas.Height)))

	board := NewBoardWidget(s, cfg.Zoom)
	toolbar, bar := NewToolbar(s, cfg.Pen.SliderMin, cfg.Pen.SliderMax, w)
	board.OnStatus = toolbar.SetStatus

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		name := KeyName(ev.Name)
		if name == "" {
			return
		}
		toolbar.key(name)
	})
	w.SetOnClosed(func() {
		if err := s.Close(); err != nil {
			logging.For("ui").Error("persist on close", "err", err)
		}
	})

	w.SetContent(container.NewBorder(bar, nil, nil, nil, board))
	return w
}

// RunApp shows the board window and blocks until the app quits.
func RunApp(a fyne.App, s *session.Session, cfg *config.Config) {
	NewWindow(a, s, cfg).ShowAndRun()
}
