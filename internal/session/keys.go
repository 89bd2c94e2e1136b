package session

import (
	"fmt"

	"whiteboard/internal/export"
	"whiteboard/internal/logging"
)

// Key names, as reported by DOM KeyboardEvent.key.
const (
	KeyWipe      = "Backspace"
	KeyExportPNG = "s"
	KeyExportPDF = "p"
)

// KeyAction is what a key press did.
type KeyAction int

const (
	KeyIgnored KeyAction = iota
	KeyWiped
	KeyExportedPNG
	KeyExportedPDF
)

// KeyResult describes a handled key. Path is set for exports.
type KeyResult struct {
	Action KeyAction
	Path   string
}

func (r KeyResult) String() string {
	switch r.Action {
	case KeyWiped:
		return "board wiped"
	case KeyExportedPNG, KeyExportedPDF:
		return "saved " + r.Path
	}
	return ""
}

// HandleKey runs the binding for key, if any.
func (s *Session) HandleKey(key string) (KeyResult, error) {
	switch key {
	case KeyWipe:
		return KeyResult{Action: KeyWiped}, s.Wipe()
	case KeyExportPNG:
		path, err := s.ExportPNG()
		return KeyResult{Action: KeyExportedPNG, Path: path}, err
	case KeyExportPDF:
		path, err := s.ExportPDF()
		return KeyResult{Action: KeyExportedPDF, Path: path}, err
	}
	return KeyResult{}, nil
}

// ExportPNG saves the current rendering to the export directory.
func (s *Session) ExportPNG() (string, error) {
	path := export.Path(s.cfg.Export.Directory, s.cfg.Export.Name, ".png")
	if err := export.PNG(s.renderer.Image(), path); err != nil {
		return "", fmt.Errorf("export png: %w", err)
	}
	logging.For("session").Info("exported", "path", path)
	return path, nil
}

// ExportPDF saves the current rendering as a one-page PDF.
func (s *Session) ExportPDF() (string, error) {
	path := export.Path(s.cfg.Export.Directory, s.cfg.Export.Name, ".pdf")
	if err := export.PDF(s.renderer.Image(), path); err != nil {
		return "", fmt.Errorf("export pdf: %w", err)
	}
	logging.For("session").Info("exported", "path", path)
	return path, nil
}
