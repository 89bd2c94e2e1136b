package strokes

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSegment is returned for segments with missing or unusable fields.
var ErrInvalidSegment = errors.New("invalid segment")

// Segment is one straight stroke between two true-space points. Width is in
// true-space units, so it scales with zoom.
type Segment struct {
	X0    float64 `json:"x0"`
	Y0    float64 `json:"y0"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Validate reports whether s can be stored and drawn. Zero coordinates and
// zero width are valid.
func (s Segment) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{{"x0", s.X0}, {"y0", s.Y0}, {"x1", s.X1}, {"y1", s.Y1}, {"width", s.Width}} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidSegment, c.name, c.v)
		}
	}
	if s.Width < 0 {
		return fmt.Errorf("%w: negative width %v", ErrInvalidSegment, s.Width)
	}
	if s.Color == "" {
		return fmt.Errorf("%w: missing color", ErrInvalidSegment)
	}
	return nil
}
