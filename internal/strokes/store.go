// Package strokes records the drawing as an ordered, append-only sequence of
// true-space segments and keeps it in sync with durable storage.
package strokes

import (
	"encoding/json"
	"errors"
	"fmt"

	"whiteboard/internal/logging"
	"whiteboard/internal/prefs"
)

// Options tune persistence.
type Options struct {
	// PersistEvery persists after every Nth append. Values below 2 persist
	// on every append. Clear always persists immediately.
	PersistEvery int
}

// Store holds the segments of one board. It is not safe for concurrent use;
// the owning session serialises access.
type Store struct {
	storage prefs.Storage
	every   int
	segs    []Segment
	pending int
}

// Load reads the persisted drawing. Absent or unparsable data yields an
// empty store; individual invalid records are dropped.
func Load(storage prefs.Storage, opts Options) *Store {
	log := logging.For("strokes")
	s := &Store{storage: storage, every: opts.PersistEvery}
	if s.every < 1 {
		s.every = 1
	}

	raw, ok := storage.Get(prefs.KeyDrawings)
	if !ok || raw == "" {
		return s
	}
	var segs []Segment
	if err := json.Unmarshal([]byte(raw), &segs); err != nil {
		log.Warn("stored drawing is unreadable, starting empty", "err", err)
		return s
	}
	s.segs = make([]Segment, 0, len(segs))
	for i, seg := range segs {
		if err := seg.Validate(); err != nil {
			log.Warn("dropping stored segment", "index", i, "err", err)
			continue
		}
		s.segs = append(s.segs, seg)
	}
	log.Info("drawing loaded", "segments", len(s.segs))
	return s
}

// Append adds seg to the end of the drawing. An invalid segment is rejected
// untouched; a storage failure is returned but the segment stays recorded.
func (s *Store) Append(seg Segment) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	s.segs = append(s.segs, seg)
	s.pending++
	if s.pending >= s.every {
		return s.Persist()
	}
	return nil
}

// Clear empties the drawing and persists the empty sequence.
func (s *Store) Clear() error {
	s.segs = s.segs[:0]
	return s.Persist()
}

// Persist writes the whole sequence to storage.
func (s *Store) Persist() error {
	data, err := json.Marshal(s.segments())
	if err != nil {
		return fmt.Errorf("encode drawing: %w", err)
	}
	if err := s.storage.Set(prefs.KeyDrawings, string(data)); err != nil {
		return fmt.Errorf("persist drawing: %w", err)
	}
	s.pending = 0
	return nil
}

// Flush persists if appends are waiting on the batch threshold.
func (s *Store) Flush() error {
	if s.pending == 0 {
		return nil
	}
	return s.Persist()
}

// Pending reports how many appends have not been persisted yet.
func (s *Store) Pending() int { return s.pending }

// Len returns the number of segments.
func (s *Store) Len() int { return len(s.segs) }

// Segments returns a copy of the drawing.
func (s *Store) Segments() []Segment {
	out := make([]Segment, len(s.segs))
	copy(out, s.segs)
	return out
}

// Each calls fn for every segment in drawing order without copying.
func (s *Store) Each(fn func(Segment)) {
	for _, seg := range s.segs {
		fn(seg)
	}
}

// segments never returns nil so an empty drawing is stored as [].
func (s *Store) segments() []Segment {
	if s.segs == nil {
		return []Segment{}
	}
	return s.segs
}

// IsInvalid reports whether err came from segment validation.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidSegment)
}
