// Package prefs provides the string-keyed storage the whiteboard persists
// its drawing and pen settings to.
package prefs

import (
	"sync"
)

// Keys persisted by the whiteboard.
const (
	KeyDrawings = "drawings"
	KeyColor    = "color-picker"
	KeyPenSize  = "pen-size"
)

// Storage is a durable string-keyed store.
type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool)
	// Set stores value under key, durably before returning.
	Set(key, value string) error
}

// Memory is an in-process Storage, used by tests and throwaway sessions.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
