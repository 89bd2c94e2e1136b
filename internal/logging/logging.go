// Package logging holds the process-wide logger shared by the whiteboard
// packages. Nothing is logged until SetLogger is called.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l as the shared logger. Pass nil to silence logging again.
//
// Levels used:
//   - [slog.LevelDebug]: per-event diagnostics (gesture transitions, frame sizes)
//   - [slog.LevelInfo]: lifecycle (storage loaded, server listening, exports)
//   - [slog.LevelWarn]: recoverable problems (corrupt storage, failed writes)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the shared logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// For returns the shared logger tagged with a component attribute.
func For(component string) *slog.Logger {
	return Logger().With("component", component)
}
