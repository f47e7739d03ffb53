// Package logger holds the structured logger shared by every engine package.
// By default nothing is logged; call SetLogger to enable output.
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the engine logger. Passing nil restores the silent default.
// Safe for concurrent use.
//
// Levels used by the engine:
//   - [slog.LevelDebug]: plan sizes, cluster rebuilds, hardware op counts
//   - [slog.LevelInfo]: lifecycle (engine start/stop, device info)
//   - [slog.LevelWarn]: capacity exhaustion, missing textures, unusable materials
//
// Parameters:
//   - l: the logger to install
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// For returns the engine logger tagged with a component attribute.
//
// Parameters:
//   - component: short subsystem name such as "Renderer" or "RenderList"
//
// Returns:
//   - *slog.Logger: a child logger carrying component=<component>
func For(component string) *slog.Logger {
	return loggerPtr.Load().With(slog.String("component", component))
}
