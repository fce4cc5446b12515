package dither

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silent drops every record. Enabled reports false, so callers never
// format attributes for a disabled logger.
type silent struct{}

func (silent) Enabled(context.Context, slog.Level) bool  { return false }
func (silent) Handle(context.Context, slog.Record) error { return nil }
func (s silent) WithAttrs([]slog.Attr) slog.Handler      { return s }
func (s silent) WithGroup(string) slog.Handler           { return s }

var (
	quiet  = slog.New(silent{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(quiet) }

// SetLogger installs l as the logger of dither and every package under
// it. Nothing is logged until it is called; nil silences logging again.
// It may be called while other goroutines log.
//
// Records by level:
//   - [slog.LevelDebug]: frame scheduling, pipeline and buffer state
//   - [slog.LevelInfo]: device acquired, instance mounted, source switched
//   - [slog.LevelWarn]: graphics unavailable, autoplay refused, failed draws
//   - [slog.LevelError]: shader diagnostics and media failures
//
// Example:
//
//	dither.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = quiet
	}
	active.Store(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger { return active.Load() }
