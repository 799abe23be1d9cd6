package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// mirrorErrors controls whether error records are also written to the
// console handler. The TUI turns it off while it owns the screen.
var mirrorErrors atomic.Bool

func init() {
	mirrorErrors.Store(true)
}

// EnableErrorMirroring restores console mirroring of error records.
func EnableErrorMirroring() {
	mirrorErrors.Store(true)
}

// DisableErrorMirroring stops error records from reaching the console
// handler. Used by interactive commands where stderr writes would corrupt
// the rendered screen.
func DisableErrorMirroring() {
	mirrorErrors.Store(false)
}

// NewDualHandler sends every enabled record to primary (normally the log
// file) and error records to console while mirroring is enabled.
func NewDualHandler(primary slog.Handler, console slog.Handler) slog.Handler {
	return &dualHandler{primary: primary, console: console}
}

type dualHandler struct {
	primary slog.Handler
	console slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.primary != nil && h.primary.Enabled(ctx, level) {
		return true
	}
	return h.mirrors(level) && h.console.Enabled(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.primary != nil && h.primary.Enabled(ctx, record.Level) {
		if err := h.primary.Handle(ctx, record); err != nil {
			return err
		}
	}
	if h.mirrors(record.Level) && h.console.Enabled(ctx, record.Level) {
		return h.console.Handle(ctx, record.Clone())
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h *dualHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := &dualHandler{}
	if h.primary != nil {
		next.primary = fn(h.primary)
	}
	if h.console != nil {
		next.console = fn(h.console)
	}
	return next
}

func (h *dualHandler) mirrors(level slog.Level) bool {
	return h.console != nil && level >= slog.LevelError && mirrorErrors.Load()
}
