package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures New.
type Options struct {
	Level   string
	File    string
	Console io.Writer
}

// New builds the application logger: JSON records at the configured level go
// to the log file, error records are mirrored to Console in friendly form.
// The returned closer releases the log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := ConfigLevelStringToSlogLevel(opts.Level)
	closer := func() error { return nil }

	var primary slog.Handler
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, closer, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = f.Close
		primary = slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceLevelNames,
		})
	}

	var console slog.Handler
	if opts.Console != nil {
		console = NewFriendlyErrorHandler(opts.Console)
	}

	return slog.New(NewDualHandler(primary, console)), closer, nil
}

func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
