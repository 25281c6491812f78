package main

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// newLogger writes component diagnostics to w. Only warnings and errors are
// shown; --quiet keeps errors alone.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if quiet {
		level = slog.LevelError
	}

	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}
