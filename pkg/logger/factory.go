// Package logger provides slog factories for pipeline diagnostics.
//
// Diagnostics go to stderr, never stdout: in CLI mode stdout carries the
// echoed log stream and must stay clean for downstream consumers.
package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON-formatted diagnostics logger writing to stderr.
// With debug enabled the level drops to slog.LevelDebug, which surfaces
// per-line events such as dropped malformed input.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
