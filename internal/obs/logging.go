// Package obs carries ICU's ambient observability stack: structured
// logging via log/slog, Prometheus counters/histograms, and
// OpenTelemetry tracing spans around the scan pipeline.
package obs

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds a slog.Logger from a level name ("debug", "info",
// "warn", "error") and an output format ("text" or "json"). Unknown
// values fall back to info/text.
func NewLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
