package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup initialises the global slog default logger. Every record carries
// the service name so the api, migrate, and any future binaries are
// distinguishable in aggregated logs.
// level may be "debug", "info", "warn", or "error" (default "info");
// format may be "json" or "text" (default "json"). Debug level also
// enables source locations.
func Setup(service, level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", service))
}
