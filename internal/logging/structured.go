package logging

import (
	"log/slog"
	"os"
)

// InitStructured reconfigures the operational logger based on format settings.
// format: "text" (default) or "json" (Loki/ELK compatible)
// level: "debug", "info", "warn", "error"
func InitStructured(format, level string) {
	SetLevelFromString(level)

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	opLogger.Store(logger)
}

// OpWithHost returns the operational logger scoped to a single host, the
// field nearly every log line in this package ends up keyed by.
func OpWithHost(host string) *slog.Logger {
	return opLogger.Load().With("host", host)
}
