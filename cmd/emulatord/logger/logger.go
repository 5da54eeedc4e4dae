// Package logger configures structured logging for the emulator daemon.
package logger

import (
	"log/slog"
	"os"

	"github.com/cosmohub/subgridemu/cmd/emulatord/config"
)

// New creates a slog.Logger from the daemon configuration. Supported
// formats are "text" and "json"; unknown values fall back to text.
func New(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
