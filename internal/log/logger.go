// Package log builds the structured logger used by the rawhttp command.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "RAWHTTP_LOG_LEVEL"

type Config struct {
	// Level is one of debug, info, warn, error. Unknown values mean warn.
	Level  string
	Format Format
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv applies EnvLevel on top of cfg.
func FromEnv(cfg Config) Config {
	if level := os.Getenv(EnvLevel); level != "" {
		cfg.Level = strings.ToLower(level)
	}
	return cfg
}

func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
