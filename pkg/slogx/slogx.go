// Package slogx configures the structured logger shared by every comitte
// binary and carries request-scoped loggers through context. Auth decisions,
// session sweeps and request outcomes all land in one stream with the same
// service fields attached.
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler for a process-wide logger. Service, Version and
// Env are stamped on every record so aggregation can tell instances apart.
type Config struct {
	Service string
	Version string
	Env     string // "dev" enables source locations
	Level   string // debug, info, warn, error
	Format  string // json or text
}

// New builds the logger for cfg, installs it as the slog default and returns
// it. Output goes to stderr so structured logs stay separate from anything a
// command prints for the operator.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     levelFor(cfg.Level),
		AddSource: strings.EqualFold(cfg.Env, "dev"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)
	slog.SetDefault(logger)

	return logger
}

func levelFor(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
