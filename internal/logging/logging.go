// Package logging configures colored structured logging with tint.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler on stderr as the slog default.
func Setup(level string) *slog.Logger {
	return SetupWriter(os.Stderr, level, false)
}

// SetupWriter installs a tint handler writing to w.
func SetupWriter(w io.Writer, level string, noColor bool) *slog.Logger {
	l := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
	slog.SetDefault(l)
	return l
}

// SetupFile sends logs to <dir>/pulse.log (used while the TUI owns the terminal).
func SetupFile(dir, level string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "pulse.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return SetupWriter(f, level, true), f.Close, nil
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
