package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestSetupWriter_FiltersByLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := SetupWriter(&buf, "warn", true)
	log.Info("hidden")
	log.Warn("shown", "op", "load")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "op=load") {
		t.Fatalf("expected warn line with attrs: %q", out)
	}
	if slog.Default() != log {
		t.Fatalf("expected SetupWriter to install the default logger")
	}
}

func TestSetupFile_AppendsToPulseLog(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	log, closeFn, err := SetupFile(dir, "info")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info("board started")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "pulse.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "board started") {
		t.Fatalf("expected log line in file, got %q", b)
	}
}
