package logger

import (
	"bytes"
	"context"
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
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "warn", ""))
	log.Info("hidden")
	log.Warn("shown", "challenge_id", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "challenge_id=3") {
		t.Fatalf("missing warn record: %q", out)
	}
	if New(&buf, "debug", "").Enabled(context.Background(), slog.LevelDebug) == false {
		t.Fatalf("expected debug to be enabled")
	}
}

func TestNewLogsInvalidSentryDSN(t *testing.T) {
	var buf bytes.Buffer
	handler := New(&buf, "info", "not-a-dsn")
	if !strings.Contains(buf.String(), "failed to init sentry") {
		t.Fatalf("expected sentry warning, got %q", buf.String())
	}
	slog.New(handler).Error("still logged")
	if !strings.Contains(buf.String(), "still logged") {
		t.Fatalf("expected local logging to keep working: %q", buf.String())
	}
}

func TestInitWritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "nested", "challenger.log")
	closeLog, err := Init(Options{Level: "info", Path: path})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	slog.Info("hello", "user_id", 7)
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "user_id=7") {
		t.Fatalf("unexpected log contents %q", data)
	}
}
