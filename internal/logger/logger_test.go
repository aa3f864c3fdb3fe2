package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in, slog.LevelInfo); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProdLoggerWritesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "prod", "")

	log.Debug("hidden")
	log.Info("server starting", "port", "7878")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatal("debug should be filtered in prod by default")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", out, err)
	}
	if rec["msg"] != "server starting" || rec["port"] != "7878" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestDevLoggerWritesText(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "dev", "")

	log.Debug("worker exiting", "worker", 3)

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "worker=3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLevelOverride(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "dev", "error")

	log.Warn("dropped")
	log.Error("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Error("warn should be filtered at error level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("expected error record")
	}
}
