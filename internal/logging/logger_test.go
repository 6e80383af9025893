package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gisops/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "op", "area")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "shown" || rec["op"] != "area" || rec["service"] != "gisops" {
		t.Errorf("record = %v", rec)
	}
	if _, ok := rec["timestamp"]; !ok {
		t.Errorf("timestamp key missing: %v", rec)
	}
}

func TestNewRotatedFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gisops.log")
	log := New(config.LogConfig{Level: "info", File: p, MaxSize: 1}, nil)
	log.Info("to file")
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Errorf("log file = %q", b)
	}
}
