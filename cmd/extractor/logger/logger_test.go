package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/HatiCode/fdynamics/cmd/extractor/config"
)

func TestNew_LogLevels(t *testing.T) {
	tests := []struct {
		logLevel string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"invalid", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			logger := New(&config.Config{LogFormat: "text", LogLevel: tt.logLevel})
			if !logger.Enabled(context.TODO(), tt.enabled) {
				t.Errorf("level %v disabled for %q", tt.enabled, tt.logLevel)
			}
			if logger.Enabled(context.TODO(), tt.disabled) {
				t.Errorf("level %v enabled for %q", tt.disabled, tt.logLevel)
			}
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&config.Config{LogFormat: "json", LogLevel: "info"}, &buf)

	logger.Info("tick complete", "source", "cpu", "features", 12)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "tick complete" {
		t.Errorf("msg = %v, want %q", entry["msg"], "tick complete")
	}
	if entry["source"] != "cpu" {
		t.Errorf("source = %v, want cpu", entry["source"])
	}
	if entry["features"] != float64(12) {
		t.Errorf("features = %v, want 12", entry["features"])
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&config.Config{LogFormat: "text", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected output %q", out)
	}
}
