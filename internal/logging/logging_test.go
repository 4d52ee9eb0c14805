package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithSink(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewWithSink("info", "json", zapcore.AddSync(&buf))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		logger.Debug("hidden")
		logger.Info("plan generated", zap.Int("filled", 3))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
			t.Fatalf("Expected JSON output, got %v", err)
		}
		if entry["msg"] != "plan generated" || entry["service"] != "meal-planner" || entry["filled"] != float64(3) {
			t.Errorf("Unexpected entry: %v", entry)
		}
	})

	t.Run("Console", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewWithSink("debug", "console", zapcore.AddSync(&buf))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		logger.Warn("slot left empty")
		if !strings.Contains(buf.String(), "WRN") {
			t.Errorf("Expected short level name, got %q", buf.String())
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if _, err := NewWithSink("loud", "json", zapcore.AddSync(&bytes.Buffer{})); err == nil {
			t.Error("Expected an error for an unknown level")
		}
		if _, err := NewWithSink("info", "xml", zapcore.AddSync(&bytes.Buffer{})); err == nil {
			t.Error("Expected an error for an unknown format")
		}
	})
}
