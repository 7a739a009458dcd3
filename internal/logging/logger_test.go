package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelWarn, &buf)

	logger.Debug("test.debug", "should be filtered", nil)
	logger.Info("test.info", "should be filtered", nil)
	logger.Warn("test.warn", "should appear", nil)
	logger.Error("test.error", "should appear", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}
}

func TestLoggerEventShape(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelDebug, &buf)

	logger.Info("capture.rule.done", "Rule captured", map[string]interface{}{
		"rule_id": "wallpaper",
	})

	var event Event
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}

	if event.Type != "capture.rule.done" {
		t.Errorf("event type = %q, want %q", event.Type, "capture.rule.done")
	}
	if event.Level != LevelInfo {
		t.Errorf("event level = %q, want %q", event.Level, LevelInfo)
	}
	if event.Payload["rule_id"] != "wallpaper" {
		t.Errorf("payload rule_id = %v, want %q", event.Payload["rule_id"], "wallpaper")
	}
	if event.Timestamp == "" {
		t.Error("event timestamp is empty")
	}
}
