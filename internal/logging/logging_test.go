package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf, Prefix: "test"})

	l.WithComponent("surface").WithField("block", 2).Info("applied %s", "bold")

	line := strings.TrimSpace(buf.String())
	if got := gjson.Get(line, "message").String(); got != "applied bold" {
		t.Errorf("message = %q", got)
	}
	if got := gjson.Get(line, "component").String(); got != "surface" {
		t.Errorf("component = %q", got)
	}
	if got := gjson.Get(line, "block").Int(); got != 2 {
		t.Errorf("block = %d", got)
	}
	if got := gjson.Get(line, "app").String(); got != "test" {
		t.Errorf("app = %q", got)
	}
	if got := gjson.Get(line, "level").String(); got != "info" {
		t.Errorf("level = %q", got)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	l.Err(errors.New("boom"), "failed")
	if got := gjson.Get(buf.String(), "error").String(); got != "boom" {
		t.Errorf("error field = %q", got)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing %d", 1)
	l.WithFields(map[string]any{"a": 1}).Warn("still nothing")
}
