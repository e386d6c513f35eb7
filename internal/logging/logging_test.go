package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelInfo)

	// Debug should be filtered
	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("debug message should be filtered at INFO level")
	}

	// Info should pass
	logger.Info("info message")
	if buf.Len() == 0 {
		t.Error("info message should be logged")
	}

	line := buf.String()
	if !strings.HasPrefix(line, "INFO ") {
		t.Errorf("expected INFO prefix, got %q", line)
	}
	if !strings.Contains(line, "info message") {
		t.Errorf("expected message in line, got %q", line)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithComponent("live")
	logger.SetOutput(&buf)

	logger.Info("test message")

	if !strings.Contains(buf.String(), "[live]") {
		t.Errorf("expected component tag, got %q", buf.String())
	}
}

func TestLogger_WithSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithSessionID("c9f3")
	logger.SetOutput(&buf)

	logger.Info("test message")

	if !strings.Contains(buf.String(), "session=c9f3") {
		t.Errorf("expected session field, got %q", buf.String())
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.Info("connected", map[string]interface{}{
		"url":     "ws://localhost:8080/ws",
		"attempt": 1,
	})

	line := buf.String()
	if !strings.Contains(line, "url=ws://localhost:8080/ws") {
		t.Errorf("expected url field, got %q", line)
	}
	if !strings.Contains(line, "attempt=1") {
		t.Errorf("expected attempt field, got %q", line)
	}
}

func TestLogger_CommandSentDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.CommandSent("pause")
	if buf.Len() > 0 {
		t.Error("command_sent should be filtered at the default level")
	}

	logger.SetLevel(LevelDebug)
	logger.CommandSent("pause")
	if !strings.Contains(buf.String(), "cmd=pause") {
		t.Errorf("expected cmd field, got %q", buf.String())
	}
}

func TestLogger_HandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.HandlerPanic("vote_result", "index out of range")

	line := buf.String()
	if !strings.HasPrefix(line, "ERROR") {
		t.Errorf("handler panic should be ERROR level: %q", line)
	}
	if !strings.Contains(line, "event=vote_result") {
		t.Errorf("expected event field, got %q", line)
	}
}
