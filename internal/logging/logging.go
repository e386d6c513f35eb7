// Package logging provides structured, standards-compliant logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging. The default writer is stderr so log
// lines never interleave with the terminal UI on stdout.
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	minLevel Level

	component string
	sessionID string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stderr,
		minLevel: LevelInfo,
	}
}

// Discard creates a Logger that drops everything. Used when the UI owns the
// terminal and no debug file is configured.
func Discard() *Logger {
	return &Logger{
		output:   io.Discard,
		minLevel: LevelError,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		sessionID: l.sessionID,
	}
}

// WithSessionID returns a new logger tagged with a connection session id.
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		sessionID: sessionID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.sessionID != "" {
		fieldStr += " session=" + l.sessionID
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Connection lifecycle ---

// Connected logs a successful dial.
func (l *Logger) Connected(url string, attempt int) {
	l.Info("connected", map[string]interface{}{
		"url":     url,
		"attempt": attempt,
	})
}

// Disconnected logs a dropped connection.
func (l *Logger) Disconnected(err error) {
	fields := map[string]interface{}{}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Warn("disconnected", fields)
}

// Reconnecting logs a scheduled reconnect attempt.
func (l *Logger) Reconnecting(attempt int, delay time.Duration) {
	l.Info("reconnecting", map[string]interface{}{
		"attempt": attempt,
		"delay":   delay.String(),
	})
}

// CommandSent logs an outbound control command.
func (l *Logger) CommandSent(cmd string) {
	l.Debug("command_sent", map[string]interface{}{
		"cmd": cmd,
	})
}

// --- Message handling ---

// MessageDropped logs an inbound frame that could not be dispatched.
func (l *Logger) MessageDropped(reason string, size int) {
	l.Warn("message_dropped", map[string]interface{}{
		"reason": reason,
		"bytes":  size,
	})
}

// HandlerPanic logs a recovered handler panic. One bad handler must not take
// down the read loop.
func (l *Logger) HandlerPanic(event string, recovered interface{}) {
	l.Error("handler_panic", map[string]interface{}{
		"event": event,
		"panic": fmt.Sprintf("%v", recovered),
	})
}

// TapError logs a failed publish to the event tap.
func (l *Logger) TapError(subject string, err error) {
	l.Warn("tap_publish_failed", map[string]interface{}{
		"subject": subject,
		"error":   err.Error(),
	})
}

// --- Replay and history ---

// RecordLoaded logs a parsed replay file.
func (l *Logger) RecordLoaded(path string, steps int) {
	l.Info("record_loaded", map[string]interface{}{
		"path":  path,
		"steps": steps,
	})
}

// GameArchived logs a finished game moving into history.
func (l *Logger) GameArchived(id string, winner string, rounds int) {
	l.Info("game_archived", map[string]interface{}{
		"game":   id,
		"winner": winner,
		"rounds": rounds,
	})
}
