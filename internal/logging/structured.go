// Package logging provides structured JSON logging for rutacat components.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event represents a structured log event
type Event struct {
	Timestamp  string         `json:"ts"`
	Level      Level          `json:"level"`
	Component  string         `json:"component"`
	Event      string         `json:"event"`
	Cadence    string         `json:"cadence,omitempty"`
	Key        string         `json:"key,omitempty"`
	Difficulty string         `json:"difficulty,omitempty"`
	Duration   int64          `json:"duration_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Logger provides structured logging
type Logger struct {
	component  string
	cadence    string
	key        string
	difficulty string
	out        io.Writer
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component, out: os.Stderr}
}

// WithSlot sets the puzzle slot context carried on every event.
func (l *Logger) WithSlot(cadence, key, difficulty string) *Logger {
	return &Logger{
		component:  l.component,
		cadence:    cadence,
		key:        key,
		difficulty: difficulty,
		out:        l.out,
	}
}

// WithOutput redirects the logger (for tests).
func (l *Logger) WithOutput(w io.Writer) *Logger {
	out := *l
	out.out = w
	return &out
}

// log emits a structured log event
func (l *Logger) log(level Level, event string, extra map[string]any, err error) {
	e := Event{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Level:      level,
		Component:  l.component,
		Event:      event,
		Cadence:    l.cadence,
		Key:        l.key,
		Difficulty: l.difficulty,
		Extra:      extra,
	}

	if err != nil {
		e.Error = err.Error()
	}

	data, _ := json.Marshal(e)
	fmt.Fprintln(l.out, string(data))
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]any) {
	l.log(LevelDebug, event, extra, nil)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]any) {
	l.log(LevelInfo, event, extra, nil)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]any, err error) {
	l.log(LevelWarn, event, extra, err)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]any, err error) {
	l.log(LevelError, event, extra, err)
}

// TimedEvent logs an event with duration
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]any) {
	e := Event{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Level:      LevelInfo,
		Component:  l.component,
		Event:      event,
		Cadence:    l.cadence,
		Key:        l.key,
		Difficulty: l.difficulty,
		Duration:   time.Since(start).Milliseconds(),
		Extra:      extra,
	}

	data, _ := json.Marshal(e)
	fmt.Fprintln(l.out, string(data))
}

// GenerateEvent logs the outcome of one level generation.
func GenerateEvent(cadence, key, difficulty string, created bool, fallback bool, duration time.Duration, err error) {
	e := Event{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Level:      LevelInfo,
		Component:  "schedule",
		Event:      "generate",
		Cadence:    cadence,
		Key:        key,
		Difficulty: difficulty,
		Duration:   duration.Milliseconds(),
		Extra: map[string]any{
			"created":  created,
			"fallback": fallback,
		},
	}

	if err != nil {
		e.Level = LevelError
		e.Error = err.Error()
	}

	data, _ := json.Marshal(e)
	fmt.Fprintln(os.Stderr, string(data))
}
