// Package logger provides structured JSON logging and run metrics for o365-builds.
//
// Log lines are written as one JSON object per line so that diagnostics on stderr never
// mix with the SQL or record data the CLI prints on stdout. Levels are DEBUG, INFO, WARN
// and ERROR; entries carry a timestamp and arbitrary structured fields.
//
// Example usage:
//
//	logger.Info("skipping page", logger.Fields{
//	    "url":         url,
//	    "status_code": resp.StatusCode,
//	})
//
//	metrics := logger.DefaultMetrics()
//	metrics.IncrCounter("pages.skipped")
//	metrics.RecordTiming("fetch.page", time.Since(start))
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level == "WARNING" {
		level = LevelWarn
	}
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("unknown log level: %q", s)
	}
	return level, nil
}

// Logger provides structured logging
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	output   io.Writer
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, os.Stderr)
}

// New creates a logger that discards messages below level.
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		output:   output,
	}
}

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	return defaultLogger
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()

	if marshalErr != nil {
		fmt.Fprintf(l.output, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}

	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) shouldLog(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// DebugErr logs a debug message with an attached error, for failures that are tolerated.
func (l *Logger) DebugErr(message string, fields Fields, err error) {
	l.log(LevelDebug, message, fields, err)
}

// Info logs an informational message.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with the error that caused it.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

// Metrics tracks counters, gauges and timings for a run. Safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]*timing
}

// timing aggregates durations as they are recorded.
type timing struct {
	count    int
	total    time.Duration
	min, max time.Duration
}

func (t *timing) add(d time.Duration) {
	if t.count == 0 || d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
	t.count++
	t.total += d
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the tracker reported by GetMetricsSnapshot.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]*timing),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// SetGauge sets a gauge to value, overwriting any previous value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// RecordTiming adds a duration to the named timing.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timings[name]
	if !ok {
		t = &timing{}
		m.timings[name] = t
	}
	t.add(duration)
}

// GetSnapshot returns a copy of all metrics:
//   - "counters": counter name to value
//   - "gauges": gauge name to value
//   - "timings": timing name to count, total, average, min and max
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	gauges := make(map[string]float64, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}

	timings := make(map[string]map[string]interface{}, len(m.timings))
	for name, t := range m.timings {
		timings[name] = map[string]interface{}{
			"count":   t.count,
			"total":   t.total.String(),
			"average": (t.total / time.Duration(t.count)).String(),
			"min":     t.min.String(),
			"max":     t.max.String(),
		}
	}

	return map[string]interface{}{
		"counters": counters,
		"gauges":   gauges,
		"timings":  timings,
	}
}

// GetMetricsSnapshot returns a snapshot of the default metrics tracker.
func GetMetricsSnapshot() map[string]interface{} {
	return defaultMetrics.GetSnapshot()
}
