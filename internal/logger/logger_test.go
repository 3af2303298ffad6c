package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "skipping page",
			fields:  Fields{"url": "https://example.com", "status_code": 404},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "fetch failed",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "writing output",
			err:     errors.New("disk full"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			assert.Equal(t, tt.want, buf.Len() > 0)
		})
	}
}

func TestLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf)

	logger.DebugErr("fetch failed", Fields{"url": "https://example.com/a"}, errors.New("connection refused"))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry.Level)
	assert.Equal(t, "fetch failed", entry.Message)
	assert.Equal(t, "connection refused", entry.Error)
	assert.Equal(t, "https://example.com/a", entry.Fields["url"])
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"info doesn't log at warn", LevelWarn, LevelInfo, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(tt.minLevel, &buf).log(tt.logLevel, "test", nil, nil)
			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("pages.fetched")
	m.IncrCounter("pages.fetched")
	m.IncrCounter("records.parsed")

	counters := m.GetSnapshot()["counters"].(map[string]int64)
	assert.Equal(t, int64(2), counters["pages.fetched"])
	assert.Equal(t, int64(1), counters["records.parsed"])
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("records.returned", 10)
	m.SetGauge("records.returned", 12)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	assert.Equal(t, 12.0, gauges["records.returned"])
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch.page", 100*time.Millisecond)
	m.RecordTiming("fetch.page", 200*time.Millisecond)
	m.RecordTiming("fetch.page", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})
	page := timings["fetch.page"]
	assert.Equal(t, 3, page["count"])
	assert.Equal(t, "100ms", page["min"])
	assert.Equal(t, "200ms", page["max"])
	assert.Equal(t, "150ms", page["average"])
}

func TestMetrics_SnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("pages.failed")

	snapshot := m.GetSnapshot()
	m.IncrCounter("pages.failed")

	assert.Equal(t, int64(1), snapshot["counters"].(map[string]int64)["pages.failed"])
	assert.Empty(t, snapshot["timings"].(map[string]map[string]interface{}))
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	previous := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(previous)

	Debug("debug", nil)
	Info("info", Fields{"key": "value"})
	Warn("warn", nil)
	Error("error", Fields{"component": "test"}, errors.New("test"))

	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"error":"test"`)

	DefaultMetrics().IncrCounter("test")
	DefaultMetrics().RecordTiming("test", time.Second)

	snapshot := GetMetricsSnapshot()
	require.NotNil(t, snapshot)
	assert.GreaterOrEqual(t, snapshot["counters"].(map[string]int64)["test"], int64(1))
}
