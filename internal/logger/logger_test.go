package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level LogLevel, format LogFormat) *Logger {
	return New(Config{
		Level:     level,
		Format:    format,
		Output:    buf,
		Component: ComponentSeries,
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for i, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected int
	}{
		{DEBUG, 4},
		{INFO, 3},
		{WARN, 2},
		{ERROR, 1},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			log := newTestLogger(&buf, tt.level, JSONFormat)

			log.Debug("pivot started")
			log.Info("pivot finished")
			log.Warn("no rows for share year")
			log.Error("normalize failed", errors.New("boom"))

			if got := len(decodeLines(t, &buf)); got != tt.expected {
				t.Errorf("Expected %d log lines, got %d", tt.expected, got)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, INFO, JSONFormat)

	log.Info("pivot finished", Fields{
		"rows":        24,
		"granularity": "monthly",
	})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry.Level != "INFO" {
		t.Errorf("Expected level INFO, got %s", entry.Level)
	}
	if entry.Message != "pivot finished" {
		t.Errorf("Expected message 'pivot finished', got %s", entry.Message)
	}
	if entry.Component != ComponentSeries {
		t.Errorf("Expected component %s, got %s", ComponentSeries, entry.Component)
	}
	if entry.Fields["rows"] != float64(24) {
		t.Errorf("Expected rows=24, got %v", entry.Fields["rows"])
	}
	if entry.Fields["granularity"] != "monthly" {
		t.Errorf("Expected granularity=monthly, got %v", entry.Fields["granularity"])
	}
	if !strings.HasSuffix(entry.File, "logger_test.go") {
		t.Errorf("Expected caller file logger_test.go, got %s", entry.File)
	}
}

func TestTextFormatSortsFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, INFO, TextFormat)

	log.Info("fetched records", Fields{"records": 3, "dataset": "electricity-generation"})

	output := buf.String()
	for _, want := range []string{"INFO", "[series]", "fetched records", "fields={dataset=electricity-generation, records=3}"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got %q", want, output)
		}
	}
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, INFO, JSONFormat)

	child := base.WithComponent(ComponentFetcher).With(Fields{"entity_code": "CHN"})
	child.Info("request sent", Fields{"status": 200})
	base.Info("base untouched")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Component != ComponentFetcher {
		t.Errorf("Expected component %s, got %s", ComponentFetcher, entries[0].Component)
	}
	if entries[0].Fields["entity_code"] != "CHN" || entries[0].Fields["status"] != float64(200) {
		t.Errorf("Expected merged fields, got %v", entries[0].Fields)
	}
	if entries[1].Component != ComponentSeries || len(entries[1].Fields) != 0 {
		t.Errorf("Expected parent logger unchanged, got %+v", entries[1])
	}
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, ERROR, JSONFormat)

	log.Error("section failed", errors.New("status 401"), Fields{"section": "monthly"})

	entries := decodeLines(t, &buf)
	if entries[0].Error != "status 401" {
		t.Errorf("Expected error 'status 401', got %s", entries[0].Error)
	}
	if entries[0].Fields["section"] != "monthly" {
		t.Errorf("Expected section field, got %v", entries[0].Fields["section"])
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer

	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	SetGlobalLogger(New(Config{Level: INFO, Format: JSONFormat, Output: &buf}))

	Info("global info message")
	Warn("global warn message")
	For(ComponentServer).Info("component message")

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Level != "INFO" || entries[1].Level != "WARN" {
		t.Errorf("Unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
	if entries[2].Component != ComponentServer {
		t.Errorf("Expected component %s, got %s", ComponentServer, entries[2].Component)
	}
}

func TestConfigure(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	SetGlobalLogger(NewDefault())

	Configure("debug", "text")
	if !GetGlobalLogger().Enabled(DEBUG) {
		t.Error("Expected DEBUG to be enabled")
	}
	if GetGlobalLogger().format != TextFormat {
		t.Error("Expected text format")
	}

	// unknown values keep the current settings
	Configure("verbose", "xml")
	if !GetGlobalLogger().Enabled(DEBUG) || GetGlobalLogger().format != TextFormat {
		t.Error("Expected settings unchanged for unknown values")
	}

	// test output is never a terminal
	Configure("warn", "auto")
	if GetGlobalLogger().Enabled(INFO) {
		t.Error("Expected INFO to be disabled at WARN")
	}
	if GetGlobalLogger().format != JSONFormat {
		t.Error("Expected auto format to pick JSON off a terminal")
	}
}

func TestParseLogLevelAndFormat(t *testing.T) {
	levels := map[string]LogLevel{"DEBUG": DEBUG, "info": INFO, "Warning": WARN, "error": ERROR, "fatal": FATAL}
	for in, want := range levels {
		got, ok := parseLogLevel(in)
		if !ok || got != want {
			t.Errorf("parseLogLevel(%q): expected %v, got %v (ok=%v)", in, want, got, ok)
		}
	}
	if _, ok := parseLogLevel(""); ok {
		t.Error("Expected empty level to be rejected")
	}

	if f, ok := parseLogFormat("JSON"); !ok || f != JSONFormat {
		t.Errorf("Expected JSONFormat, got %v", f)
	}
	if f, ok := parseLogFormat("text"); !ok || f != TextFormat {
		t.Errorf("Expected TextFormat, got %v", f)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{FATAL, "FATAL"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if tt.level.String() != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, tt.level.String())
		}
	}
}

func BenchmarkJSONLogging(b *testing.B) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Info("benchmark message", Fields{"iteration": i})
	}
}

func BenchmarkLevelFiltering(b *testing.B) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Format: JSONFormat, Output: &buf})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Debug("filtered")
	}
}
