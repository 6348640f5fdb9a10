package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"montage/internal/config"
	"montage/internal/logging"
	"montage/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message", logging.Int("clips", 4))

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, "montage.log"))
	if !strings.Contains(content, "debug message") || !strings.Contains(content, "clips: 4") {
		t.Fatalf("unexpected log content %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleInfoUsesLabelsAndHidesCorrelation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-123")
	ctx = services.WithStage(ctx, "place")
	ctx = services.WithRecordKey(ctx, "bass_synthetic_033-022-050")
	logging.WithContext(ctx, logger).Info("placed clip", logging.Int("offset_ms", 200))

	content := readLog(t, logPath)
	if !strings.Contains(content, "place · bass_synthetic_033-022-050 – placed clip") {
		t.Fatalf("expected subject in header, got %q", content)
	}
	if !strings.Contains(content, "- Offset Ms: 200") {
		t.Fatalf("expected labelled field, got %q", content)
	}
	if strings.Contains(content, "run-123") {
		t.Fatalf("expected run id hidden at info level, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleDebugIncludesRawKeysAndCaller(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-456")
	logging.WithContext(ctx, logger).Debug("budget", logging.String("note", "two words"))

	content := readLog(t, logPath)
	for _, want := range []string{"run_id: run-456", "note: two words", ".go:"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "clip empty", "clip_empty", logging.Error(errors.New("short source")))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace([]byte(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" || entry["msg"] != "clip empty" {
		t.Fatalf("unexpected entry %v", entry)
	}
	for _, key := range []string{"ts", logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected %s in %v", key, entry)
		}
	}
}

func TestWithContextWithoutFieldsReturnsSameLogger(t *testing.T) {
	logger := logging.NewNop()
	if got := logging.WithContext(context.Background(), logger); got != logger {
		t.Fatal("expected the same logger when context carries no fields")
	}
	if logging.WithContext(context.Background(), nil) == nil {
		t.Fatal("expected a no-op logger for nil input")
	}
}

func TestFormatSubject(t *testing.T) {
	cases := map[[2]string]string{
		{"place", "k"}: "place · k",
		{"place", ""}:  "place",
		{"", "k"}:      "k",
		{" ", " "}:     "",
	}
	for in, want := range cases {
		if got := logging.FormatSubject(in[0], in[1]); got != want {
			t.Fatalf("FormatSubject(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestNoopHandlerDisabled(t *testing.T) {
	if logging.NewNop().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
