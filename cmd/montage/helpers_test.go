package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"montage/internal/config"
	"montage/internal/testsupport"
)

var cliNotes = []testsupport.Note{
	{Instrument: "guitar_acoustic_010", Family: "guitar", Pitch: 60, Velocity: 50, Qualities: []string{"bright"}},
	{Instrument: "guitar_electronic_022", Family: "guitar", Pitch: 72, Velocity: 100},
	{Instrument: "bass_synthetic_033", Family: "bass", Pitch: 22, Velocity: 75, Qualities: []string{"dark"}},
	{Instrument: "guitar_acoustic_030", Family: "guitar", Pitch: 48, Velocity: 127, Qualities: []string{"dark", "bright"}},
}

// setupCLI writes a corpus and a config file describing it, returning both.
func setupCLI(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithTiming(config.Timing{
		MaxDurationSeconds: 60,
		ClipStartMs:        100,
		ClipDurationMs:     250,
		OverlapMs:          50,
		PadStartMs:         100,
		PadEndMs:           100,
	}))
	testsupport.WriteRecords(t, cfg, cliNotes...)
	testsupport.WriteSamples(t, cfg, 1000, 1000, cliNotes...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "montage.toml")
	writeTestConfig(t, configPath, cfg)
	return cfg, configPath
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}
