package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"montage/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory: records at
// <base>/examples.json, samples under <base>/audio, WAV output under
// <base>/output. The canvas is 1 kHz mono 16-bit so one frame is one
// millisecond.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Records = filepath.Join(base, "examples.json")
	cfgVal.Paths.AudioPattern = filepath.Join(base, "audio", "%s.wav")
	cfgVal.Paths.Output = filepath.Join(base, "output", "examples.wav")
	cfgVal.Paths.Manifest = filepath.Join(base, "output", "examples.json")
	cfgVal.Paths.LogDir = ""
	cfgVal.Query.KeyField = "note_str"
	cfgVal.Audio.SampleRate = 1000
	cfgVal.Audio.Channels = 1
	cfgVal.Audio.BitDepth = 16
	cfgVal.Audio.DecodeWorkers = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return builder.cfg
}

// WithFilters sets the query filters.
func WithFilters(filters ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Query.Filters = filters
	}
}

// WithSort sets the query sort keys.
func WithSort(keys ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Query.Sort = keys
	}
}

// WithTiming replaces the timing section.
func WithTiming(timing config.Timing) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Timing = timing
	}
}

// WithOutput places the output and manifest under the temp directory using
// the given file names. An empty manifest name disables the manifest.
func WithOutput(output, manifest string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Output = filepath.Join(b.baseDir, "output", output)
		b.cfg.Paths.Manifest = ""
		if manifest != "" {
			b.cfg.Paths.Manifest = filepath.Join(b.baseDir, "output", manifest)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Records)
}
