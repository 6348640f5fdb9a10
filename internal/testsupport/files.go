package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"montage/internal/audio"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Tone returns durationMs of a constant sample value in format.
func Tone(format audio.Format, durationMs int, value int32) *audio.Buffer {
	buf := audio.NewSilent(format, durationMs)
	for i := range buf.Samples {
		buf.Samples[i] = value
	}
	return buf
}

// WriteWAV writes buf as a PCM WAV file, creating parent directories.
func WriteWAV(t testing.TB, path string, buf *audio.Buffer) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := audio.WriteWAV(f, buf); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}
