package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "also-not-present", Optional: true},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[3].Detail != "command not configured" {
		t.Fatalf("blank command detail = %q", results[3].Detail)
	}

	missing := Missing(results)
	if len(missing) != 2 || missing[0].Name != "Missing" || missing[1].Name != "Blank" {
		t.Fatalf("Missing() = %#v", missing)
	}
}

func TestResolveFFmpegPath(t *testing.T) {
	if got := ResolveFFmpegPath(""); got != "ffmpeg" {
		t.Fatalf("default = %q", got)
	}
	if got := ResolveFFmpegPath(" /opt/ffmpeg/bin/ffmpeg "); got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("configured = %q", got)
	}
}

func TestResolveFFprobePathPrefersSidecar(t *testing.T) {
	tmp := t.TempDir()
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	ffprobePath := filepath.Join(tmp, executableName("ffprobe"))
	writeStub(t, ffmpegPath)
	writeStub(t, ffprobePath)

	if got := ResolveFFprobePath("", ffmpegPath); got != ffprobePath {
		t.Fatalf("expected sidecar %q, got %q", ffprobePath, got)
	}
	if got := ResolveFFprobePath("/custom/ffprobe", ffmpegPath); got != "/custom/ffprobe" {
		t.Fatalf("explicit ffprobe ignored, got %q", got)
	}
}

func TestResolveFFprobePathFallsBackToPath(t *testing.T) {
	tmp := t.TempDir()
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	writeStub(t, ffmpegPath)

	if got := ResolveFFprobePath("ffprobe", ffmpegPath); got != "ffprobe" {
		t.Fatalf("expected PATH fallback, got %q", got)
	}
	if got := ResolveFFprobePath("", filepath.Join(tmp, "missing-ffmpeg")); got != "ffprobe" {
		t.Fatalf("expected PATH fallback for missing ffmpeg, got %q", got)
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
