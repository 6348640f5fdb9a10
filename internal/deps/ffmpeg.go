package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultFFmpeg  = "ffmpeg"
	defaultFFprobe = "ffprobe"
)

// ResolveFFmpegPath returns the configured ffmpeg command, or "ffmpeg" when
// none is set.
func ResolveFFmpegPath(configured string) string {
	if cmd := strings.TrimSpace(configured); cmd != "" {
		return cmd
	}
	return defaultFFmpeg
}

// ResolveFFprobePath returns the ffprobe command to run. An explicit setting
// wins. Otherwise an ffprobe sitting next to the resolved ffmpeg binary is
// preferred, so custom ffmpeg builds are probed with their own ffprobe, and
// "ffprobe" from PATH is the fallback.
func ResolveFFprobePath(configured, ffmpeg string) string {
	if cmd := strings.TrimSpace(configured); cmd != "" && cmd != defaultFFprobe {
		return cmd
	}
	if resolved, err := exec.LookPath(ResolveFFmpegPath(ffmpeg)); err == nil {
		candidate := sidecar(resolved, defaultFFprobe)
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate
		}
	}
	return defaultFFprobe
}

func sidecar(binaryPath, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(binaryPath), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
