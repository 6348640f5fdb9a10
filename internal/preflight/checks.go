package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"montage/internal/audio"
	"montage/internal/config"
	"montage/internal/deps"
	"montage/internal/recordstore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputLocation verifies that the directory holding file can be written.
// Missing directories are created at export time, so the nearest existing
// ancestor is checked instead.
func CheckOutputLocation(name, file string) Result {
	dir, err := nearestExisting(filepath.Dir(file))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", file, err)}
	}
	res := CheckDirectoryAccess(name, dir)
	if res.Passed {
		res.Detail = fmt.Sprintf("%s (writable via %s)", file, dir)
	}
	return res
}

// CheckFreeSpace verifies that the filesystem holding path has at least need
// bytes available.
func CheckFreeSpace(name, path string, need uint64) Result {
	dir, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", dir, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	detail := fmt.Sprintf("%s free, %s needed", humanize.IBytes(free), humanize.IBytes(need))
	if free < need {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckRecordSource verifies that the record store can be opened. Files must
// exist and databases must accept a connection.
func CheckRecordSource(ctx context.Context, location string) Result {
	const name = "Record store"
	kind, err := recordstore.DetectKind(location)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if kind != recordstore.KindPostgres {
		info, err := os.Stat(location)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", location, err)}
		}
		if info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", location)}
		}
		if kind == recordstore.KindJSON || kind == recordstore.KindYAML {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s, %s)", location, kind, humanize.IBytes(uint64(info.Size())))}
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	reader, err := recordstore.Open(checkCtx, location)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	_ = reader.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s reachable)", redactDSN(location), kind)}
}

// CheckSystemDeps evaluates the codec binaries. ffmpeg is only required when
// the output or the sample pattern is not WAV; ffprobe is only required for
// non-WAV samples.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	ffmpeg := deps.ResolveFFmpegPath(cfg.Audio.FFmpegBinary)
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Decodes non-WAV samples and encodes non-WAV output",
			Optional:    audio.IsWAV(cfg.Paths.Output) && audio.IsWAV(cfg.Paths.AudioPattern),
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobePath(cfg.Audio.FFprobeBinary, ffmpeg),
			Description: "Inspects non-WAV samples",
			Optional:    audio.IsWAV(cfg.Paths.AudioPattern),
		},
	}
	return deps.CheckBinaries(requirements)
}

// EstimateOutputBytes is the uncompressed size of the largest canvas the
// timing settings allow.
func EstimateOutputBytes(cfg *config.Config) uint64 {
	ms := uint64(cfg.Timing.MaxDurationSeconds)*1000 + uint64(cfg.Timing.PadStartMs) + uint64(cfg.Timing.PadEndMs)
	perSecond := uint64(cfg.Audio.SampleRate) * uint64(cfg.Audio.Channels) * uint64(cfg.Audio.BitDepth/8)
	return ms * perSecond / 1000
}

func nearestExisting(path string) (string, error) {
	path = filepath.Clean(path)
	for {
		info, err := os.Stat(path)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", path)
			}
			return path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("no existing parent for %s", path)
		}
		path = parent
	}
}

func redactDSN(location string) string {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return location
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "connection timed out"
	}
	return err.Error()
}
