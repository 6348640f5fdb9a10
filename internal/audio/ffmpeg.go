package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"montage/internal/media/ffprobe"
)

// FFmpeg decodes and encodes containers the WAV codec cannot handle.
type FFmpeg struct {
	FFmpegBinary  string
	FFprobeBinary string
}

func (f FFmpeg) binary() string {
	if bin := strings.TrimSpace(f.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// Probe reports the native layout of the first audio stream in path. Samples
// are always requested from ffmpeg as 32-bit PCM.
func (f FFmpeg) Probe(ctx context.Context, path string) (Format, error) {
	result, err := ffprobe.Inspect(ctx, f.FFprobeBinary, path)
	if err != nil {
		return Format{}, err
	}
	stream, err := result.PrimaryAudio()
	if err != nil {
		return Format{}, fmt.Errorf("%s: %w", path, err)
	}
	format := Format{SampleRate: stream.SampleRateHz(), Channels: stream.Channels, BitDepth: 32}
	if err := format.Validate(); err != nil {
		return Format{}, fmt.Errorf("%s: %w", path, err)
	}
	return format, nil
}

// Decode converts path to raw PCM at its native rate and channel count.
func (f FFmpeg) Decode(ctx context.Context, path string) (*Buffer, error) {
	native, err := f.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, f.binary(),
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-f", rawFormat(native.BitDepth),
		"-acodec", "pcm_"+rawFormat(native.BitDepth),
		"-ar", strconv.Itoa(native.SampleRate),
		"-ac", strconv.Itoa(native.Channels),
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return DecodePCM(out, native)
}

// Encode pipes buf into ffmpeg, which picks the container and codec from the
// extension of path.
func (f FFmpeg) Encode(ctx context.Context, path string, buf *Buffer) error {
	if err := buf.Format.Validate(); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, f.binary(),
		"-v", "error",
		"-y",
		"-f", rawFormat(buf.Format.BitDepth),
		"-ar", strconv.Itoa(buf.Format.SampleRate),
		"-ac", strconv.Itoa(buf.Format.Channels),
		"-i", "pipe:0",
		path,
	)
	cmd.Stdin = bytes.NewReader(EncodePCM(buf))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg encode %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}
	return nil
}
