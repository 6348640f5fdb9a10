package audio

import (
	"errors"
	"fmt"
)

// ErrFormat marks an unsupported or mismatched sample format.
var ErrFormat = errors.New("unsupported audio format")

// Format describes interleaved PCM.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// CD is 44.1 kHz 16-bit stereo.
var CD = Format{SampleRate: 44100, Channels: 2, BitDepth: 16}

// Validate rejects formats the mixer cannot represent.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrFormat, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrFormat, f.Channels)
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d", ErrFormat, f.BitDepth)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}

// BytesPerSample is the width of a single channel sample.
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

// MaxSample is the largest representable sample value.
func (f Format) MaxSample() int64 {
	return int64(1)<<(f.BitDepth-1) - 1
}

// MinSample is the smallest representable sample value.
func (f Format) MinSample() int64 {
	return -(int64(1) << (f.BitDepth - 1))
}

// FramesForMs converts a millisecond offset into a frame count, rounding down.
func (f Format) FramesForMs(ms int) int {
	if ms <= 0 {
		return 0
	}
	return int(int64(ms) * int64(f.SampleRate) / 1000)
}

// MsForFrames converts a frame count to milliseconds, rounding to nearest.
func (f Format) MsForFrames(frames int) int {
	if frames <= 0 || f.SampleRate <= 0 {
		return 0
	}
	rate := int64(f.SampleRate)
	return int((int64(frames)*1000 + rate/2) / rate)
}

func (f Format) clamp(v int64) int32 {
	if hi := f.MaxSample(); v > hi {
		return int32(hi)
	}
	if lo := f.MinSample(); v < lo {
		return int32(lo)
	}
	return int32(v)
}
