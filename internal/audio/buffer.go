package audio

import (
	"fmt"
	"slices"
)

// Buffer is interleaved signed PCM. Samples holds Frames()*Channels values.
type Buffer struct {
	Format  Format
	Samples []int32
}

// NewSilent allocates a zeroed buffer of the given duration.
func NewSilent(format Format, durationMs int) *Buffer {
	frames := format.FramesForMs(durationMs)
	return &Buffer{Format: format, Samples: make([]int32, frames*format.Channels)}
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// DurationMs returns the buffer length in milliseconds, rounded to nearest.
func (b *Buffer) DurationMs() int {
	if b == nil {
		return 0
	}
	return b.Format.MsForFrames(b.Frames())
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{Format: b.Format, Samples: slices.Clone(b.Samples)}
}

// Slice copies the range [startMs, endMs). Both bounds are clamped to the
// buffer, so a range entirely past the end yields an empty buffer.
func (b *Buffer) Slice(startMs, endMs int) *Buffer {
	frames := b.Frames()
	start := min(b.Format.FramesForMs(startMs), frames)
	end := min(b.Format.FramesForMs(endMs), frames)
	if end < start {
		end = start
	}
	ch := b.Format.Channels
	return &Buffer{Format: b.Format, Samples: slices.Clone(b.Samples[start*ch : end*ch])}
}

// Overlay mixes clip into b starting at positionMs. Sums saturate at the
// format's range and samples past the end of b are dropped. The clip must
// already share b's format.
func (b *Buffer) Overlay(clip *Buffer, positionMs int) error {
	if clip.Format != b.Format {
		return fmt.Errorf("%w: overlay %s onto %s", ErrFormat, clip.Format, b.Format)
	}
	offset := b.Format.FramesForMs(positionMs) * b.Format.Channels
	if offset >= len(b.Samples) {
		return nil
	}
	n := min(len(clip.Samples), len(b.Samples)-offset)
	dst := b.Samples[offset : offset+n]
	for i, s := range clip.Samples[:n] {
		dst[i] = b.Format.clamp(int64(dst[i]) + int64(s))
	}
	return nil
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() int64 {
	var peak int64
	for _, s := range b.Samples {
		v := int64(s)
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	return peak
}
