// Package audio holds the PCM sample buffer used for timeline mixing and the
// codecs that move samples in and out of files.
//
// A Buffer stores interleaved signed samples in int32 regardless of bit depth;
// the Format records the depth so overlays saturate at the right range.
// Reformat converts between channel counts, bit depths, and sample rates so
// every clip matches the canvas before it is mixed.
//
// WAV files are read and written directly. Everything else goes through ffmpeg,
// with ffprobe supplying the source's native rate and channel count.
package audio
