// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe against a file and decodes its streams and container
// metadata. The audio codec uses it to discover a sample's native rate and
// channel count before asking ffmpeg for raw PCM, and the check command uses it
// to confirm that ffprobe actually runs.
package ffprobe
