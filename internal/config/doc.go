// Package config loads, normalizes, and validates montage configuration.
//
// Defaults reproduce the classic NSynth collection run: 250 ms clips with a
// 10 ms fade in and 125 ms fade out, 200 ms of padding at each end, a 6000
// second budget, and 44.1 kHz 16-bit stereo output. A TOML file at
// ~/.config/montage/config.toml or ./montage.toml overrides them, and the
// MONTAGE_RECORDS and MONTAGE_AUDIO_PATTERN environment variables override the
// file. Command-line flags are applied on top by cmd/montage.
package config
