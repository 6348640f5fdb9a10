package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.Records == "" {
		return errors.New("paths.records must be set")
	}
	if c.Paths.Output == "" {
		return errors.New("paths.output must be set")
	}
	if n := strings.Count(c.Paths.AudioPattern, "%s"); n != 1 {
		return fmt.Errorf("paths.audio_pattern must contain exactly one %%s, found %d", n)
	}
	if c.Paths.Manifest != "" && c.Paths.Manifest == c.Paths.Output {
		return errors.New("paths.manifest must differ from paths.output")
	}
	return nil
}

func (c *Config) validateTiming() error {
	t := c.Timing
	if t.MaxDurationSeconds <= 0 {
		return errors.New("timing.max_duration_seconds must be positive")
	}
	if t.ClipDurationMs <= 0 {
		return errors.New("timing.clip_duration_ms must be positive")
	}
	// Overlap beyond half a clip is clamped by the compositor, not rejected.
	if t.OverlapMs < 0 {
		return errors.New("timing.overlap_ms must not be negative")
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"timing.clip_start_ms", t.ClipStartMs},
		{"timing.fade_in_ms", t.FadeInMs},
		{"timing.fade_out_ms", t.FadeOutMs},
		{"timing.pad_start_ms", t.PadStartMs},
		{"timing.pad_end_ms", t.PadEndMs},
	} {
		if field.value < 0 {
			return fmt.Errorf("%s must not be negative", field.name)
		}
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if a.Channels <= 0 {
		return errors.New("audio.channels must be positive")
	}
	switch a.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("audio.bit_depth must be 8, 16, 24, or 32, got %d", a.BitDepth)
	}
	switch a.FadeCurve {
	case "linear", "smoothstep", "decibel":
	default:
		return fmt.Errorf("audio.fade_curve must be linear, smoothstep, or decibel, got %q", a.FadeCurve)
	}
	if a.DecodeWorkers < 0 {
		return errors.New("audio.decode_workers must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
