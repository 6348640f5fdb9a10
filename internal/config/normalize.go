package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQuery()
	c.normalizeAudio()
	c.normalizeLogging()
	return nil
}

// applyEnv lets the environment replace file values. It runs once at load so
// command-line overrides applied afterwards still win.
func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv(envRecords); ok && strings.TrimSpace(value) != "" {
		c.Paths.Records = value
	}
	if value, ok := os.LookupEnv(envAudioPattern); ok && strings.TrimSpace(value) != "" {
		c.Paths.AudioPattern = value
	}
}

func (c *Config) normalizePaths() error {
	c.Paths.Records = strings.TrimSpace(c.Paths.Records)
	var err error
	if !IsDSN(c.Paths.Records) {
		if c.Paths.Records, err = expandPath(c.Paths.Records); err != nil {
			return fmt.Errorf("paths.records: %w", err)
		}
	}
	if c.Paths.AudioPattern, err = expandPath(strings.TrimSpace(c.Paths.AudioPattern)); err != nil {
		return fmt.Errorf("paths.audio_pattern: %w", err)
	}
	if c.Paths.Output, err = expandPath(strings.TrimSpace(c.Paths.Output)); err != nil {
		return fmt.Errorf("paths.output: %w", err)
	}
	if c.Paths.Manifest, err = expandPath(strings.TrimSpace(c.Paths.Manifest)); err != nil {
		return fmt.Errorf("paths.manifest: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeQuery() {
	c.Query.Filters = trimList(c.Query.Filters)
	c.Query.Sort = trimList(c.Query.Sort)
	c.Query.KeyField = strings.TrimSpace(c.Query.KeyField)
}

func (c *Config) normalizeAudio() {
	c.Audio.FadeCurve = strings.ToLower(strings.TrimSpace(c.Audio.FadeCurve))
	if c.Audio.FadeCurve == "" {
		c.Audio.FadeCurve = defaultFadeCurve
	}
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	c.Audio.FFprobeBinary = strings.TrimSpace(c.Audio.FFprobeBinary)
	if c.Audio.FFprobeBinary == "" {
		c.Audio.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Audio.DecodeWorkers == 0 {
		c.Audio.DecodeWorkers = runtime.NumCPU()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
