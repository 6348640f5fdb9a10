package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates inputs and outputs.
type Paths struct {
	// Records is a .json, .yaml, or .db record store, or a postgres:// DSN.
	Records string `toml:"records"`
	// AudioPattern maps a record key to a sample file; it holds one %s.
	AudioPattern string `toml:"audio_pattern"`
	Output       string `toml:"output"`
	// Manifest may be empty to skip writing one.
	Manifest string `toml:"manifest"`
	LogDir   string `toml:"log_dir"`
}

// Query selects and orders records.
type Query struct {
	Filters []string `toml:"filters"`
	Sort    []string `toml:"sort"`
	// KeyField names the record field used as the sample and manifest key.
	// Empty means the store key.
	KeyField string `toml:"key_field"`
}

// Timing is the clip layout in milliseconds, except the overall budget.
type Timing struct {
	MaxDurationSeconds int `toml:"max_duration_seconds"`
	ClipStartMs        int `toml:"clip_start_ms"`
	ClipDurationMs     int `toml:"clip_duration_ms"`
	FadeInMs           int `toml:"fade_in_ms"`
	FadeOutMs          int `toml:"fade_out_ms"`
	OverlapMs          int `toml:"overlap_ms"`
	PadStartMs         int `toml:"pad_start_ms"`
	PadEndMs           int `toml:"pad_end_ms"`
}

// Audio is the canvas format and codec tooling.
type Audio struct {
	SampleRate    int    `toml:"sample_rate"`
	Channels      int    `toml:"channels"`
	BitDepth      int    `toml:"bit_depth"`
	FadeCurve     string `toml:"fade_curve"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// DecodeWorkers bounds parallel decoding; 0 means one per CPU.
	DecodeWorkers int `toml:"decode_workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for montage.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Query   Query   `toml:"query"`
	Timing  Timing  `toml:"timing"`
	Audio   Audio   `toml:"audio"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/montage/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. A
// missing file is not an error; defaults are used. It returns the config, the
// resolved path, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Finalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates c. Callers that modify a loaded config,
// such as flag overrides, run it again.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("montage.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// IsDSN reports whether a records location is a database URL rather than a path.
func IsDSN(location string) bool {
	return strings.Contains(location, "://")
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
