// Package config loads the baker's file configuration. Every field has a default, so an
// empty or partial file is valid.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Defaults applied to zero-valued fields.
const (
	DefaultCubeResolution       uint32 = 64
	DefaultSHSamplesPerThread   uint32 = 64
	DefaultReflectionProbeDelay        = 100 * time.Millisecond
	DefaultLogLevel                    = "info"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "~/.oxybake.toml"

// Duration is a time.Duration written as a Go duration string ("100ms", "1.5s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the baker configuration.
type Config struct {
	// CubeResolution is the face size of the capture cube targets.
	CubeResolution uint32 `toml:"cube_resolution"`
	// SHSamplesPerThread is how many directions each SH projection thread samples.
	SHSamplesPerThread uint32 `toml:"sh_samples_per_thread"`
	// ReflectionProbeDelay is waited before each reflection probe bake.
	ReflectionProbeDelay Duration `toml:"reflection_probe_delay"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// OutputDir overrides the directory baked assets are written under. Empty uses the scene directory.
	OutputDir string `toml:"output_dir"`
	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool `toml:"force_fallback_adapter"`
	// ValidateShaders compiles every shader with naga before creating pipelines.
	ValidateShaders bool `toml:"validate_shaders"`
}

// Default returns a Config with every default applied.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	c.CubeResolution = common.Coalesce(c.CubeResolution, DefaultCubeResolution)
	c.SHSamplesPerThread = common.Coalesce(c.SHSamplesPerThread, DefaultSHSamplesPerThread)
	c.ReflectionProbeDelay.Duration = common.Coalesce(c.ReflectionProbeDelay.Duration, DefaultReflectionProbeDelay)
	c.LogLevel = common.Coalesce(strings.ToLower(strings.TrimSpace(c.LogLevel)), DefaultLogLevel)
}

// Parse decodes TOML and applies defaults to unset fields. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: an error if the document is malformed or has unknown keys
func Parse(data []byte) (Config, error) {
	var c Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	c.applyDefaults()
	if _, err := c.SlogLevel(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the config file at path. A leading ~ is expanded to the home directory. When
// the file does not exist and allowMissing is true the defaults are returned.
//
// Parameters:
//   - path: the config file path
//   - allowMissing: return defaults instead of an error when the file is absent
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read or parsed
func Load(path string, allowMissing bool) (Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to expand config path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Save writes the config to path as TOML, creating parent directories.
//
// Parameters:
//   - path: the destination file, ~ is expanded
//
// Returns:
//   - error: an error if the file cannot be written
func (c Config) Save(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path %q: %w", path, err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o644)
}

// SlogLevel converts LogLevel to a slog.Level.
//
// Returns:
//   - slog.Level: the level
//   - error: an error if LogLevel is not a known level name
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ResolveOutputDir returns the directory baked assets are written under: OutputDir with ~
// expanded when set, otherwise sceneDir.
//
// Parameters:
//   - sceneDir: the directory containing the scene file
//
// Returns:
//   - string: the output directory
//   - error: an error if OutputDir cannot be expanded
func (c Config) ResolveOutputDir(sceneDir string) (string, error) {
	if c.OutputDir == "" {
		return sceneDir, nil
	}
	return homedir.Expand(c.OutputDir)
}
