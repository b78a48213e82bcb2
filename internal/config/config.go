// Package config loads the optional TOML settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/medienreflexion/internal/countup"
)

const appName = "medienreflexion"

// Environment variables that override file settings.
const (
	EnvDB          = "MEDIENREFLEXION_DB"
	EnvLLMProvider = "MEDIENREFLEXION_LLM_PROVIDER"
	EnvConfig      = "MEDIENREFLEXION_CONFIG"
)

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Display DisplayConfig `toml:"display"`
	Insight InsightConfig `toml:"insight"`
	Log     LogConfig     `toml:"log"`
}

type StoreConfig struct {
	Path        string `toml:"path,omitempty"`
	KeepHistory *bool  `toml:"keep_history,omitempty"`

	// MaxResults caps the stored results; older ones are deleted after
	// each save. Zero keeps everything.
	MaxResults int `toml:"max_results,omitempty"`
}

type DisplayConfig struct {
	CountUpMS int `toml:"count_up_ms,omitempty"`
}

type InsightConfig struct {
	Enabled  *bool  `toml:"enabled,omitempty"`
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level,omitempty"`
	File  string `toml:"file,omitempty"`
}

// DefaultPath returns $XDG_CONFIG_HOME/medienreflexion/config.toml, falling
// back to ~/.config.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads the config file at path. When path is empty the default
// location is used and a missing file yields the zero Config.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path == "" {
		return Config{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates TOML from r.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if p := getenv(EnvDB); p != "" {
		c.Store.Path = p
	}
	if p := getenv(EnvLLMProvider); p != "" {
		c.Insight.Provider = p
	}
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c Config) validate() error {
	if c.Store.MaxResults < 0 {
		return fmt.Errorf("store.max_results must not be negative")
	}
	if c.Display.CountUpMS < 0 {
		return fmt.Errorf("display.count_up_ms must not be negative")
	}
	if c.Log.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// ResolvedStorePath returns the configured database path with ~ expanded,
// or "" when the default location should be used.
func (c Config) ResolvedStorePath() string {
	return expandHome(c.Store.Path)
}

// ResolvedKeepHistory returns store.keep_history or true as default.
func (c Config) ResolvedKeepHistory() bool {
	if c.Store.KeepHistory != nil {
		return *c.Store.KeepHistory
	}
	return true
}

// ResolvedCountUp returns the count-up duration.
func (c Config) ResolvedCountUp() time.Duration {
	if c.Display.CountUpMS > 0 {
		return time.Duration(c.Display.CountUpMS) * time.Millisecond
	}
	return countup.DefaultDuration
}

// ResolvedInsightEnabled returns insight.enabled or true as default. The
// insight still needs a usable provider to run.
func (c Config) ResolvedInsightEnabled() bool {
	if c.Insight.Enabled != nil {
		return *c.Insight.Enabled
	}
	return true
}

// ResolvedLogLevel parses log.level. Unset means info.
func (c Config) ResolvedLogLevel() slog.Level {
	var lvl slog.Level
	if c.Log.Level == "" || lvl.UnmarshalText([]byte(c.Log.Level)) != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ResolvedLogFile returns log.file, defaulting to
// $XDG_STATE_HOME/medienreflexion/medienreflexion.log.
func (c Config) ResolvedLogFile() string {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appName+".log")
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName, appName+".log")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
