// Package config resolves settings from defaults, a TOML file, the
// environment and root flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Makepad-fr/task-tracker/internal/store/jsonstore"
)

// Default values.
const (
	DefaultTheme     = "classic"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Environment variable names.
const (
	EnvConfig    = "TASK_TRACKER_CONFIG"
	EnvFile      = "TASK_TRACKER_FILE"
	EnvTheme     = "TASK_TRACKER_THEME"
	EnvLogLevel  = "TASK_TRACKER_LOG_LEVEL"
	EnvLogFormat = "TASK_TRACKER_LOG_FORMAT"
)

// Config holds the application configuration.
type Config struct {
	// File is the task data file. Relative paths resolve against the
	// working directory.
	File      string `toml:"file"`
	Theme     string `toml:"theme"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		File:      jsonstore.DefaultFileName,
		Theme:     DefaultTheme,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Overrides carries values set explicitly on the command line. Empty fields
// are left alone.
type Overrides struct {
	ConfigPath string
	File       string
	Theme      string
	LogLevel   string
	LogFormat  string
}

// Load resolves the configuration. An explicitly named config file must
// exist; the per-user file is optional.
func Load(o Overrides) (*Config, error) {
	cfg := Default()

	path, required := o.ConfigPath, true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path, required = UserConfigPath(), false
	}
	if path != "" {
		if err := loadFile(cfg, expandPath(path), required); err != nil {
			return nil, err
		}
	}

	loadFromEnv(cfg)

	setIf(&cfg.File, o.File)
	setIf(&cfg.Theme, o.Theme)
	setIf(&cfg.LogLevel, o.LogLevel)
	setIf(&cfg.LogFormat, o.LogFormat)

	cfg.File = expandPath(cfg.File)
	if strings.TrimSpace(cfg.File) == "" {
		return nil, errors.New("config: file must not be empty")
	}
	return cfg, nil
}

// UserConfigPath is $XDG_CONFIG_HOME/task-tracker/config.toml, falling back
// to ~/.config. It returns "" when no home directory is known.
func UserConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "task-tracker", "config.toml")
}

func loadFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parsing config file %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	setIf(&cfg.File, os.Getenv(EnvFile))
	setIf(&cfg.Theme, os.Getenv(EnvTheme))
	setIf(&cfg.LogLevel, os.Getenv(EnvLogLevel))
	setIf(&cfg.LogFormat, os.Getenv(EnvLogFormat))
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// expandPath expands environment variables and a leading ~.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
