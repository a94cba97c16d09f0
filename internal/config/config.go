// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	// DefaultDBPath is the default location of the database
	DefaultDBPath = "~/.websymbols/symbols.db"
	// DefaultCacheSize is the default number of cached query results
	DefaultCacheSize = 1000
	// DefaultConfigFile is looked up in the data directory when no path is given
	DefaultConfigFile = "config.toml"
)

// Config is the root configuration structure.
type Config struct {
	DBPath       string      `toml:"db_path"`
	Framework    string      `toml:"framework"`
	ManifestDirs []string    `toml:"manifest_dirs"`
	Workers      int         `toml:"workers"`
	Strict       bool        `toml:"strict"`
	Cache        CacheConfig `toml:"cache"`
	Log          LogConfig   `toml:"log"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	Size int `toml:"size"`
}

// SizeOrDefault returns the configured size or DefaultCacheSize if unset.
func (c CacheConfig) SizeOrDefault() int {
	if c.Size <= 0 {
		return DefaultCacheSize
	}
	return c.Size
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // trace, debug, info, warn, error
	Format string `toml:"format"` // json or console
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DBPath: DefaultDBPath,
		Cache:  CacheConfig{Size: DefaultCacheSize},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. An empty path loads the file in the data directory if present;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := DataDir()
		if err == nil {
			candidate := filepath.Join(dir, DefaultConfigFile)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var err error
	if cfg.DBPath, err = ExpandHome(cfg.DBPath); err != nil {
		return nil, err
	}
	for i, dir := range cfg.ManifestDirs {
		if cfg.ManifestDirs[i], err = ExpandHome(dir); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}

	if strings.ContainsAny(c.Framework, " \t/") {
		errs = append(errs, fmt.Errorf("framework=%q must be a framework id", c.Framework))
	}

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers=%d must not be negative", c.Workers))
	}

	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size=%d must not be negative", c.Cache.Size))
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
		}
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format=%q must be json or console", c.Log.Format))
	}

	for i, dir := range c.ManifestDirs {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, fmt.Errorf("manifest_dirs[%d] is empty", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"WEBSYMBOLS_DB_PATH", func(v string) {
			if v != "" {
				cfg.DBPath = v
			}
		}},
		{"WEBSYMBOLS_FRAMEWORK", func(v string) {
			if v != "" {
				cfg.Framework = v
			}
		}},
		{"WEBSYMBOLS_MANIFEST_DIRS", func(v string) {
			if v != "" {
				cfg.ManifestDirs = filepath.SplitList(v)
			}
		}},
		{"WEBSYMBOLS_WORKERS", func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Workers = n
			}
		}},
		{"WEBSYMBOLS_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// DataDir returns the path to the data directory (~/.websymbols).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".websymbols"), nil
}

// EnsureDBDir creates the directory that holds the database file.
func (c *Config) EnsureDBDir() error {
	if c.DBPath == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
