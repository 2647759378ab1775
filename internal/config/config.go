// Package config provides configuration loading for ghconnect.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (GITHUB_TOKEN, GHCONNECT_CLONE_BASE_DIR, ...)
//  2. YAML config file (~/.config/ghconnect/config.yaml)
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// envPrefix is stripped from ghconnect environment variables.
	envPrefix = "GHCONNECT_"

	// DefaultMaxFileBytes is the content truncation ceiling (1 MiB).
	DefaultMaxFileBytes = 1024 * 1024
)

// Config holds the complete ghconnect configuration.
type Config struct {
	GitHub  GitHubConfig  `koanf:"github"`
	Clone   CloneConfig   `koanf:"clone"`
	Content ContentConfig `koanf:"content"`
	Log     LogConfig     `koanf:"log"`
}

// GitHubConfig holds remote API settings.
type GitHubConfig struct {
	// Token authenticates against the GitHub API. Sourced from the
	// GITHUB_TOKEN environment variable or the config file.
	Token Secret `koanf:"token"`
}

// CloneConfig holds local clone settings.
type CloneConfig struct {
	// BaseDir is the root under which clones are organized as
	// {base}/{owner}/{repo}. Default: ~/github
	BaseDir string `koanf:"base_dir"`

	// Timeout bounds a single clone operation. Default: 5m
	Timeout Duration `koanf:"timeout"`
}

// ContentConfig holds file content policy settings.
type ContentConfig struct {
	// MaxFileBytes is the size ceiling above which file content is
	// truncated to a leading slice. Default: 1 MiB
	MaxFileBytes int64 `koanf:"max_file_bytes"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// Load loads configuration from the default YAML path and environment.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables. An empty configPath uses the default location
// ~/.config/ghconnect/config.yaml; a missing file is not an error.
//
// Environment variables use the GHCONNECT_ prefix with an underscore
// separator, mapped section-first:
//
//	GHCONNECT_CLONE_BASE_DIR -> clone.base_dir
//	GHCONNECT_LOG_LEVEL      -> log.level
//
// GITHUB_TOKEN is read unprefixed, matching the conventional name.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "ghconnect", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate via the descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with GHCONNECT_* environment variables.
	// Split on the first underscore only: section, then field name.
	//
	//	GHCONNECT_CLONE_BASE_DIR -> clone.base_dir
	//	GHCONNECT_CONTENT_MAX_FILE_BYTES -> content.max_file_bytes
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// GITHUB_TOKEN is the conventional unprefixed name; it wins over the file.
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = Secret(token)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills in defaults for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.Clone.BaseDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Clone.BaseDir = filepath.Join(home, "github")
		}
	}
	if cfg.Clone.Timeout == 0 {
		cfg.Clone.Timeout = Duration(5 * time.Minute)
	}
	if cfg.Content.MaxFileBytes == 0 {
		cfg.Content.MaxFileBytes = DefaultMaxFileBytes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate checks configuration invariants. The token is deliberately not
// required here: its absence surfaces as Unauthorized on first tool use, not
// as a startup crash.
func (c *Config) Validate() error {
	if c.Clone.BaseDir == "" {
		return fmt.Errorf("clone.base_dir is required")
	}
	if !filepath.IsAbs(c.Clone.BaseDir) {
		return fmt.Errorf("clone.base_dir must be absolute: %s", c.Clone.BaseDir)
	}
	if c.Content.MaxFileBytes < 0 {
		return fmt.Errorf("content.max_file_bytes cannot be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
