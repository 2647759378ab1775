package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv removes the variables the loader reads so tests see only what they
// set themselves.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN",
		"GHCONNECT_CLONE_BASE_DIR",
		"GHCONNECT_CLONE_TIMEOUT",
		"GHCONNECT_CONTENT_MAX_FILE_BYTES",
		"GHCONNECT_LOG_LEVEL",
		"GHCONNECT_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "github"), cfg.Clone.BaseDir)
	assert.Equal(t, 5*time.Minute, cfg.Clone.Timeout.Duration())
	assert.Equal(t, int64(DefaultMaxFileBytes), cfg.Content.MaxFileBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.GitHub.Token.IsSet())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
clone:
  base_dir: /srv/checkouts
  timeout: 2m
content:
  max_file_bytes: 4096
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/checkouts", cfg.Clone.BaseDir)
	assert.Equal(t, 2*time.Minute, cfg.Clone.Timeout.Duration())
	assert.Equal(t, int64(4096), cfg.Content.MaxFileBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clone:\n  base_dir: /srv/from-file\n"), 0o644))

	t.Setenv("GHCONNECT_CLONE_BASE_DIR", "/srv/from-env")
	t.Setenv("GHCONNECT_LOG_LEVEL", "warn")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/from-env", cfg.Clone.BaseDir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestGitHubTokenFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")

	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ghp_from_env", cfg.GitHub.Token.Value())
}

func TestGitHubTokenEnvWinsOverFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github:\n  token: ghp_from_file\n"), 0o644))

	t.Setenv("GITHUB_TOKEN", "ghp_from_env")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ghp_from_env", cfg.GitHub.Token.Value())
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	big := make([]byte, maxConfigFileSize+1)
	require.NoError(t, os.WriteFile(path, big, 0o644))

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Clone:   CloneConfig{BaseDir: "/srv/repos", Timeout: Duration(time.Minute)},
			Content: ContentConfig{MaxFileBytes: 1024},
			Log:     LogConfig{Level: "info", Format: "console"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing base dir", func(t *testing.T) {
		cfg := valid()
		cfg.Clone.BaseDir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("relative base dir", func(t *testing.T) {
		cfg := valid()
		cfg.Clone.BaseDir = "relative/path"
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative max file bytes", func(t *testing.T) {
		cfg := valid()
		cfg.Content.MaxFileBytes = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := valid()
		cfg.Log.Format = "xml"
		assert.Error(t, cfg.Validate())
	})

	t.Run("token not required", func(t *testing.T) {
		cfg := valid()
		cfg.GitHub.Token = ""
		assert.NoError(t, cfg.Validate())
	})
}
