package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{
		"WEBSYMBOLS_DB_PATH", "WEBSYMBOLS_FRAMEWORK", "WEBSYMBOLS_MANIFEST_DIRS",
		"WEBSYMBOLS_WORKERS", "WEBSYMBOLS_LOG_LEVEL",
	} {
		t.Setenv(env, "")
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".websymbols", "symbols.db"), cfg.DBPath)
	assert.Equal(t, DefaultCacheSize, cfg.Cache.SizeOrDefault())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.ManifestDirs)
}

func TestLoad_File(t *testing.T) {
	home := isolateHome(t)
	path := writeConfig(t, `
db_path = "/var/lib/websymbols.db"
framework = "vue"
manifest_dirs = ["~/project", "/opt/libs"]
workers = 4
strict = true

[cache]
size = 50

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/websymbols.db", cfg.DBPath)
	assert.Equal(t, "vue", cfg.Framework)
	assert.Equal(t, []string{filepath.Join(home, "project"), "/opt/libs"}, cfg.ManifestDirs)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 50, cfg.Cache.SizeOrDefault())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DataDirFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".websymbols")
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(`framework = "vue"`), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "vue", cfg.Framework)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateHome(t)
	path := writeConfig(t, `db_path = "/from/file.db"`)

	t.Setenv("WEBSYMBOLS_DB_PATH", "/from/env.db")
	t.Setenv("WEBSYMBOLS_FRAMEWORK", "vue")
	t.Setenv("WEBSYMBOLS_MANIFEST_DIRS", "/a"+string(filepath.ListSeparator)+"/b")
	t.Setenv("WEBSYMBOLS_WORKERS", "3")
	t.Setenv("WEBSYMBOLS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.DBPath)
	assert.Equal(t, "vue", cfg.Framework)
	assert.Equal(t, []string{"/a", "/b"}, cfg.ManifestDirs)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")

	_, err = Load(writeConfig(t, `db_path = [`))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"empty db path", func(c *Config) { c.DBPath = "" }, []string{"db_path is required"}},
		{"bad framework", func(c *Config) { c.Framework = "my framework" }, []string{"framework="}},
		{"negative workers", func(c *Config) { c.Workers = -1 }, []string{"workers=-1"}},
		{"negative cache", func(c *Config) { c.Cache.Size = -5 }, []string{"cache.size=-5"}},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, []string{"log.level="}},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, []string{"log.format="}},
		{"empty manifest dir", func(c *Config) { c.ManifestDirs = []string{"/a", " "} }, []string{"manifest_dirs[1]"}},
		{
			"all errors are reported",
			func(c *Config) {
				c.DBPath = ""
				c.Workers = -2
			},
			[]string{"db_path is required", "workers=-2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := isolateHome(t)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/x/y.db", filepath.Join(home, "x", "y.db")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~user/path", "~user/path"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestEnsureDBDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DBPath = filepath.Join(dir, "nested", "symbols.db")
	require.NoError(t, cfg.EnsureDBDir())

	info, err := os.Stat(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	cfg.DBPath = ":memory:"
	assert.NoError(t, cfg.EnsureDBDir())
}
