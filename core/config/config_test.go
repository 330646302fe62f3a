package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(268435456), cfg.Cache.MaxMemoryBytes)
	assert.Equal(t, int64(201326592), cfg.Cache.TargetMemoryBytes)
	assert.Equal(t, 10*time.Minute, cfg.Cache.StaleTimeout)
	assert.Equal(t, []string{"mods"}, cfg.Loading.Dirs)
	assert.Equal(t, "mod-loader.toml", cfg.Loading.OrderFile)
	assert.Equal(t, 8, cfg.Loading.Workers)
	assert.False(t, cfg.Loading.Remote)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := `
[cache]
max_memory_bytes = 1024
stale_timeout = "30s"

[loading]
dirs = ["a", "b"]
history = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(file), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("CACHE_MAX_MEMORY_BYTES", "4096")
	t.Setenv("LOADING_WORKERS", "2")
	// godotenv.Overload writes LOG_LEVEL into the process environment.
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, int64(4096), cfg.Cache.MaxMemoryBytes)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTimeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Loading.Dirs)
	assert.True(t, cfg.Loading.History)
	assert.Equal(t, 2, cfg.Loading.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_ListFromEnvironment(t *testing.T) {
	t.Setenv("LOADING_DIRS", "mods,extra")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"mods", "extra"}, cfg.Loading.Dirs)
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[cache\n"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
