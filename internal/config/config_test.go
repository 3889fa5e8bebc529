package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "directory.db", cfg.Store.Path)
	assert.Equal(t, 4, cfg.Ingest.MaxConcurrent)
	assert.InDelta(t, 0.85, cfg.Ingest.SimilarityThreshold, 0.001)
	assert.Equal(t, "40165", cfg.Directory.CenterZip)
	assert.InDelta(t, 37.9884, cfg.Directory.CenterLat, 0.0001)
	assert.InDelta(t, -85.7138, cfg.Directory.CenterLon, 0.0001)
	assert.InDelta(t, 50, cfg.Directory.RadiusMiles, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/vetdir
ingest:
  max_concurrent: 8
  similarity_threshold: 0.9
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/vetdir", cfg.Store.DatabaseURL)
	assert.Equal(t, 8, cfg.Ingest.MaxConcurrent)
	assert.InDelta(t, 0.9, cfg.Ingest.SimilarityThreshold, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "40165", cfg.Directory.CenterZip)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VETDIR_STORE_DRIVER", "postgres")
	t.Setenv("VETDIR_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "console"}))

	assert.Error(t, InitLogger(LogConfig{Level: "bogus", Format: "json"}))
}
