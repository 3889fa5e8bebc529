//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/active-heroes/directory-cli/internal/config"
	"github.com/active-heroes/directory-cli/internal/directory"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// testConfig points the store at a fresh sqlite file and migrates it.
func testConfig(t *testing.T) {
	t.Helper()
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "test.db"),
		},
		Ingest: config.IngestConfig{MaxConcurrent: 2, SimilarityThreshold: 0.85},
	}
	store, err := openStore(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Close())
}

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "directory-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "import", "export", "stats", "search", "score", "serve"} {
		assert.True(t, names[want], "command %s not registered", want)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	testConfig(t)

	store, err := openStore(context.Background())
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	_, ok := store.(*directory.SQLiteStore)
	assert.True(t, ok)
}

func TestNewIngestorUsesConfig(t *testing.T) {
	testConfig(t)

	store, err := openStore(context.Background())
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	assert.NotNil(t, newIngestor(store))
}
