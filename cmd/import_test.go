//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCmd_Metadata(t *testing.T) {
	assert.Contains(t, importCmd.Use, "import")
	assert.NotEmpty(t, importCmd.Short)
	require.NotNil(t, importCmd.Flags().Lookup("source"))
	require.NotNil(t, importCmd.Flags().Lookup("sheet"))
}

func TestImportCmd_CSV(t *testing.T) {
	testConfig(t)

	csvPath := filepath.Join(t.TempDir(), "businesses.csv")
	content := `Business Name,City,State,Zip,Phone
Acme Contracting,Shepherdsville,KY,40165,502-555-0100
Acme Contracting LLC,Shepherdsville,KY,40165,
Bravo Logistics,Louisville,KY,40205,
`
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	importCmd.SetContext(context.Background())
	importSource = "Test Import"
	require.NoError(t, importCmd.RunE(importCmd, []string{csvPath}))

	store, err := openStore(context.Background())
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	// The LLC row resolves to the first record.
	assert.Len(t, all, 2)
	for _, b := range all {
		assert.Equal(t, "Test Import", b.Source)
	}
}

func TestImportCmd_UnsupportedExtension(t *testing.T) {
	testConfig(t)

	importCmd.SetContext(context.Background())
	err := importCmd.RunE(importCmd, []string{"businesses.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestImportCmd_MissingFile(t *testing.T) {
	testConfig(t)

	importCmd.SetContext(context.Background())
	err := importCmd.RunE(importCmd, []string{"/no/such/file.csv"})
	assert.Error(t, err)
}
