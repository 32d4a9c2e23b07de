package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
)

func localConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Catalog: config.CatalogConfig{Driver: config.CatalogSQLite, SQLitePath: filepath.Join(dir, "database.sqlite")},
		Blob:    config.BlobConfig{Backend: config.BlobLocal, LocalDir: filepath.Join(dir, "uploads"), MaxUploadBytes: 1024},
	}
}

func TestOpenLocalBackendsServeAFile(t *testing.T) {
	cfg := localConfig(t)
	ctx := context.Background()

	catalog, err := openCatalog(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(catalog.close)

	blobs, err := openBlobStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &file.LocalStore{}, blobs)

	key, err := blobs.Put(ctx, strings.NewReader("abc"), 3)
	require.NoError(t, err)
	rec, err := catalog.catalog.Insert(ctx, "abc.txt", key)
	require.NoError(t, err)

	found, err := catalog.catalog.FindByName(ctx, "abc.txt")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)
}

func TestMigrateCommandIsRepeatable(t *testing.T) {
	cfg := localConfig(t)

	for i := 0; i < 2; i++ {
		cmd := newRootCmd(cfg, zap.NewNop())
		cmd.SetArgs([]string{"migrate"})
		require.NoError(t, cmd.Execute())
	}
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	cfg := localConfig(t)
	cfg.Catalog.Driver = "oracle"

	require.Error(t, migrateCatalog(cfg, zap.NewNop()))
}
