package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
	assert.Equal(t, CatalogSQLite, cfg.Catalog.Driver)
	assert.Equal(t, "database.sqlite", cfg.Catalog.SQLitePath)
	assert.Equal(t, BlobLocal, cfg.Blob.Backend)
	assert.Equal(t, "uploads", cfg.Blob.LocalDir)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "/metrics", cfg.Metrics.PrometheusPath)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("FILEVAULT_API_PORT", "9090")
	t.Setenv("FILEVAULT_API_READ_TIMEOUT", "5s")
	t.Setenv("CATALOG_DRIVER", "Postgres")
	t.Setenv("BLOB_BACKEND", "minio")
	t.Setenv("MINIO_USE_SSL", "yes")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, CatalogPostgres, cfg.Catalog.Driver)
	assert.Equal(t, BlobMinIO, cfg.Blob.Backend)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, int64(1024), cfg.Blob.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	t.Setenv("CATALOG_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CATALOG_DRIVER", "sqlite")
	t.Setenv("BLOB_BACKEND", "s3")
	_, err = Load()
	require.Error(t, err)
}

func TestPostgresURLs(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "files", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@db:5432/files?sslmode=disable", p.DSN())
	assert.Equal(t, "pgx5://u:p@db:5432/files?sslmode=disable", p.MigrateURL())
}
