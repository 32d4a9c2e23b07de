package file

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/storage"
)

// setupPostgres starts a throwaway PostgreSQL container and applies migrations.
// Requires Docker; skipped unless TEST_INTEGRATION is set.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("filevault_test"),
		postgres.WithUsername("filevault"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "filevault",
		Password: "test-password",
		Database: "filevault_test",
		SSLMode:  "disable",
	}

	require.NoError(t, storage.MigratePostgres(cfg, zap.NewNop()))

	pool, err := storage.NewPostgresPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(setupPostgres(t))
	ctx := context.Background()

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	require.NotNil(t, names)
	assert.Empty(t, names)

	first, err := repo.Insert(ctx, "report.pdf", "aa/first")
	require.NoError(t, err)
	second, err := repo.Insert(ctx, "report.pdf", "bb/second")
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "notes.txt", "cc/third")
	require.NoError(t, err)
	assert.Less(t, first.ID, second.ID)
	assert.Equal(t, time.UTC, first.UploadedAt.Location())

	names, err = repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf", "report.pdf", "notes.txt"}, names)

	found, err := repo.FindByName(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "aa/first", found.StoragePath)

	n, err := repo.DeleteByID(ctx, found.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	found, err = repo.FindByName(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)

	n, err = repo.DeleteByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindByName(ctx, "missing.bin")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = repo.Insert(ctx, "clash.txt", "cc/third")
	require.ErrorIs(t, err, ErrCatalogWrite)

	require.NoError(t, repo.Ping(ctx))
}
