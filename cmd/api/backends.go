package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/storage"
)

// catalogHandle pairs an open catalog with the function that releases its connections.
type catalogHandle struct {
	catalog file.Catalog
	close   func()
}

func migrateCatalog(cfg config.Config, log *zap.Logger) error {
	switch cfg.Catalog.Driver {
	case config.CatalogPostgres:
		return storage.MigratePostgres(cfg.Postgres, log)
	case config.CatalogSQLite:
		return storage.MigrateSQLite(cfg.Catalog.SQLitePath, log)
	default:
		return fmt.Errorf("unsupported catalog driver %q", cfg.Catalog.Driver)
	}
}

func openCatalog(ctx context.Context, cfg config.Config, log *zap.Logger) (catalogHandle, error) {
	if err := migrateCatalog(cfg, log); err != nil {
		return catalogHandle{}, err
	}

	switch cfg.Catalog.Driver {
	case config.CatalogPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return catalogHandle{}, err
		}
		log.Info("catalog ready", zap.String("driver", "postgres"), zap.String("host", cfg.Postgres.Host))
		return catalogHandle{catalog: file.NewRepository(pool), close: pool.Close}, nil
	default:
		db, err := storage.OpenSQLite(ctx, cfg.Catalog.SQLitePath)
		if err != nil {
			return catalogHandle{}, err
		}
		log.Info("catalog ready", zap.String("driver", "sqlite"), zap.String("path", cfg.Catalog.SQLitePath))
		return catalogHandle{catalog: file.NewSQLiteRepository(db), close: func() { _ = db.Close() }}, nil
	}
}

func openBlobStore(ctx context.Context, cfg config.Config, log *zap.Logger) (file.BlobStore, error) {
	switch cfg.Blob.Backend {
	case config.BlobMinIO:
		client, err := storage.OpenMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		log.Info("blob store ready", zap.String("backend", "minio"), zap.String("bucket", cfg.MinIO.Bucket))
		return file.NewMinIOStore(client, cfg.MinIO.Bucket), nil
	default:
		store, err := file.NewLocalStore(cfg.Blob.LocalDir)
		if err != nil {
			return nil, err
		}
		log.Info("blob store ready", zap.String("backend", "local"), zap.String("root", store.Root()))
		return store, nil
	}
}
