package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abduss/filevault/internal/config"
)

const (
	defaultDBTimeout = 5 * time.Second

	catalogMaxConns        = 10
	catalogMinConns        = 1
	catalogMaxConnIdle     = 5 * time.Minute
	catalogHealthCheckTick = 30 * time.Second
)

// NewPostgresPool opens the PostgreSQL catalog pool and fails fast if the server is unreachable.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse catalog dsn: %w", err)
	}
	poolCfg.MaxConns = catalogMaxConns
	poolCfg.MinConns = catalogMinConns
	poolCfg.MaxConnIdleTime = catalogMaxConnIdle
	poolCfg.HealthCheckPeriod = catalogHealthCheckTick
	poolCfg.ConnConfig.ConnectTimeout = defaultDBTimeout
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "filevault"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach postgres catalog at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return pool, nil
}
