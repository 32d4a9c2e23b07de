package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository is the PostgreSQL catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new PostgreSQL catalog.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends a record stamped with the current time.
func (r *Repository) Insert(ctx context.Context, filename, storagePath string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO files (filename, filepath, uploaded_at)
VALUES ($1, $2, $3)
RETURNING id, filename, filepath, uploaded_at;`

	var rec Record
	err := r.pool.QueryRow(ctx, query, filename, storagePath, time.Now().UTC()).Scan(
		&rec.ID,
		&rec.Filename,
		&rec.StoragePath,
		&rec.UploadedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("%w: insert file record: %v", ErrCatalogWrite, err)
	}
	rec.UploadedAt = rec.UploadedAt.UTC()
	return rec, nil
}

// ListNames returns every filename in insertion order.
func (r *Repository) ListNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT filename FROM files ORDER BY id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %v", ErrCatalogRead, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan filename: %v", ErrCatalogRead, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate files: %v", ErrCatalogRead, err)
	}
	return names, nil
}

// FindByName returns the oldest record carrying filename.
func (r *Repository) FindByName(ctx context.Context, filename string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, filename, filepath, uploaded_at
FROM files
WHERE filename = $1
ORDER BY id ASC
LIMIT 1;`

	var rec Record
	err := r.pool.QueryRow(ctx, query, filename).Scan(
		&rec.ID,
		&rec.Filename,
		&rec.StoragePath,
		&rec.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("%w: find file record: %v", ErrCatalogRead, err)
	}
	rec.UploadedAt = rec.UploadedAt.UTC()
	return rec, nil
}

// DeleteByID removes exactly one record and reports how many rows went away.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1;`, id)
	if err != nil {
		return 0, fmt.Errorf("%w: delete file record %d: %v", ErrCatalogWrite, id, err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
