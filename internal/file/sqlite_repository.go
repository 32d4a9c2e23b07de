package file

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteRepository is the single-file catalog used by default.
// Timestamps are stored as RFC 3339 text in UTC.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository wraps an open, migrated SQLite database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Insert(ctx context.Context, filename, storagePath string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	uploadedAt := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO files (filename, filepath, uploaded_at) VALUES (?, ?, ?)`,
		filename, storagePath, uploadedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("%w: insert file record: %v", ErrCatalogWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("%w: read inserted id: %v", ErrCatalogWrite, err)
	}

	return Record{
		ID:          id,
		Filename:    filename,
		StoragePath: storagePath,
		UploadedAt:  uploadedAt,
	}, nil
}

func (r *SQLiteRepository) ListNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT filename FROM files ORDER BY id ASC`)
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

func (r *SQLiteRepository) FindByName(ctx context.Context, filename string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var (
		rec        Record
		uploadedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, filename, filepath, uploaded_at FROM files WHERE filename = ? ORDER BY id ASC LIMIT 1`,
		filename,
	).Scan(&rec.ID, &rec.Filename, &rec.StoragePath, &uploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("%w: find file record: %v", ErrCatalogRead, err)
	}

	rec.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return Record{}, fmt.Errorf("%w: parse uploaded_at %q: %v", ErrCatalogRead, uploadedAt, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("%w: delete file record %d: %v", ErrCatalogWrite, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", ErrCatalogWrite, err)
	}
	return n, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
