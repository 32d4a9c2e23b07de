package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	localTmpDir     = ".tmp"
	maxPathAttempts = 3
	localDirPerm    = 0o750
)

// LocalStore keeps blobs in a directory on the local volume.
type LocalStore struct {
	root string
}

// NewLocalStore prepares root (and its temp area) for blob storage.
func NewLocalStore(root string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, localTmpDir), localDirPerm); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute blob directory.
func (s *LocalStore) Root() string {
	return s.root
}

// Put streams src to a temp file, fsyncs it and renames it to a fresh storage path.
func (s *LocalStore) Put(ctx context.Context, src io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, localTmpDir), "put-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrStorageWrite, err)
	}
	tmpPath := tmp.Name()
	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	written, err := io.Copy(tmp, src)
	if err != nil {
		discard()
		return "", fmt.Errorf("%w: write content: %v", ErrStorageWrite, err)
	}
	if size >= 0 && written != size {
		discard()
		return "", fmt.Errorf("%w: wrote %d of %d bytes", ErrStorageWrite, written, size)
	}
	if err := tmp.Sync(); err != nil {
		discard()
		return "", fmt.Errorf("%w: fsync: %v", ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: close temp file: %v", ErrStorageWrite, err)
	}

	for attempt := 0; attempt < maxPathAttempts; attempt++ {
		key := newStoragePath()
		dst := s.fullPath(key)
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), localDirPerm); err != nil {
			_ = os.Remove(tmpPath)
			return "", fmt.Errorf("%w: create blob directory: %v", ErrStorageWrite, err)
		}
		if err := os.Rename(tmpPath, dst); err != nil {
			_ = os.Remove(tmpPath)
			return "", fmt.Errorf("%w: rename blob: %v", ErrStorageWrite, err)
		}
		return key, nil
	}

	_ = os.Remove(tmpPath)
	return "", fmt.Errorf("%w: could not allocate a unique storage path", ErrStorageWrite)
}

// Open returns the blob file for reading.
func (s *LocalStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := cleanStoragePath(storagePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.fullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return f, nil
}

// Remove deletes the blob file.
func (s *LocalStore) Remove(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanStoragePath(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(s.fullPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return fmt.Errorf("%w: remove %s: %v", ErrStorageWrite, key, err)
	}
	return nil
}

// Ping checks that the blob directory is still present.
func (s *LocalStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat blob root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob root %s is not a directory", s.root)
	}
	return nil
}

func (s *LocalStore) fullPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
