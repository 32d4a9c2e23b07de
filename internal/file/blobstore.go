package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// BlobStore keeps file content under generated storage paths, independent of display names.
type BlobStore interface {
	// Put persists src under a new unique storage path and returns that path.
	Put(ctx context.Context, src io.Reader, size int64) (string, error)
	// Open returns a reader for the blob. ErrBlobNotFound if it does not exist.
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
	// Remove deletes the blob. ErrBlobNotFound if it does not exist.
	Remove(ctx context.Context, storagePath string) error
	Ping(ctx context.Context) error
}

// newStoragePath returns a collision-free key fanned out over 256 prefixes, e.g. "3f/3fa1...".
func newStoragePath() string {
	id := uuid.NewString()
	return id[:2] + "/" + id
}

// cleanStoragePath rejects keys that are absolute, empty or climb out of the volume.
func cleanStoragePath(storagePath string) (string, error) {
	key := strings.TrimSpace(storagePath)
	if key == "" || strings.ContainsRune(key, 0) || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStoragePath, storagePath)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q must be relative", ErrInvalidStoragePath, storagePath)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidStoragePath, storagePath)
	}
	return clean, nil
}
