package file

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

const blobContentType = "application/octet-stream"

// MinIOStore keeps blobs as objects in a single MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an object-storage blob store.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// Put uploads src under a fresh storage path.
func (s *MinIOStore) Put(ctx context.Context, src io.Reader, size int64) (string, error) {
	key := newStoragePath()
	if _, err := s.client.PutObject(ctx, s.bucket, key, src, size, minio.PutObjectOptions{ContentType: blobContentType}); err != nil {
		return "", fmt.Errorf("%w: put object: %v", ErrStorageWrite, err)
	}
	return key, nil
}

// Open stats the object first because GetObject defers errors until the first read.
func (s *MinIOStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	key, err := cleanStoragePath(storagePath)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMissingObject(err) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object %s: %w", key, err)
	}
	return object, nil
}

// Remove deletes the object. RemoveObject succeeds on missing keys, so existence is checked first.
func (s *MinIOStore) Remove(ctx context.Context, storagePath string) error {
	key, err := cleanStoragePath(storagePath)
	if err != nil {
		return err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMissingObject(err) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return fmt.Errorf("%w: stat object %s: %v", ErrStorageWrite, key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove object %s: %v", ErrStorageWrite, key, err)
	}
	return nil
}

// Ping verifies the bucket is reachable.
func (s *MinIOStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func isMissingObject(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
