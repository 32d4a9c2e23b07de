package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/metrics"
)

const (
	defaultMaxFileSize = 100 * 1024 * 1024 // 100MB
)

// Catalog is the persistent index of uploaded files.
type Catalog interface {
	Insert(ctx context.Context, filename, storagePath string) (Record, error)
	ListNames(ctx context.Context) ([]string, error)
	FindByName(ctx context.Context, filename string) (Record, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	Ping(ctx context.Context) error
}

// Service manages file lifecycle operations. It keeps no state of its own between calls.
//
// Blob and record are always written in the same order: the blob is stored before its
// record is inserted and removed before its record is deleted, so the catalog never points
// at content that was not written.
type Service struct {
	catalog     Catalog
	blobs       BlobStore
	maxFileSize int64
	log         *zap.Logger
}

// NewService constructs a file service. A non-positive maxFileSize selects the 100MB default.
func NewService(catalog Catalog, blobs BlobStore, maxFileSize int64, log *zap.Logger) *Service {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog:     catalog,
		blobs:       blobs,
		maxFileSize: maxFileSize,
		log:         log.Named("file"),
	}
}

// Upload stores the received content and records it under the uploader's filename.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (rec Record, err error) {
	defer func() { metrics.ObserveOperation("upload", err) }()

	if fileHeader == nil || fileHeader.Size <= 0 {
		return Record{}, ErrEmptyUpload
	}
	if fileHeader.Size > s.maxFileSize {
		return Record{}, ErrFileTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return Record{}, fmt.Errorf("open upload file: %w", err)
	}
	defer src.Close()

	filename := sanitizeFilename(fileHeader.Filename)

	storagePath, err := s.blobs.Put(ctx, src, fileHeader.Size)
	if err != nil {
		return Record{}, asKind(ErrStorageWrite, err)
	}

	rec, err = s.catalog.Insert(ctx, filename, storagePath)
	if err != nil {
		s.removeOrphan(ctx, storagePath, err)
		return Record{}, asKind(ErrCatalogWrite, err)
	}

	s.log.Info("file uploaded",
		zap.Int64("id", rec.ID),
		zap.String("filename", rec.Filename),
		zap.String("storage_path", rec.StoragePath),
		zap.Int64("size_bytes", fileHeader.Size),
	)
	return rec, nil
}

// List returns every stored filename in upload order.
func (s *Service) List(ctx context.Context) (names []string, err error) {
	defer func() { metrics.ObserveOperation("list", err) }()

	names, err = s.catalog.ListNames(ctx)
	if err != nil {
		return nil, asKind(ErrCatalogRead, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Download resolves filename to its oldest record and opens the blob. The caller closes the reader.
func (s *Service) Download(ctx context.Context, filename string) (rec Record, content io.ReadCloser, err error) {
	defer func() { metrics.ObserveOperation("download", err) }()

	rec, err = s.find(ctx, filename)
	if err != nil {
		return Record{}, nil, err
	}

	content, err = s.blobs.Open(ctx, rec.StoragePath)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			s.log.Warn("dangling record: blob missing on download",
				zap.Int64("id", rec.ID),
				zap.String("filename", rec.Filename),
				zap.String("storage_path", rec.StoragePath),
			)
			return Record{}, nil, ErrFileNotFound
		}
		return Record{}, nil, fmt.Errorf("open blob: %w", err)
	}
	return rec, content, nil
}

// Delete removes the blob of the oldest record named filename, then that record.
// A blob that is already gone does not stop the record from being removed.
func (s *Service) Delete(ctx context.Context, filename string) (err error) {
	defer func() { metrics.ObserveOperation("delete", err) }()

	rec, err := s.find(ctx, filename)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, rec.StoragePath); err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			return asKind(ErrStorageWrite, err)
		}
		s.log.Warn("dangling record: blob already missing, removing record",
			zap.Int64("id", rec.ID),
			zap.String("filename", rec.Filename),
			zap.String("storage_path", rec.StoragePath),
		)
		metrics.ObserveCleanup("dangling_record", nil)
	}

	// The blob is gone at this point; finish the pair even if the client went away.
	deleted, err := s.catalog.DeleteByID(context.WithoutCancel(ctx), rec.ID)
	if err != nil {
		return asKind(ErrCatalogWrite, err)
	}
	if deleted == 0 {
		s.log.Warn("record already deleted", zap.Int64("id", rec.ID), zap.String("filename", rec.Filename))
	}

	s.log.Info("file deleted", zap.Int64("id", rec.ID), zap.String("filename", rec.Filename))
	return nil
}

func (s *Service) find(ctx context.Context, filename string) (Record, error) {
	rec, err := s.catalog.FindByName(ctx, filename)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, asKind(ErrCatalogRead, err)
	}
	return rec, nil
}

// removeOrphan deletes a blob whose record could not be inserted. Failures are logged only.
func (s *Service) removeOrphan(ctx context.Context, storagePath string, cause error) {
	err := s.blobs.Remove(context.WithoutCancel(ctx), storagePath)
	metrics.ObserveCleanup("orphan_blob", err)
	if err != nil {
		s.log.Error("orphan blob left behind after catalog insert failure",
			zap.String("storage_path", storagePath),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.log.Warn("removed orphan blob after catalog insert failure",
		zap.String("storage_path", storagePath),
		zap.NamedError("cause", cause),
	)
}

// asKind makes sure err matches kind under errors.Is without losing the original cause.
func asKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return name
}
