package file

import "errors"

var (
	// ErrEmptyUpload signals that no file content was received.
	ErrEmptyUpload = errors.New("empty upload")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = errors.New("file too large")
	// ErrFileNotFound signals that no stored file carries the requested name.
	ErrFileNotFound = errors.New("file not found")
	// ErrStorageWrite wraps failures to write or remove blob content.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrCatalogWrite wraps failures to insert or delete catalog records.
	ErrCatalogWrite = errors.New("catalog write failed")
	// ErrCatalogRead wraps failures to query the catalog.
	ErrCatalogRead = errors.New("catalog read failed")
	// ErrBlobNotFound is returned by blob stores when the storage path does not exist.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrInvalidStoragePath rejects storage paths that could escape the blob volume.
	ErrInvalidStoragePath = errors.New("invalid storage path")
)
