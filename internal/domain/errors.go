// internal/domain/errors.go
package domain

import "errors"

// Error taxonomy shared by the storage adapter, the file service and the
// HTTP handlers. Handlers match with errors.Is to pick a status code;
// wrapped messages carry the human-readable detail.
var (
	// ErrInvalidInput covers bad or missing request data: empty payloads,
	// unknown ids, empty folders. Maps to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrObjectNotFound is returned when a key does not exist in the
	// object store, regardless of what the metadata says.
	ErrObjectNotFound = errors.New("object not found")

	// ErrStoreUnavailable means the object store could not be reached or
	// the bucket could not be created.
	ErrStoreUnavailable = errors.New("object store unavailable")

	// ErrStoreWrite means a put failed on the backend.
	ErrStoreWrite = errors.New("object store write failed")

	// ErrStoreDelete means a remove failed on the backend.
	ErrStoreDelete = errors.New("object store delete failed")

	// ErrAllFailed is the aggregate failure of a batch upload in which
	// not a single file made it. Carries the joined per-item messages.
	ErrAllFailed = errors.New("all files failed to upload")

	// ErrPartialDelete is the aggregate failure of a folder delete in
	// which at least one member could not be removed. Members deleted
	// before the failures stay deleted.
	ErrPartialDelete = errors.New("some files could not be deleted")
)
