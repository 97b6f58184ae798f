package storage

import (
	"context"
	"io"
)

// ObjectStorage captures the minimal object-store operations the file
// service needs. Keys may contain a folder prefix joined by "/".
type ObjectStorage interface {
	// EnsureBucket checks the configured bucket and creates it when absent.
	EnsureBucket(ctx context.Context) error
	// Put writes size bytes from r under key, overwriting any existing object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens a readable stream for key. The caller must close it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the object at key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
