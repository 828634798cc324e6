// Package store defines the contract shared by the local filesystem
// and the remote object store.
package store

import (
	"context"
	"io"

	"github.com/nrollins/bucketsync/internal/domain"
)

// Store is the capability surface the sync engine needs from one side.
// All paths are slash-normalized and relative to the store root; each
// implementation converts at its own boundary and returns domain-level
// errors for consistent handling.
type Store interface {
	// List enumerates every file under the root with its hatch.
	// The result order is unspecified; paths are unique.
	List(ctx context.Context) ([]domain.FileRecord, error)

	// Read opens a file for reading. The caller closes the reader.
	// Returns domain.ErrNotFound if the file doesn't exist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites the file described by rec with the
	// reader's content. rec carries the path, the content length and the
	// source-side hatch; implementations may persist the hatch as
	// metadata so later Lists can report it without re-reading content.
	Write(ctx context.Context, rec domain.FileRecord, r io.Reader) error

	// Rename moves a file to a new relative path.
	// Returns domain.ErrNotFound if the source doesn't exist.
	Rename(ctx context.Context, oldPath, newPath string) error

	// Delete removes a file.
	// Returns domain.ErrNotFound if the path doesn't exist.
	Delete(ctx context.Context, path string) error

	// Exists checks if a path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
