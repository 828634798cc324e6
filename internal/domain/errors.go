package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Store errors
var (
	// ErrNotFound indicates the requested file or object does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFile indicates expected a file but got a directory
	ErrNotFile = errors.New("not a file")

	// ErrNetwork indicates a network-related failure
	ErrNetwork = errors.New("network error")
)

// Sync errors
var (
	// ErrConflict indicates an unexpected state, e.g. two records
	// normalizing to the same relative path
	ErrConflict = errors.New("conflicting sync state")

	// ErrSyncInProgress indicates another sync is already running
	ErrSyncInProgress = errors.New("sync already in progress")
)

// Config errors
var (
	// ErrConfigNotFound indicates the config file was not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates the config file is malformed or incomplete
	ErrConfigInvalid = errors.New("invalid config")

	// ErrBucketMissing indicates the configured bucket does not exist
	ErrBucketMissing = errors.New("bucket does not exist")

	// ErrRootMissing indicates the local root directory is missing or inaccessible
	ErrRootMissing = errors.New("local root missing or inaccessible")
)

// TransferError records the failure of a single copy, rename or delete.
type TransferError struct {
	// Op is the action that failed (e.g. "copy-local-to-remote")
	Op string

	// Path is the relative path the action operated on
	Path string

	// Err is the underlying store error
	Err error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// PartialError aggregates the transfer errors of a partially completed run.
// Independent paths keep syncing after one path fails; the caller sees
// everything that went wrong, not just the first failure.
type PartialError struct {
	Errors []*TransferError
}

// Error implements the error interface.
func (e *PartialError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("sync partially completed: %v", e.Errors[0])
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, te := range e.Errors {
		msgs = append(msgs, te.Error())
	}
	return fmt.Sprintf("sync partially completed, %d paths failed: %s",
		len(e.Errors), strings.Join(msgs, "; "))
}

// Paths returns the relative paths that failed, in recording order.
func (e *PartialError) Paths() []string {
	paths := make([]string, 0, len(e.Errors))
	for _, te := range e.Errors {
		paths = append(paths, te.Path)
	}
	return paths
}
