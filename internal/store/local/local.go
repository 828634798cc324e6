// Package local implements the store.Store interface for a local
// directory tree.
package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nrollins/bucketsync/internal/core/hatch"
	"github.com/nrollins/bucketsync/internal/domain"
)

// Store walks and mutates a directory tree rooted at an absolute path.
type Store struct {
	root string
	calc hatch.Calculator
	algo hatch.Algorithm
}

// New creates a local store.
// root must be an absolute path; a missing or non-directory root maps
// to domain.ErrRootMissing.
func New(root string, calc hatch.Calculator, algo hatch.Algorithm) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRootMissing
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, domain.ErrRootMissing
	}

	if calc == nil {
		calc = hatch.NewDefaultCalculator()
	}
	if algo == "" {
		algo = hatch.MD5
	}

	return &Store{root: absRoot, calc: calc, algo: algo}, nil
}

// Root returns the root path of this store.
func (s *Store) Root() string {
	return s.root
}

// resolvePath safely resolves a relative path inside the root.
// Returns an error if the path attempts to escape the root directory.
func (s *Store) resolvePath(relPath string) (string, error) {
	if relPath == "" || relPath == "." {
		return "", domain.ErrNotFile
	}

	relPath = filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(relPath) {
		return "", domain.ErrPermissionDenied
	}

	fullPath := filepath.Join(s.root, relPath)

	// filepath.Rel handles edge cases like root="/a" and fullPath="/ab"
	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", domain.ErrPermissionDenied
	}

	return fullPath, nil
}

// List walks the whole tree and returns one record per regular file,
// hatching content as it goes. Symlinks and directories are skipped;
// directory structure is implied by the slash-separated paths.
func (s *Store) List(ctx context.Context) ([]domain.FileRecord, error) {
	var records []domain.FileRecord

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return s.mapError(err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return s.mapError(err)
		}

		// Oversized files are listed without a signature; failing
		// the whole walk over one large file would block every sync.
		sum, err := s.hashFile(ctx, path)
		if err != nil && !errors.Is(err, hatch.ErrSizeExceeded) {
			return err
		}

		records = append(records, domain.FileRecord{
			Path:    relSlash,
			Hatch:   sum,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Read opens a file for reading.
func (s *Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, s.mapError(err)
	}
	if info.IsDir() {
		return nil, domain.ErrNotFile
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, s.mapError(err)
	}
	return file, nil
}

// Write creates or overwrites a file via a temp file and atomic rename.
// Parent directories are created as needed.
func (s *Store) Write(ctx context.Context, rec domain.FileRecord, r io.Reader) error {
	fullPath, err := s.resolvePath(rec.Path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return s.mapError(err)
	}

	tempPath := fullPath + ".bucketsync.tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return s.mapError(err)
	}

	_, copyErr := io.Copy(file, r)
	closeErr := file.Close()

	if copyErr != nil {
		os.Remove(tempPath)
		return copyErr
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return s.mapError(err)
	}
	return nil
}

// Rename moves a file to a new relative path within the root.
func (s *Store) Rename(ctx context.Context, oldPath, newPath string) error {
	oldFull, err := s.resolvePath(oldPath)
	if err != nil {
		return err
	}
	newFull, err := s.resolvePath(newPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return s.mapError(err)
	}
	return s.mapError(os.Rename(oldFull, newFull))
}

// Delete removes a file.
func (s *Store) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return err
	}
	return s.mapError(os.Remove(fullPath))
}

// Exists checks if a path exists.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	fullPath, err := s.resolvePath(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Close releases any resources (no-op for local store).
func (s *Store) Close() error {
	return nil
}

// hashFile computes the hatch of a file on disk.
func (s *Store) hashFile(ctx context.Context, fullPath string) (string, error) {
	file, err := os.Open(fullPath)
	if err != nil {
		return "", s.mapError(err)
	}
	defer file.Close()

	return s.calc.Calculate(ctx, file, s.algo)
}

// mapError converts OS errors to domain errors.
func (s *Store) mapError(err error) error {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	if os.IsPermission(err) {
		return domain.ErrPermissionDenied
	}
	if os.IsExist(err) {
		return domain.ErrAlreadyExists
	}
	return err
}
