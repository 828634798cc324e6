// Package memory provides an in-memory Store used by tests and dry wiring.
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/nrollins/bucketsync/internal/domain"
)

type object struct {
	data    []byte
	modTime time.Time
}

// Store keeps files in a map, hatching content with MD5 like the
// real stores do.
type Store struct {
	mu      sync.Mutex
	objects map[string]object
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string]object)}
}

// Seed writes initial content without going through the Store interface.
func (s *Store) Seed(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = object{data: []byte(content), modTime: time.Now()}
}

// Content returns the raw bytes of a stored file, or nil if absent.
func (s *Store) Content(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil
	}
	return append([]byte(nil), obj.data...)
}

// Paths returns all stored paths, sorted.
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// List implements store.Store.
func (s *Store) List(ctx context.Context) ([]domain.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]domain.FileRecord, 0, len(s.objects))
	for p, obj := range s.objects {
		sum := md5.Sum(obj.data)
		records = append(records, domain.FileRecord{
			Path:    p,
			Hatch:   hex.EncodeToString(sum[:]),
			Size:    int64(len(obj.data)),
			ModTime: obj.modTime,
		})
	}
	return records, nil
}

// Read implements store.Store.
func (s *Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Write implements store.Store.
func (s *Store) Write(ctx context.Context, rec domain.FileRecord, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[rec.Path] = object{data: data, modTime: time.Now()}
	return nil
}

// Rename implements store.Store.
func (s *Store) Rename(ctx context.Context, oldPath, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[oldPath]
	if !ok {
		return domain.ErrNotFound
	}
	s.objects[newPath] = obj
	delete(s.objects, oldPath)
	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[path]; !ok {
		return domain.ErrNotFound
	}
	delete(s.objects, path)
	return nil
}

// Exists implements store.Store.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}
