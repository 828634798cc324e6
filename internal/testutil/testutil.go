// Package testutil provides shared helpers for package tests.
package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// CreateTestFile creates a test file with the given content and
// returns its full path.
func CreateTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// SeedTree creates a set of files under dir, keyed by relative
// slash-separated path.
func SeedTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		CreateTestFile(t, dir, filepath.FromSlash(rel), []byte(content))
	}
}

// RandomString generates a random string of the given length.
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
