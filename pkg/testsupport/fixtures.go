// Package testsupport holds helpers shared by the package test suites.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// EntryPath returns the on-disk path of the cache entry for key inside dir,
// mirroring the store's file layout.
func EntryPath(dir, key string) string {
	return filepath.Join(dir, key+".msgpack")
}

// CorruptEntry overwrites the entry file for key with arbitrary bytes,
// simulating a torn write or on-disk damage.
func CorruptEntry(t *testing.T, dir, key string, data []byte) {
	t.Helper()

	if err := os.WriteFile(EntryPath(dir, key), data, 0o644); err != nil {
		t.Fatalf("failed to corrupt entry %s: %v", key, err)
	}
}

// TempFile creates a temporary file with the given content. The file is
// removed when the test finishes.
func TempFile(t *testing.T, content []byte) string {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "test-*")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		t.Fatalf("failed to write to temp file: %v", err)
	}

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	return tmpfile.Name()
}
