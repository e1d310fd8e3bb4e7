package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEntryPath(t *testing.T) {
	got := EntryPath("/tmp/cache", "Multiply_abc123")
	want := filepath.Join("/tmp/cache", "Multiply_abc123.msgpack")
	if got != want {
		t.Errorf("EntryPath() = %q, want %q", got, want)
	}
}

func TestCorruptEntry(t *testing.T) {
	dir := t.TempDir()

	CorruptEntry(t, dir, "calc_1", []byte("garbage"))

	data, err := os.ReadFile(EntryPath(dir, "calc_1"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "garbage" {
		t.Errorf("content = %q", data)
	}
}

func TestTempFile(t *testing.T) {
	path := TempFile(t, []byte("hello"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}
}
