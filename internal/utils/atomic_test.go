package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")

	if err := WriteFileAtomic(path, []byte("secret"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "secret" {
		t.Errorf("Expected %q, got %q", "secret", string(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %o", info.Mode().Perm())
	}
}

func TestWriteFileAtomic_ReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.envault")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	if err := WriteFileAtomic(path, []byte("new"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("Expected %q, got %q", "new", string(data))
	}
	assertOnlyFiles(t, dir, ".env.envault")
}

func TestAtomicFile_FailedRenameKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.envault")
	if err := os.WriteFile(path, []byte("original"), 0600); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	crash := errors.New("simulated crash")
	writer := AtomicFile{Rename: func(oldpath, newpath string) error { return crash }}

	err := writer.Write(path, []byte("replacement"), 0600)
	if !errors.Is(err, crash) {
		t.Fatalf("Expected simulated crash error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Errorf("Original file changed: got %q", string(data))
	}
	assertOnlyFiles(t, dir, ".env.envault")
}

func TestAtomicFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "key")
	if err := WriteFileAtomic(path, []byte("x"), 0600); err == nil {
		t.Fatal("Expected error for missing directory")
	}
}

func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != len(names) {
		var got []string
		for _, e := range entries {
			got = append(got, e.Name())
		}
		t.Fatalf("Expected files %v, got %v", names, got)
	}
	for i, e := range entries {
		if e.Name() != names[i] {
			t.Errorf("Expected %s, got %s", names[i], e.Name())
		}
	}
}
