package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AtomicFile publishes file contents with write-to-temp then rename, so
// readers of the destination only ever see the old or the new content.
type AtomicFile struct {
	// Rename publishes the temp file. Defaults to os.Rename.
	Rename func(oldpath, newpath string) error
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory using os.Rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return AtomicFile{}.Write(path, data, perm)
}

// Write creates a temp file next to path, writes and fsyncs data, then
// renames it over path and fsyncs the directory. On any failure the temp
// file is removed and path is left as it was.
func (a AtomicFile) Write(path string, data []byte, perm os.FileMode) (err error) {
	rename := a.Rename
	if rename == nil {
		rename = os.Rename
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions on temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err = rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}

	// The rename has happened; a failed directory sync only weakens
	// durability, so it is not reported as a failed write.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	// Directories cannot be opened for sync on Windows.
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
