package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// verifyAndWrite re-reads path and only writes when it still hashes to
// expectedHash.
func verifyAndWrite(fs afero.Fs, path, expectedHash string, content []byte, perm os.FileMode) error {
	current, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("re-reading %s for verification: %w", path, err)
	}
	if contentHash(current) != expectedHash {
		return fmt.Errorf("%s: %w", path, ErrConcurrentModification)
	}
	return atomicWriteFile(fs, path, content, perm)
}

// atomicWriteFile writes content to a temp file next to path and renames it
// over path.
func atomicWriteFile(fs afero.Fs, path string, content []byte, perm os.FileMode) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), ".nplmerge-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing to disk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
