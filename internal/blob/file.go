package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileStore keeps each blob in its own file.
//
// Get and Put each hold an exclusive advisory lock on a sibling ".lock" file,
// so a reader never observes a half-written blob. No lock is held between
// calls: a read-modify-write sequence made of a Get and a Put can race with
// another writer.
type FileStore struct {
	// Root is joined to relative keys. Absolute keys are used as-is.
	Root string
}

// NewFileStore returns a FileStore rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

// Path returns the file path used for key.
func (s *FileStore) Path(key string) string {
	if filepath.IsAbs(key) || s.Root == "" {
		return filepath.Clean(key)
	}
	return filepath.Join(s.Root, key)
}

// Get reads the blob at key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(key)
	var data []byte
	err := withFileLock(path, func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Put overwrites the blob at key.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(key)
	return withFileLock(path, func() error {
		return writeFileAtomic(path, data)
	})
}

// withFileLock executes fn while holding an exclusive lock on path + ".lock".
// Creates the parent directory if it doesn't exist.
func withFileLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

// writeFileAtomic writes data to a temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
