package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRecords stores each record as <dir>/<name>.json.
type FileRecords struct {
	dir string
}

var _ RecordStore = (*FileRecords)(nil)

// NewFileRecords creates dir if needed and returns a store rooted there.
func NewFileRecords(dir string) (*FileRecords, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path is not a directory: %s", dir)
	}
	return &FileRecords{dir: dir}, nil
}

func (f *FileRecords) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileRecords) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", name, err)
	}
	return data, nil
}

// Put writes to a temp file in the same directory and renames it over the
// record, so a crash leaves either the old or the new content.
func (f *FileRecords) Put(name string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing record %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path(name)); err != nil {
		return fmt.Errorf("replacing record %s: %w", name, err)
	}

	success = true
	return nil
}

func (f *FileRecords) Delete(name string) error {
	if err := os.Remove(f.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

func (f *FileRecords) Close() error { return nil }
