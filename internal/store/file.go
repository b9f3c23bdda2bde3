package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
)

// lockTimeout bounds how long Save waits for a concurrent writer.
const lockTimeout = 5 * time.Second

// File loads and saves snapshots at a fixed path. Saves are atomic
// (temp file, fsync, rename) and serialized across processes with an
// advisory lock on a sidecar file. The lock prevents truncation
// corruption only; the load-mutate-save cycle itself stays
// last-writer-wins.
type File struct {
	path string
}

// NewFile creates a File for the given store path. The file itself may
// not exist yet; Load treats that as an empty store.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the store file path.
func (f *File) Path() string {
	return f.path
}

// Load reads and validates the current snapshot. A missing file yields
// an empty store. Malformed content yields apperr.ErrCorruptStore; any
// other read failure yields apperr.ErrStoreUnavailable.
func (f *File) Load() (*Store, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrStoreUnavailable, f.path, err)
	}

	st := New()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", apperr.ErrCorruptStore, f.path, err)
	}
	if st.Tags == nil {
		st.Tags = make(map[string][]models.Child)
	}
	if st.Notes == nil {
		st.Notes = make(map[string]Note)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// Save atomically replaces the persisted snapshot. Concurrent readers
// never observe a partial write; the rename is the commit point.
func (f *File) Save(st *Store) error {
	lock, err := acquireLock(f.path+".lock", lockTimeout)
	if err != nil {
		return fmt.Errorf("%w: lock %s: %v", apperr.ErrStoreUnavailable, f.path, err)
	}
	defer func() { _ = lock.Release() }()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", apperr.ErrStoreUnavailable, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tagnote-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", apperr.ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: write temp: %v", apperr.ErrStoreUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: fsync: %v", apperr.ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", apperr.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", apperr.ErrStoreUnavailable, err)
	}
	success = true
	return nil
}
