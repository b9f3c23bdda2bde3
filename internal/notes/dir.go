package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
)

// Dir implements Provider backed by a flat local directory.
type Dir struct {
	root string // absolute path to the notes directory
}

// NewDir creates a Dir rooted at the given directory, creating it if
// missing.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("notes: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("notes: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("notes: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("notes: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute notes directory path.
func (d *Dir) Root() string {
	return d.root
}

// safePath resolves a ref against the notes directory and rejects any
// result that escapes it.
func (d *Dir) safePath(ref string) (string, error) {
	cleaned := filepath.Clean(ref)
	if cleaned == "" || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("notes: bad ref: %q", ref)
	}
	joined := filepath.Join(d.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("notes: resolve ref: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("notes: ref escapes notes directory: %q", ref)
	}
	return abs, nil
}

// ReadContent returns the note's raw bytes. Any failure, including a
// missing file, maps to apperr.ErrContentUnavailable: queries degrade
// per note rather than aborting.
func (d *Dir) ReadContent(ref string) ([]byte, error) {
	abs, err := d.safePath(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrContentUnavailable, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrContentUnavailable, ref, err)
	}
	return data, nil
}

// Exists reports whether the note file is present.
func (d *Dir) Exists(ref string) bool {
	abs, err := d.safePath(ref)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Write atomically writes content: tmp file, fsync, rename.
func (d *Dir) Write(ref string, content []byte) error {
	abs, err := d.safePath(ref)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".tagnote-tmp-*")
	if err != nil {
		return fmt.Errorf("notes: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("notes: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("notes: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("notes: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("notes: rename: %w", err)
	}
	success = true
	return nil
}

// List scans the notes directory for files whose names are valid note
// identifiers.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("notes: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !models.IsNoteID(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}
