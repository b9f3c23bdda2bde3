// Package testutil provides shared test helpers for setting up notes
// directories and tag graph stores.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/notes"
	"github.com/starford/tagnote/internal/service"
	"github.com/starford/tagnote/internal/store"
)

// TestNotesDir creates a temporary notes directory.
func TestNotesDir(t *testing.T) *notes.Dir {
	t.Helper()
	dir, err := notes.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// TestStoreFile creates a store file in a temporary directory.
func TestStoreFile(t *testing.T) *store.File {
	t.Helper()
	return store.NewFile(filepath.Join(t.TempDir(), "tagnote.json"))
}

// TestService creates a service backed by temporary storage.
func TestService(t *testing.T) (*service.Service, *notes.Dir) {
	t.Helper()
	dir := TestNotesDir(t)
	return service.New(TestStoreFile(t), dir, true), dir
}

// WriteNote writes a note with a deterministic identifier derived from i.
func WriteNote(t *testing.T, d *notes.Dir, i int, content string) string {
	t.Helper()
	id := time.Date(2020, 1, 1, 0, 0, i, 0, time.UTC).Format(models.NoteLayout) + ".txt"
	if err := d.Write(id, []byte(content)); err != nil {
		t.Fatal(err)
	}
	return id
}
