package notes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/tagnote/internal/apperr"
)

func tempDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func TestWriteAndReadContent(t *testing.T) {
	d := tempDir(t)
	content := []byte("buy groceries\n")
	if err := d.Write("2020-01-01_00-00-01.txt", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := d.ReadContent("2020-01-01_00-00-01.txt")
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q", got)
	}
}

func TestReadContentMissing(t *testing.T) {
	d := tempDir(t)
	_, err := d.ReadContent("2020-01-01_00-00-01.txt")
	if !errors.Is(err, apperr.ErrContentUnavailable) {
		t.Errorf("err = %v, want ErrContentUnavailable", err)
	}
}

func TestExists(t *testing.T) {
	d := tempDir(t)
	if d.Exists("2020-01-01_00-00-01.txt") {
		t.Error("Exists before write")
	}
	_ = d.Write("2020-01-01_00-00-01.txt", []byte("x"))
	if !d.Exists("2020-01-01_00-00-01.txt") {
		t.Error("Exists after write")
	}
}

func TestListOnlyNoteIdentifiers(t *testing.T) {
	d := tempDir(t)
	_ = d.Write("2020-01-01_00-00-02.txt", []byte("b"))
	_ = d.Write("2020-01-01_00-00-01.txt", []byte("a"))
	if err := os.WriteFile(filepath.Join(d.Root(), "README"), []byte("not a note"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != "2020-01-01_00-00-01.txt" || got[1] != "2020-01-01_00-00-02.txt" {
		t.Errorf("List = %v", got)
	}
}

func TestTraversalBlocked(t *testing.T) {
	d := tempDir(t)
	cases := []string{
		"../../etc/passwd",
		"../outside.txt",
		"/etc/shadow",
	}
	for _, ref := range cases {
		if _, err := d.ReadContent(ref); err == nil {
			t.Errorf("expected error reading %q", ref)
		}
		if err := d.Write(ref, []byte("x")); err == nil {
			t.Errorf("expected error writing %q", ref)
		}
	}
}

func TestNewDirCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "notes")
	if _, err := NewDir(root); err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}
