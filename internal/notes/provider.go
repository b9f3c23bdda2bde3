// Package notes defines the file-system abstraction for the externally
// authored note files.
package notes

// Provider is the interface for note-file operations. The query engine
// only needs ReadContent; the import and sync paths use the rest.
type Provider interface {
	// ReadContent returns the raw bytes of the note at ref (relative to
	// the notes directory). A missing or unreadable file yields an
	// error wrapping apperr.ErrContentUnavailable.
	ReadContent(ref string) ([]byte, error)
	// Exists reports whether the note file at ref is present.
	Exists(ref string) bool
	// Write atomically writes content to ref.
	Write(ref string, content []byte) error
	// List returns the note identifiers present in the directory,
	// sorted (which is chronological for timestamp-derived names).
	List() ([]string, error)
}
