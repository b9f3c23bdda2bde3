// Package store persists the tag graph: the set of known tags, the set
// of registered notes, and the membership edges between them, as a
// single JSON snapshot replaced atomically on every save.
package store

import (
	"fmt"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
)

// Version is the snapshot format version written by this build.
const Version = 1

// Note is the stored record of a registered note. Content lives in the
// external note file; the record carries only what queries need.
type Note struct {
	// Timestamp is the creation instant as Unix seconds. Queries treat
	// it as an opaque comparable integer.
	Timestamp int64 `json:"ts"`
	// ContentRef locates the backing file, relative to the notes directory.
	ContentRef string `json:"ref"`
	// Seq is the registration sequence number, used as the tie-break
	// when timestamps are equal.
	Seq int64 `json:"seq"`
}

// Store is an in-memory snapshot of the whole graph. One snapshot is
// loaded at the start of each command, mutated, and saved back; there
// is no cross-invocation state.
type Store struct {
	Version int                       `json:"version"`
	NextSeq int64                     `json:"next_seq"`
	Tags    map[string][]models.Child `json:"tags"`
	Notes   map[string]Note           `json:"notes"`
}

// New returns an empty snapshot.
func New() *Store {
	return &Store{
		Version: Version,
		Tags:    make(map[string][]models.Child),
		Notes:   make(map[string]Note),
	}
}

// NextSequence returns the next registration sequence number and
// advances the counter.
func (s *Store) NextSequence() int64 {
	s.NextSeq++
	return s.NextSeq
}

// Validate checks structural invariants of a loaded snapshot. A failure
// means the persisted file is corrupt, not that a reference dangles:
// dangling references are legal and skipped at resolve time.
func (s *Store) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", apperr.ErrCorruptStore, s.Version)
	}
	for name, children := range s.Tags {
		if !models.IsTagName(name) {
			return fmt.Errorf("%w: invalid tag name %q", apperr.ErrCorruptStore, name)
		}
		for _, c := range children {
			switch c.Kind {
			case models.KindTag:
				if !models.IsTagName(c.ID) {
					return fmt.Errorf("%w: tag %q has tag child with note identifier %q", apperr.ErrCorruptStore, name, c.ID)
				}
			case models.KindNote:
				if !models.IsNoteID(c.ID) {
					return fmt.Errorf("%w: tag %q has note child with tag name %q", apperr.ErrCorruptStore, name, c.ID)
				}
			default:
				return fmt.Errorf("%w: tag %q has child of unknown kind %q", apperr.ErrCorruptStore, name, c.Kind)
			}
		}
	}
	for id, n := range s.Notes {
		if !models.IsNoteID(id) {
			return fmt.Errorf("%w: invalid note identifier %q", apperr.ErrCorruptStore, id)
		}
		if n.ContentRef == "" {
			return fmt.Errorf("%w: note %q has empty content ref", apperr.ErrCorruptStore, id)
		}
	}
	return nil
}
