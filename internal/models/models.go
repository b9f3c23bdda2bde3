// Package models defines the domain types for Tagnote: tag and note
// identifiers, child descriptors, and the note timestamp encoding.
package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/starford/tagnote/internal/apperr"
)

// Kind discriminates the two node types in the tag graph.
type Kind string

const (
	KindTag  Kind = "tag"
	KindNote Kind = "note"
)

// NoteLayout is the time layout embedded in note identifiers.
const NoteLayout = "2006-01-02_15-04-05"

var (
	notePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.txt$`)
	tagPattern  = regexp.MustCompile(`^[\w-]+$`)
)

// IsNoteID reports whether name is a timestamp-derived note identifier.
func IsNoteID(name string) bool {
	return notePattern.MatchString(name)
}

// IsTagName reports whether name is a valid tag label.
// Note identifiers take precedence: a name matching the note pattern
// is never a tag.
func IsTagName(name string) bool {
	return !IsNoteID(name) && tagPattern.MatchString(name)
}

// Classify maps a name to its node kind. Names that are neither a note
// identifier nor a tag label yield apperr.ErrBadName.
func Classify(name string) (Kind, error) {
	switch {
	case IsNoteID(name):
		return KindNote, nil
	case tagPattern.MatchString(name):
		return KindTag, nil
	default:
		return "", fmt.Errorf("%w: %q", apperr.ErrBadName, name)
	}
}

// Child is one outgoing edge of a tag: a reference to a note or to
// another tag.
type Child struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// NoteID formats a creation time as a note identifier.
func NoteID(ts time.Time) string {
	return ts.Format(NoteLayout) + ".txt"
}

// NoteTime parses the creation time out of a note identifier.
// The location (time.Local or time.UTC) mirrors the utc config flag
// used when the note was created.
func NoteTime(id string, loc *time.Location) (time.Time, error) {
	if !IsNoteID(id) {
		return time.Time{}, fmt.Errorf("%w: %q is not a note identifier", apperr.ErrBadName, id)
	}
	ts, err := time.ParseInLocation(NoteLayout, id[:len(id)-len(".txt")], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse note time %q: %w", id, err)
	}
	return ts, nil
}
