// Package apperr defines the sentinel errors shared across Tagnote.
package apperr

import "errors"

var (
	// ErrCorruptStore means the persisted tag graph failed structural
	// validation on load.
	ErrCorruptStore = errors.New("corrupt store")
	// ErrStoreUnavailable means the store file could not be read or
	// written for a reason other than not existing yet.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidParent means a note identifier was used as the parent
	// side of an association.
	ErrInvalidParent = errors.New("notes cannot have members")
	// ErrContentUnavailable means a note's backing file could not be read.
	ErrContentUnavailable = errors.New("content unavailable")
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTagInUse means a tag still has members or categories and
	// cannot be deleted.
	ErrTagInUse = errors.New("tag still has mappings")
	// ErrNoteExists means an import would collide with an existing note.
	ErrNoteExists = errors.New("note already exists")
	// ErrBadName means a name is neither a tag name nor a note identifier.
	ErrBadName = errors.New("invalid name")
)
