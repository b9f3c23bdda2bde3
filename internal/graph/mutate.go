// Package graph implements mutation and traversal of the tag graph.
// All functions operate on an in-memory store snapshot; persisting the
// result is the caller's job.
package graph

import (
	"fmt"
	"time"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/store"
)

// AddTag creates the tag if it does not exist. Re-adding is a no-op;
// the returned bool reports whether the store changed.
func AddTag(st *store.Store, name string) (bool, error) {
	if models.IsNoteID(name) {
		return false, fmt.Errorf("%w: %q is a note identifier", apperr.ErrBadName, name)
	}
	if !models.IsTagName(name) {
		return false, fmt.Errorf("%w: %q", apperr.ErrBadName, name)
	}
	if _, ok := st.Tags[name]; ok {
		return false, nil
	}
	st.Tags[name] = nil
	return true, nil
}

// AddAssociation adds a membership edge from parent to child. The
// parent tag is created if missing (add is an upsert throughout).
// A duplicate edge is a no-op. Using a note identifier as the parent
// yields apperr.ErrInvalidParent.
func AddAssociation(st *store.Store, parent, child string) (bool, error) {
	if models.IsNoteID(parent) {
		return false, fmt.Errorf("%w: %q", apperr.ErrInvalidParent, parent)
	}
	kind, err := models.Classify(child)
	if err != nil {
		return false, err
	}
	if _, err := AddTag(st, parent); err != nil {
		return false, err
	}
	for _, c := range st.Tags[parent] {
		if c.ID == child {
			return false, nil
		}
	}
	st.Tags[parent] = append(st.Tags[parent], models.Child{Kind: kind, ID: child})
	return true, nil
}

// AddNote registers a note record and associates it with the given
// tags in the same mutation. Registering an already-known note only
// adds the missing associations.
func AddNote(st *store.Store, id, contentRef string, ts time.Time, tags ...string) error {
	if !models.IsNoteID(id) {
		return fmt.Errorf("%w: %q is not a note identifier", apperr.ErrBadName, id)
	}
	if _, ok := st.Notes[id]; !ok {
		st.Notes[id] = store.Note{
			Timestamp:  ts.Unix(),
			ContentRef: contentRef,
			Seq:        st.NextSequence(),
		}
	}
	for _, tag := range tags {
		if _, err := AddAssociation(st, tag, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAssociation drops the edge from parent to child if present.
func RemoveAssociation(st *store.Store, parent, child string) bool {
	children, ok := st.Tags[parent]
	if !ok {
		return false
	}
	for i, c := range children {
		if c.ID == child {
			st.Tags[parent] = append(children[:i:i], children[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveTag deletes a tag that has no members and no categories.
// A tag still referenced either way yields apperr.ErrTagInUse; the
// caller should remove the edges first.
func RemoveTag(st *store.Store, name string) error {
	if _, ok := st.Tags[name]; !ok {
		return fmt.Errorf("tag %q: %w", name, apperr.ErrNotFound)
	}
	if len(st.Tags[name]) > 0 || len(Categories(st, name)) > 0 {
		return fmt.Errorf("tag %q: %w", name, apperr.ErrTagInUse)
	}
	delete(st.Tags, name)
	return nil
}

// RemoveNote deletes a note record. Edges referencing it are left in
// place and skipped at resolve time.
func RemoveNote(st *store.Store, id string) bool {
	if _, ok := st.Notes[id]; !ok {
		return false
	}
	delete(st.Notes, id)
	return true
}
