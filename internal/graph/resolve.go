package graph

import (
	"sort"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/store"
)

// DirectMembers returns the immediate children of a tag in edge
// insertion order. Unknown tags and dangling children resolve to an
// empty or shortened list, never an error.
func DirectMembers(st *store.Store, name string) []models.Child {
	var out []models.Child
	for _, c := range st.Tags[name] {
		if !exists(st, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Categories returns the tags whose member list contains name, sorted
// for deterministic output.
func Categories(st *store.Store, name string) []string {
	var out []string
	for tag, children := range st.Tags {
		for _, c := range children {
			if c.ID == name {
				out = append(out, tag)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Resolve computes the deduplicated set of note identifiers reachable
// from the given roots by following membership edges transitively
// through intermediate tags. Traversal is breadth-first with a visited
// set, so cyclic tag references terminate. A root that is itself a
// registered note resolves to itself. Unknown or dangling references
// are skipped.
func Resolve(st *store.Store, roots ...string) []string {
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})
	var notes []string

	addNote := func(id string) {
		if _, ok := st.Notes[id]; !ok {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		notes = append(notes, id)
	}

	var queue []string
	for _, root := range roots {
		if models.IsNoteID(root) {
			addNote(root)
			continue
		}
		if _, ok := visited[root]; ok {
			continue
		}
		visited[root] = struct{}{}
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, c := range st.Tags[current] {
			switch c.Kind {
			case models.KindNote:
				addNote(c.ID)
			case models.KindTag:
				if _, ok := visited[c.ID]; ok {
					continue
				}
				visited[c.ID] = struct{}{}
				if _, ok := st.Tags[c.ID]; ok {
					queue = append(queue, c.ID)
				}
			}
		}
	}
	return notes
}

// AllNotes returns every registered note identifier, sorted. Note
// identifiers encode their timestamp, so lexicographic order is
// chronological.
func AllNotes(st *store.Store) []string {
	out := make([]string, 0, len(st.Notes))
	for id := range st.Notes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TopLevel returns the tags and notes that are not a member of any
// tag, sorted.
func TopLevel(st *store.Store) []string {
	member := make(map[string]struct{})
	for _, children := range st.Tags {
		for _, c := range children {
			member[c.ID] = struct{}{}
		}
	}
	var out []string
	for name := range st.Tags {
		if _, ok := member[name]; !ok {
			out = append(out, name)
		}
	}
	for id := range st.Notes {
		if _, ok := member[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Tags returns every known tag name, sorted.
func Tags(st *store.Store) []string {
	out := make([]string, 0, len(st.Tags))
	for name := range st.Tags {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// exists reports whether a child descriptor refers to a known entity.
func exists(st *store.Store, c models.Child) bool {
	switch c.Kind {
	case models.KindTag:
		_, ok := st.Tags[c.ID]
		return ok
	case models.KindNote:
		_, ok := st.Notes[c.ID]
		return ok
	default:
		return false
	}
}
