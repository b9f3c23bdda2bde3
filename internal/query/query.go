// Package query orders, filters, and renders resolved notes for the
// show, last, and members operations.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/graph"
	"github.com/starford/tagnote/internal/store"
)

// ContentReader fetches note content by content ref. The notes
// directory implements it; tests substitute fakes.
type ContentReader interface {
	ReadContent(ref string) ([]byte, error)
}

// Direction selects the timestamp sort order.
type Direction int

const (
	// Descending is the default: most recent first.
	Descending Direction = iota
	Ascending
)

// ParseDirection accepts any prefix of "ascending" or "descending",
// mirroring the CLI's -o flag.
func ParseDirection(s string) (Direction, error) {
	switch {
	case s == "":
		return Descending, nil
	case strings.HasPrefix("ascending", s):
		return Ascending, nil
	case strings.HasPrefix("descending", s):
		return Descending, nil
	default:
		return Descending, fmt.Errorf("bad order %q: want ascending or descending", s)
	}
}

// Note pairs a note identifier with the record fields queries sort on.
type Note struct {
	ID        string
	Ref       string
	Timestamp int64
	seq       int64
}

// Block is one rendered note in a show result.
type Block struct {
	ID string
	// Content is the note text, or empty when Unavailable.
	Content string
	// Unavailable marks a note whose backing file could not be read.
	// The query degrades per note instead of aborting.
	Unavailable bool
}

// Collect materializes note records for the given identifiers,
// silently dropping identifiers with no record.
func Collect(st *store.Store, ids []string) []Note {
	out := make([]Note, 0, len(ids))
	for _, id := range ids {
		rec, ok := st.Notes[id]
		if !ok {
			continue
		}
		out = append(out, Note{ID: id, Ref: rec.ContentRef, Timestamp: rec.Timestamp, seq: rec.Seq})
	}
	return out
}

// Order sorts notes by timestamp in the given direction. Equal
// timestamps keep their registration order (stable on seq).
func Order(notes []Note, dir Direction) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.Timestamp != b.Timestamp {
			if dir == Ascending {
				return a.Timestamp < b.Timestamp
			}
			return a.Timestamp > b.Timestamp
		}
		if dir == Ascending {
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})
}

// Filter retains notes whose content contains the literal pattern.
// The match is case-sensitive with no globbing. Notes whose content
// cannot be read are dropped from the result.
func Filter(notes []Note, pattern string, r ContentReader) []Note {
	if pattern == "" {
		return notes
	}
	out := notes[:0]
	for _, n := range notes {
		content, err := r.ReadContent(n.Ref)
		if err != nil {
			continue
		}
		if strings.Contains(string(content), pattern) {
			out = append(out, n)
		}
	}
	return out
}

// Show resolves the roots, filters, orders, and reads content for each
// surviving note. An empty roots list means every registered note.
// A per-note read failure yields an Unavailable block rather than an
// error.
func Show(st *store.Store, r ContentReader, roots []string, dir Direction, pattern string) []Block {
	var ids []string
	if len(roots) == 0 {
		ids = graph.AllNotes(st)
	} else {
		ids = graph.Resolve(st, roots...)
	}
	notes := Collect(st, ids)
	notes = Filter(notes, pattern, r)
	Order(notes, dir)

	blocks := make([]Block, 0, len(notes))
	for _, n := range notes {
		content, err := r.ReadContent(n.Ref)
		if err != nil {
			blocks = append(blocks, Block{ID: n.ID, Unavailable: true})
			continue
		}
		blocks = append(blocks, Block{ID: n.ID, Content: string(content)})
	}
	return blocks
}

// Last returns the content of the most recent note resolved from the
// roots. It matches the first element of Show with descending order
// and no filter. apperr.ErrNotFound means no notes resolved;
// apperr.ErrContentUnavailable means the winner's file is unreadable.
func Last(st *store.Store, r ContentReader, roots []string) (Block, error) {
	blocks := Show(st, r, roots, Descending, "")
	if len(blocks) == 0 {
		return Block{}, apperr.ErrNotFound
	}
	b := blocks[0]
	if b.Unavailable {
		return b, fmt.Errorf("note %s: %w", b.ID, apperr.ErrContentUnavailable)
	}
	return b, nil
}

// Members returns the direct child identifiers of a tag, one per
// element, in insertion order.
func Members(st *store.Store, tag string) []string {
	children := graph.DirectMembers(st, tag)
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, c.ID)
	}
	return out
}

// unavailableMarker is rendered in place of content that could not be read.
const unavailableMarker = "(content unavailable)\n"

// RenderBlocks formats show output: identifier, a "---" delimiter, the
// content, and a "***" record separator per note.
func RenderBlocks(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.ID)
		sb.WriteString("\n---\n")
		if b.Unavailable {
			sb.WriteString(unavailableMarker)
		} else {
			sb.WriteString(b.Content)
		}
		sb.WriteString("\n***\n")
	}
	return sb.String()
}
