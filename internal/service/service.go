// Package service coordinates the store, the tag graph, and the notes
// directory. Every operation is one load-mutate-save cycle over a
// fresh snapshot; there is no state held between invocations.
package service

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/graph"
	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/notes"
	"github.com/starford/tagnote/internal/query"
	"github.com/starford/tagnote/internal/store"
)

// Service executes the tagnote operations.
type Service struct {
	file     *store.File
	provider notes.Provider
	loc      *time.Location
}

// New creates a Service. utc controls the location used when deriving
// timestamps from note identifiers and file mtimes.
func New(file *store.File, provider notes.Provider, utc bool) *Service {
	loc := time.Local
	if utc {
		loc = time.UTC
	}
	return &Service{file: file, provider: provider, loc: loc}
}

// Add upserts a tag or registers a note, then associates it with each
// category. Categories must be tag names. Registering a note requires
// its backing file to exist. Returns the names of newly created tags.
func (s *Service) Add(name string, categories []string) ([]string, error) {
	kind, err := models.Classify(name)
	if err != nil {
		return nil, err
	}
	for _, cat := range categories {
		if !models.IsTagName(cat) {
			return nil, fmt.Errorf("%w: category %q", apperr.ErrInvalidParent, cat)
		}
	}

	st, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	existedBefore := make(map[string]bool, len(categories)+1)
	for _, cat := range categories {
		_, existedBefore[cat] = st.Tags[cat]
	}

	var created []string
	switch kind {
	case models.KindNote:
		if !s.provider.Exists(name) {
			return nil, fmt.Errorf("note %q: %w", name, apperr.ErrNotFound)
		}
		ts, err := models.NoteTime(name, s.loc)
		if err != nil {
			return nil, err
		}
		if err := graph.AddNote(st, name, name, ts, categories...); err != nil {
			return nil, err
		}
	case models.KindTag:
		changed, err := graph.AddTag(st, name)
		if err != nil {
			return nil, err
		}
		if changed {
			created = append(created, name)
		}
		for _, cat := range categories {
			if _, err := graph.AddAssociation(st, cat, name); err != nil {
				return nil, err
			}
		}
	}
	// Categories are upserted by the association; report the new ones.
	for _, cat := range categories {
		if !existedBefore[cat] {
			created = append(created, cat)
		}
	}

	if err := s.file.Save(st); err != nil {
		return nil, err
	}
	return created, nil
}

// Members lists the direct children of a tag in insertion order. An
// empty tag name lists the entities that belong to no tag.
func (s *Service) Members(tag string) ([]string, error) {
	st, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return graph.TopLevel(st), nil
	}
	return query.Members(st, tag), nil
}

// Categories lists the immediate categories of a tag or note.
func (s *Service) Categories(name string) ([]string, error) {
	st, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	return graph.Categories(st, name), nil
}

// Tags lists every known tag name.
func (s *Service) Tags() ([]string, error) {
	st, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	return graph.Tags(st), nil
}

// Show resolves, filters, and orders notes under the given tags and
// returns their rendered blocks.
func (s *Service) Show(tags []string, dir query.Direction, pattern string) ([]query.Block, error) {
	st, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	return query.Show(st, s.provider, tags, dir, pattern), nil
}

// Last returns the most recent note resolved from the given tags.
func (s *Service) Last(tags []string) (query.Block, error) {
	st, err := s.file.Load()
	if err != nil {
		return query.Block{}, err
	}
	return query.Last(st, s.provider, tags)
}

// Remove drops the edges from each category to name, or deletes the
// tag entirely when no categories are given and nothing references it.
func (s *Service) Remove(name string, categories []string) error {
	st, err := s.file.Load()
	if err != nil {
		return err
	}
	if len(categories) > 0 {
		for _, cat := range categories {
			if !models.IsTagName(cat) {
				return fmt.Errorf("%w: category %q", apperr.ErrInvalidParent, cat)
			}
			if _, ok := st.Tags[cat]; !ok {
				return fmt.Errorf("tag %q: %w", cat, apperr.ErrNotFound)
			}
		}
		for _, cat := range categories {
			graph.RemoveAssociation(st, cat, name)
		}
	} else if models.IsNoteID(name) {
		if !graph.RemoveNote(st, name) {
			return fmt.Errorf("note %q: %w", name, apperr.ErrNotFound)
		}
	} else {
		if err := graph.RemoveTag(st, name); err != nil {
			return err
		}
	}
	return s.file.Save(st)
}

// Import copies foreign text files into the notes directory under
// timestamp-derived names (from file mtime) and registers them,
// optionally under the given tags. Returns the new note identifiers.
func (s *Service) Import(paths []string, tags []string) ([]string, error) {
	st, err := s.file.Load()
	if err != nil {
		return nil, err
	}

	var imported []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		id := models.NoteID(info.ModTime().In(s.loc))
		if s.provider.Exists(id) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNoteExists, id)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		if err := s.provider.Write(id, data); err != nil {
			return nil, err
		}
		if err := graph.AddNote(st, id, id, info.ModTime().In(s.loc), tags...); err != nil {
			return nil, err
		}
		imported = append(imported, id)
	}

	if err := s.file.Save(st); err != nil {
		return nil, err
	}
	return imported, nil
}

// RegisterNote records a note file that appeared in the notes
// directory, deriving the timestamp from its identifier.
func (s *Service) RegisterNote(id string) error {
	ts, err := models.NoteTime(id, s.loc)
	if err != nil {
		return err
	}
	st, err := s.file.Load()
	if err != nil {
		return err
	}
	if _, ok := st.Notes[id]; ok {
		return nil
	}
	if err := graph.AddNote(st, id, id, ts); err != nil {
		return err
	}
	return s.file.Save(st)
}

// DeregisterNote removes the record of a note whose file disappeared.
// Edges referencing it stay behind and are skipped at resolve time.
func (s *Service) DeregisterNote(id string) error {
	st, err := s.file.Load()
	if err != nil {
		return err
	}
	if !graph.RemoveNote(st, id) {
		return nil
	}
	return s.file.Save(st)
}

// Sync reconciles the store with the notes directory: note files
// without a record are registered, records without a file are pruned.
func (s *Service) Sync(logger *slog.Logger) (added, removed int, err error) {
	onDisk, err := s.provider.List()
	if err != nil {
		return 0, 0, err
	}

	st, err := s.file.Load()
	if err != nil {
		return 0, 0, err
	}

	disk := make(map[string]struct{}, len(onDisk))
	for _, id := range onDisk {
		disk[id] = struct{}{}
		if _, ok := st.Notes[id]; ok {
			continue
		}
		ts, tsErr := models.NoteTime(id, s.loc)
		if tsErr != nil {
			logger.Warn("sync: skipping file", slog.String("id", id), slog.String("error", tsErr.Error()))
			continue
		}
		if addErr := graph.AddNote(st, id, id, ts); addErr != nil {
			logger.Warn("sync: register failed", slog.String("id", id), slog.String("error", addErr.Error()))
			continue
		}
		added++
		logger.Debug("sync: registered", slog.String("id", id))
	}

	for id := range st.Notes {
		if _, ok := disk[id]; ok {
			continue
		}
		graph.RemoveNote(st, id)
		removed++
		logger.Debug("sync: pruned", slog.String("id", id))
	}

	if added == 0 && removed == 0 {
		return 0, 0, nil
	}
	if err := s.file.Save(st); err != nil {
		return 0, 0, err
	}
	return added, removed, nil
}
