package graph

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/store"
)

func noteID(i int) string {
	return time.Date(2020, 1, 1, 0, 0, i, 0, time.UTC).Format(models.NoteLayout) + ".txt"
}

func addNote(t *testing.T, st *store.Store, id string, tags ...string) {
	t.Helper()
	ts, err := models.NoteTime(id, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if err := AddNote(st, id, id, ts, tags...); err != nil {
		t.Fatal(err)
	}
}

func TestAddTagIdempotent(t *testing.T) {
	st := store.New()
	changed, err := AddTag(st, "todo")
	if err != nil || !changed {
		t.Fatalf("first add: changed=%v err=%v", changed, err)
	}
	changed, err = AddTag(st, "todo")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if changed {
		t.Error("re-adding an existing tag must be a no-op")
	}
	if len(st.Tags) != 1 {
		t.Errorf("tags = %v", st.Tags)
	}
}

func TestAddTagRejectsNoteID(t *testing.T) {
	st := store.New()
	if _, err := AddTag(st, noteID(0)); !errors.Is(err, apperr.ErrBadName) {
		t.Errorf("err = %v, want ErrBadName", err)
	}
}

func TestAddAssociationAutoCreatesParent(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1))
	changed, err := AddAssociation(st, "todo", noteID(1))
	if err != nil {
		t.Fatalf("AddAssociation: %v", err)
	}
	if !changed {
		t.Error("expected change")
	}
	if _, ok := st.Tags["todo"]; !ok {
		t.Error("parent tag not created")
	}
}

func TestAddAssociationDuplicateIsNoOp(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "todo")
	changed, err := AddAssociation(st, "todo", noteID(1))
	if err != nil {
		t.Fatalf("AddAssociation: %v", err)
	}
	if changed {
		t.Error("duplicate edge must be a no-op")
	}
	if len(st.Tags["todo"]) != 1 {
		t.Errorf("children = %v", st.Tags["todo"])
	}
}

func TestAddAssociationRejectsNoteParent(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1))
	_, err := AddAssociation(st, noteID(1), "todo")
	if !errors.Is(err, apperr.ErrInvalidParent) {
		t.Errorf("err = %v, want ErrInvalidParent", err)
	}
	if len(st.Tags) != 0 {
		t.Error("no mutation may be applied on rejection")
	}
}

func TestDirectMembersInsertionOrder(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(2), "todo")
	if _, err := AddAssociation(st, "todo", "errands"); err != nil {
		t.Fatal(err)
	}
	if _, err := AddTag(st, "errands"); err != nil {
		t.Fatal(err)
	}
	addNote(t, st, noteID(1), "todo")

	got := DirectMembers(st, "todo")
	want := []models.Child{
		{Kind: models.KindNote, ID: noteID(2)},
		{Kind: models.KindTag, ID: "errands"},
		{Kind: models.KindNote, ID: noteID(1)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DirectMembers = %v, want %v", got, want)
	}
}

func TestDirectMembersUnknownTag(t *testing.T) {
	st := store.New()
	if got := DirectMembers(st, "nonexistent"); len(got) != 0 {
		t.Errorf("DirectMembers = %v, want empty", got)
	}
}

func TestDirectMembersSkipsDangling(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "todo")
	st.Tags["todo"] = append(st.Tags["todo"], models.Child{Kind: models.KindNote, ID: noteID(9)})
	got := DirectMembers(st, "todo")
	if len(got) != 1 || got[0].ID != noteID(1) {
		t.Errorf("DirectMembers = %v", got)
	}
}

func TestResolveTransitive(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "child")
	if _, err := AddAssociation(st, "parent", "child"); err != nil {
		t.Fatal(err)
	}

	notes := Resolve(st, "parent")
	if len(notes) != 1 || notes[0] != noteID(1) {
		t.Errorf("Resolve(parent) = %v", notes)
	}

	// Direct members of parent must not include the nested note.
	direct := DirectMembers(st, "parent")
	if len(direct) != 1 || direct[0].ID != "child" {
		t.Errorf("DirectMembers(parent) = %v", direct)
	}
}

func TestResolveCycleTerminates(t *testing.T) {
	st := store.New()
	if _, err := AddAssociation(st, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := AddAssociation(st, "b", "a"); err != nil {
		t.Fatal(err)
	}
	addNote(t, st, noteID(1), "a")
	addNote(t, st, noteID(2), "b")

	notes := Resolve(st, "a")
	if len(notes) != 2 {
		t.Fatalf("Resolve(a) = %v, want both notes exactly once", notes)
	}
}

func TestResolveDeduplicates(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "a", "b")
	if _, err := AddAssociation(st, "a", "b"); err != nil {
		t.Fatal(err)
	}
	notes := Resolve(st, "a")
	if len(notes) != 1 {
		t.Errorf("Resolve = %v, want one note", notes)
	}
}

func TestResolveUnknownTagEmpty(t *testing.T) {
	st := store.New()
	if notes := Resolve(st, "nonexistent"); len(notes) != 0 {
		t.Errorf("Resolve = %v, want empty", notes)
	}
}

func TestResolveNoteRoot(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1))
	notes := Resolve(st, noteID(1))
	if len(notes) != 1 || notes[0] != noteID(1) {
		t.Errorf("Resolve = %v", notes)
	}
}

func TestCategories(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "todo", "errands")
	got := Categories(st, noteID(1))
	if !reflect.DeepEqual(got, []string{"errands", "todo"}) {
		t.Errorf("Categories = %v", got)
	}
	if got := Categories(st, "todo"); len(got) != 0 {
		t.Errorf("Categories(todo) = %v, want empty", got)
	}
}

func TestRemoveTagGuarded(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "todo")

	if err := RemoveTag(st, "todo"); !errors.Is(err, apperr.ErrTagInUse) {
		t.Errorf("err = %v, want ErrTagInUse", err)
	}
	RemoveAssociation(st, "todo", noteID(1))
	if err := RemoveTag(st, "todo"); err != nil {
		t.Errorf("RemoveTag after clearing edges: %v", err)
	}
	if err := RemoveTag(st, "todo"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTopLevel(t *testing.T) {
	st := store.New()
	addNote(t, st, noteID(1), "todo")
	addNote(t, st, noteID(2))
	if _, err := AddAssociation(st, "parent", "todo"); err != nil {
		t.Fatal(err)
	}

	got := TopLevel(st)
	want := []string{noteID(2), "parent"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopLevel = %v, want %v", got, want)
	}
}
