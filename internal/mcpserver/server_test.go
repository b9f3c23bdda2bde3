package mcpserver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/notes"
	"github.com/starford/tagnote/internal/service"
	"github.com/starford/tagnote/internal/store"
)

func testServer(t *testing.T) (*Server, *notes.Dir) {
	t.Helper()

	dir, err := notes.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	file := store.NewFile(filepath.Join(t.TempDir(), "tagnote.json"))
	svc := service.New(file, dir, true)
	return New(svc), dir
}

func writeNote(t *testing.T, d *notes.Dir, i int, content string) string {
	t.Helper()
	id := time.Date(2022, 6, 1, 8, 0, i, 0, time.UTC).Format(models.NoteLayout) + ".txt"
	if err := d.Write(id, []byte(content)); err != nil {
		t.Fatal(err)
	}
	return id
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "add_tag":
		result, err = srv.addTag(ctx, req)
	case "list_tags":
		result, err = srv.listTags(ctx, req)
	case "tag_members":
		result, err = srv.tagMembers(ctx, req)
	case "tag_categories":
		result, err = srv.tagCategories(ctx, req)
	case "show_notes":
		result, err = srv.showNotes(ctx, req)
	case "last_note":
		result, err = srv.lastNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddTagAndMembers(t *testing.T) {
	srv, dir := testServer(t)
	id := writeNote(t, dir, 1, "hello")

	r := callTool(t, srv, "add_tag", map[string]interface{}{
		"name":       id,
		"categories": "todo",
	})
	text := resultText(r)
	if !strings.Contains(text, "todo") {
		t.Errorf("add result = %q, want created todo", text)
	}

	r = callTool(t, srv, "tag_members", map[string]interface{}{"tag": "todo"})
	if got := resultText(r); got != id {
		t.Errorf("members = %q, want %q", got, id)
	}
}

func TestAddTagBadName(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_tag", map[string]interface{}{"name": "no spaces"})
	if !r.IsError {
		t.Error("expected error for bad name")
	}
}

func TestListTags(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "add_tag", map[string]interface{}{"name": "work"})
	callTool(t, srv, "add_tag", map[string]interface{}{"name": "life"})

	r := callTool(t, srv, "list_tags", map[string]interface{}{})
	if got := resultText(r); got != "life\nwork" {
		t.Errorf("tags = %q", got)
	}
}

func TestTagCategories(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "add_tag", map[string]interface{}{
		"name":       "todo",
		"categories": "life",
	})

	r := callTool(t, srv, "tag_categories", map[string]interface{}{"name": "todo"})
	if got := resultText(r); got != "life" {
		t.Errorf("categories = %q, want life", got)
	}
}

func TestShowNotes(t *testing.T) {
	srv, dir := testServer(t)
	first := writeNote(t, dir, 1, "alpha")
	second := writeNote(t, dir, 2, "beta")
	callTool(t, srv, "add_tag", map[string]interface{}{"name": first, "categories": "todo"})
	callTool(t, srv, "add_tag", map[string]interface{}{"name": second, "categories": "todo"})

	r := callTool(t, srv, "show_notes", map[string]interface{}{"tags": "todo"})
	text := resultText(r)
	if !strings.Contains(text, "alpha") || !strings.Contains(text, "beta") {
		t.Errorf("show = %q", text)
	}
	// Newest first.
	if strings.Index(text, "beta") > strings.Index(text, "alpha") {
		t.Errorf("show order = %q, want beta first", text)
	}

	r = callTool(t, srv, "show_notes", map[string]interface{}{"tags": "todo", "search": "alpha"})
	text = resultText(r)
	if strings.Contains(text, "beta") {
		t.Errorf("filtered show = %q, want no beta", text)
	}
}

func TestLastNote(t *testing.T) {
	srv, dir := testServer(t)
	first := writeNote(t, dir, 1, "old")
	newest := writeNote(t, dir, 2, "new")
	callTool(t, srv, "add_tag", map[string]interface{}{"name": first, "categories": "todo"})
	callTool(t, srv, "add_tag", map[string]interface{}{"name": newest, "categories": "todo"})

	r := callTool(t, srv, "last_note", map[string]interface{}{"tags": "todo"})
	text := resultText(r)
	if !strings.HasPrefix(text, newest) || !strings.Contains(text, "new") {
		t.Errorf("last = %q", text)
	}
}

func TestLastNoteEmpty(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "add_tag", map[string]interface{}{"name": "todo"})

	r := callTool(t, srv, "last_note", map[string]interface{}{"tags": "todo"})
	if got := resultText(r); got != "no notes" {
		t.Errorf("last on empty = %q", got)
	}
}
