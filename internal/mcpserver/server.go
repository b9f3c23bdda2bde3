// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the tag graph tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/query"
	"github.com/starford/tagnote/internal/service"
)

// Server wraps the MCP server with tag graph tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *service.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Tagnote",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_tag",
		mcp.WithDescription("Register a tag or note and optionally file it under category tags. "+
			"Categories that do not exist yet are created."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tag name or note identifier (e.g. 2021-03-01_12-00-00.txt)")),
		mcp.WithString("categories", mcp.Description("Comma-separated category tags to file the name under")),
	), s.addTag)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List all tag names in the graph, sorted."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("tag_members",
		mcp.WithDescription("List the direct members of a tag in the order they were added. "+
			"With an empty tag, lists entities that belong to no tag."),
		mcp.WithString("tag", mcp.Description("Tag name (empty for top-level entities)")),
	), s.tagMembers)

	s.mcp.AddTool(mcp.NewTool("tag_categories",
		mcp.WithDescription("List the tags a tag or note is directly filed under."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tag name or note identifier")),
	), s.tagCategories)

	s.mcp.AddTool(mcp.NewTool("show_notes",
		mcp.WithDescription("Show the content of all notes reachable from the given tags, "+
			"transitively through nested tags, newest first by default."),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names (empty for all notes)")),
		mcp.WithString("order", mcp.Description("ascending or descending (default descending)")),
		mcp.WithString("search", mcp.Description("Keep only notes whose content contains this substring")),
	), s.showNotes)

	s.mcp.AddTool(mcp.NewTool("last_note",
		mcp.WithDescription("Show the content of the most recent note reachable from the given tags."),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names (empty for all notes)")),
	), s.lastNote)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// splitList parses a comma-separated argument into trimmed non-empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) addTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	categories := splitList(req.GetString("categories", ""))

	created, err := s.svc.Add(name, categories)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(created) == 0 {
		return mcp.NewToolResultText("no changes"), nil
	}
	return mcp.NewToolResultText("created: " + strings.Join(created, ", ")), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) tagMembers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetString("tag", "")
	members, err := s.svc.Members(tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(members) == 0 {
		return mcp.NewToolResultText("no members"), nil
	}
	return mcp.NewToolResultText(strings.Join(members, "\n")), nil
}

func (s *Server) tagCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cats, err := s.svc.Categories(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(cats) == 0 {
		return mcp.NewToolResultText("no categories"), nil
	}
	return mcp.NewToolResultText(strings.Join(cats, "\n")), nil
}

func (s *Server) showNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags := splitList(req.GetString("tags", ""))
	dir, err := query.ParseDirection(req.GetString("order", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern := req.GetString("search", "")

	blocks, err := s.svc.Show(tags, dir, pattern)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(blocks) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(query.RenderBlocks(blocks)), nil
}

func (s *Server) lastNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags := splitList(req.GetString("tags", ""))

	b, err := s.svc.Last(tags)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultText("no notes"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n---\n%s", b.ID, b.Content)), nil
}
