// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Perthro tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/perthro/internal/sectionservice"
)

// Server wraps the MCP server with Perthro tools.
type Server struct {
	mcp *server.MCPServer
	svc *sectionservice.Service
}

// New creates a new MCP server with all Perthro tools registered.
func New(svc *sectionservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Perthro",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("extract_sections",
		mcp.WithDescription("Extract annotated sections from a source file. "+
			"Without filters all sections are returned in document order. "+
			"Use `list` to select a marker group, `name` to select a single "+
			"bare marker, or both to select one member of a group. "+
			"Read the get_markup_contract tool or the perthro://markup-format "+
			"resource for the marker grammar."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the source file (e.g. lib/Demo.pm)")),
		mcp.WithString("list", mcp.Description("Optional marker group filter")),
		mcp.WithString("name", mcp.Description("Optional section name filter")),
	), s.extractSections)

	s.mcp.AddTool(mcp.NewTool("get_section",
		mcp.WithDescription("Return the plain-text body of a single named section in a source file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the source file")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Section name (bare marker token or group argument)")),
	), s.getSection)

	s.mcp.AddTool(mcp.NewTool("search_sections",
		mcp.WithDescription("Full-text search through extracted section bodies across the source tree."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchSections)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List indexed source files, optionally only those containing a marker group."),
		mcp.WithString("group", mcp.Description("Optional marker group filter (empty for all files)")),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("Aggregate grouped markers across the indexed source tree with section and file counts."),
	), s.listGroups)

	s.mcp.AddTool(mcp.NewTool("get_markup_contract",
		mcp.WithDescription("Returns the canonical Perthro section markup contract. "+
			"Call this before authoring annotated source files to ensure correct marker structure."),
	), s.getMarkupContract)

	// Resource: markup format contract.
	s.mcp.AddResource(
		mcp.NewResource("perthro://markup-format", "Section Markup Contract",
			mcp.WithResourceDescription("Canonical section marker grammar that annotated source files follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkupFormatResource,
	)

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

func (s *Server) extractSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list := ""
	if v, err := req.RequireString("list"); err == nil {
		list = v
	}
	name := ""
	if v, err := req.RequireString("name"); err == nil {
		name = v
	}

	secs, err := s.svc.QuerySections(ctx, path, list, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(secs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	secs, err := s.svc.QuerySections(ctx, path, "", name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	if len(secs) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no section named %q in %s", name, path)), nil
	}
	return mcp.NewToolResultText(strings.Join(secs[0].Data, "\n")), nil
}

func (s *Server) searchSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group := ""
	if g, err := req.RequireString("group"); err == nil {
		group = g
	}

	items, _, err := s.svc.ListFiles(ctx, 0, 0, group, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no files indexed"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) listGroups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.svc.Groups(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(groups, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMarkupContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkupFormatContract), nil
}

func (s *Server) readMarkupFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "perthro://markup-format",
			MIMEType: "text/markdown",
			Text:     MarkupFormatContract,
		},
	}, nil
}
