// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes one user's idea box to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/ideaservice"
	"github.com/starford/jotter/internal/labelcolor"
	"github.com/starford/jotter/internal/parser"
)

// FormatURI is the resource URI of the idea format contract.
const FormatURI = "jotter://idea-format"

const defaultSearchLimit = 20

// Server wraps the MCP server with Jotter tools bound to a single owner.
type Server struct {
	mcp   *server.MCPServer
	ideas *ideaservice.Service
	owner string
}

// New creates a new MCP server acting on behalf of owner.
func New(ideas *ideaservice.Service, owner string) *Server {
	s := &Server{ideas: ideas, owner: owner}

	s.mcp = server.NewMCPServer(
		"Jotter",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_ideas",
		mcp.WithDescription("Full-text search through idea titles, descriptions and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchIdeas)

	s.mcp.AddTool(mcp.NewTool("list_ideas",
		mcp.WithDescription("List ideas, newest first, optionally limited to one folder "+
			"or filtered by a case-insensitive substring."),
		mcp.WithString("folder", mcp.Description("Folder id, or \"uncategorized\" (empty for all)")),
		mcp.WithString("filter", mcp.Description("Substring matched against title, description and #tags")),
	), s.listIdeas)

	s.mcp.AddTool(mcp.NewTool("read_idea",
		mcp.WithDescription("Read one idea as Markdown with YAML frontmatter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Idea id as returned by search_ideas or list_ideas")),
	), s.readIdea)

	s.mcp.AddTool(mcp.NewTool("create_idea",
		mcp.WithDescription("Capture a new idea. Read the format contract first via "+
			"the get_idea_format tool or the "+FormatURI+" resource."),
		mcp.WithString("description", mcp.Required(), mcp.Description("The idea itself (Markdown)")),
		mcp.WithString("title", mcp.Description("Optional short title")),
		mcp.WithString("tags", mcp.Description("Space or comma separated tags, with or without '#'")),
		mcp.WithString("folder", mcp.Description("Folder name; created when it does not exist")),
	), s.createIdea)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List folders with their idea counts and badge colours."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("label_color",
		mcp.WithDescription("Return the badge background and readable text colour for a folder or tag label."),
		mcp.WithString("label", mcp.Required(), mcp.Description("Folder or tag label")),
	), s.labelColor)

	s.mcp.AddTool(mcp.NewTool("get_idea_format",
		mcp.WithDescription("Returns the Jotter idea format contract. "+
			"Call this before creating ideas to ensure correct structure."),
	), s.getIdeaFormat)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Idea Format Contract",
			mcp.WithResourceDescription("Markdown format used for idea import and export."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) searchIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.ideas.Search(ctx, s.owner, query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(hits)
}

type ideaLine struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Folder string   `json:"folder"`
	Tags   []string `json:"tags"`
}

func (s *Server) listIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := ideaservice.ListOptions{}
	if v, err := req.RequireString("folder"); err == nil {
		opts.Folder = v
	}
	if v, err := req.RequireString("filter"); err == nil {
		opts.Query = v
	}
	page, err := s.ideas.ListIdeas(ctx, s.owner, opts)
	if err != nil {
		return toolError(err), nil
	}
	out := make([]ideaLine, len(page.Items))
	for i, d := range page.Items {
		out[i] = ideaLine{ID: d.ID, Title: d.DisplayTitle, Folder: d.FolderName, Tags: d.Tags}
	}
	return jsonResult(out)
}

func (s *Server) readIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.ideas.GetIdea(ctx, s.owner, id)
	if err != nil {
		return toolError(err), nil
	}
	doc := &parser.Document{
		Title:       d.Title,
		Description: d.Description,
		Tags:        d.Tags,
		Created:     d.CreatedAt,
	}
	if d.InFolder() {
		doc.Folder = d.FolderName
	}
	data, err := parser.Render(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := ideaservice.IdeaInput{
		Description: desc,
		Title:       req.GetString("title", ""),
		Tags: strings.FieldsFunc(req.GetString("tags", ""), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}),
	}
	folder, err := s.ideas.FindOrCreateFolder(ctx, s.owner, req.GetString("folder", ""))
	if err != nil {
		return toolError(err), nil
	}
	if folder != nil {
		in.FolderID = &folder.ID
	}
	d, err := s.ideas.CreateIdea(ctx, s.owner, in)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.ID)), nil
}

func (s *Server) listFolders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folders, err := s.ideas.ListFolders(ctx, s.owner)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(folders)
}

type labelResult struct {
	labelcolor.Badge
	ForegroundHex labelcolor.Color `json:"foreground_hex"`
}

func (s *Server) labelColor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, err := req.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b := labelcolor.BadgeFor(label)
	return jsonResult(labelResult{Badge: b, ForegroundHex: b.Foreground.Hex()})
}

func (s *Server) getIdeaFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(IdeaFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     IdeaFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError reports domain failures to the model instead of failing the call.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrInvalid):
		return mcp.NewToolResultError(strings.TrimPrefix(err.Error(), apperr.ErrInvalid.Error()+": "))
	}
	return mcp.NewToolResultError(err.Error())
}
