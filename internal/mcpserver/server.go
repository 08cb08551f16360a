// Package mcpserver exposes page conversion as MCP (Model Context Protocol)
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/models"
	"github.com/starford/notionmd/internal/pageservice"
)

// PageService is the conversion layer the tools call.
type PageService interface {
	GetPage(ctx context.Context, token, id string) (*pageservice.Page, error)
	ListPages(ctx context.Context, token, databaseID string, p pageservice.Pagination) (*models.PageListing, error)
}

var marshalIndent = json.MarshalIndent

// Server wraps the MCP server with the page tools.
type Server struct {
	mcp   *server.MCPServer
	svc   PageService
	token string
}

// New creates an MCP server. Every tool call authenticates upstream with token.
func New(svc PageService, token, version string) *Server {
	s := &Server{svc: svc, token: token}

	s.mcp = server.NewMCPServer(
		"notionmd",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a Notion page converted to Markdown."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Notion page id (UUID, dashed or not)")),
		mcp.WithBoolean("frontmatter", mcp.Description("Prefix the page properties as a YAML frontmatter header (default true)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("get_page_properties",
		mcp.WithDescription("Return the properties of a Notion page as a JSON object, in page order."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Notion page id")),
	), s.getPageProperties)

	s.mcp.AddTool(mcp.NewTool("list_database",
		mcp.WithDescription("List the page ids of a Notion database, one window at a time."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Notion database id")),
		mcp.WithNumber("offset", mcp.Description("Index of the first page to return (default 0)")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of ids (default %d, max %d)",
			pageservice.DefaultLimit, pageservice.MaxLimit))),
	), s.listDatabase)

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

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, s.token, id)
	if err != nil {
		return toolError(err), nil
	}
	md, err := page.Markdown(req.GetBool("frontmatter", true))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) getPageProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, s.token, id)
	if err != nil {
		return toolError(err), nil
	}
	raw, err := page.PropertiesJSON()
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) listDatabase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p := pageservice.Pagination{
		Offset: req.GetInt("offset", 0),
		Limit:  req.GetInt("limit", pageservice.DefaultLimit),
	}
	listing, err := s.svc.ListPages(ctx, s.token, id, p)
	if err != nil {
		return toolError(err), nil
	}
	out, err := marshalIndent(listing, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode listing: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a service error into a tool-level error result. Only
// validation messages are passed through verbatim.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrUnauthorized):
		return mcp.NewToolResultError("unauthorized: check the configured Notion token")
	case errors.Is(err, apperr.ErrUnsupportedProperty):
		return mcp.NewToolResultError("page has an unsupported property type")
	default:
		return mcp.NewToolResultError("upstream error: " + err.Error())
	}
}
