package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/csdex/csdex/internal/daemon"
	"github.com/csdex/csdex/internal/rpc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *server.MCPServer
	client    *daemon.Client
}

func NewServer(socketPath string) (*Server, error) {
	client, err := daemon.ConnectOrSpawn(socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}

	s := &Server{client: client}

	mcpServer := server.NewMCPServer(
		"csdex",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s, nil
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("search_types",
			mcp.WithDescription("Search the C# type catalog. Relevance covers type names, file paths, modifiers, and member names/signatures/return types. Results reference csdoc:// resources."),
			mcp.WithString("query",
				mcp.Description("Search query (type or member name, file path fragment, modifier)"),
				mcp.Required(),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 20)"),
			),
		),
		s.handleSearchTypes,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_type",
			mcp.WithDescription("Read the full markdown document for a type: declaration, inheritance, members, overrides, comments, and XML/translation usage."),
			mcp.WithString("name",
				mcp.Description("Exact type name (e.g. \"ThingDef\")"),
				mcp.Required(),
			),
			mcp.WithString("member",
				mcp.Description("Optional member name to narrow the document to"),
			),
		),
		s.handleGetType,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_category",
			mcp.WithDescription("List catalog types of one kind: class, interface, struct, or enum."),
			mcp.WithString("kind",
				mcp.Description("Type kind: class, interface, struct, or enum"),
				mcp.Required(),
			),
			mcp.WithNumber("offset",
				mcp.Description("Listing offset (default 0)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entries (default 50)"),
			),
		),
		s.handleListCategory,
	)

	mcpServer.AddTool(
		mcp.NewTool("type_hierarchy",
			mcp.WithDescription("Return the declared base types and known derived types of a name. Works for base names that are not themselves in the catalog."),
			mcp.WithString("name",
				mcp.Description("Type name"),
				mcp.Required(),
			),
		),
		s.handleTypeHierarchy,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"csdoc://{type}",
			"C# type documentation",
			mcp.WithTemplateDescription("Read the documentation for a catalog type. Append #MemberName to address a single member."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

func (s *Server) handleSearchTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	searchReq := rpc.SearchRequest{Query: query, Limit: 20}
	if limit, ok := args["limit"].(float64); ok {
		searchReq.Limit = int(limit)
	}

	resp, err := s.client.Search(ctx, searchReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	resultJSON, _ := json.MarshalIndent(resp.Results, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleGetType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	member, _ := args["member"].(string)

	resp, err := s.client.GetType(ctx, rpc.GetTypeRequest{Name: name, Member: member})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get type failed: %v", err)), nil
	}
	return mcp.NewToolResultText(resp.Markdown), nil
}

func (s *Server) handleListCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, _ := args["kind"].(string)
	if kind == "" {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}

	catReq := rpc.CategoryRequest{Kind: kind, Limit: 50}
	if offset, ok := args["offset"].(float64); ok {
		catReq.Offset = int(offset)
	}
	if limit, ok := args["limit"].(float64); ok {
		catReq.Limit = int(limit)
	}

	resp, err := s.client.Category(ctx, catReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list category failed: %v", err)), nil
	}

	resultJSON, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleTypeHierarchy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	resp, err := s.client.Hierarchy(ctx, rpc.HierarchyRequest{Name: name})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hierarchy failed: %v", err)), nil
	}

	resultJSON, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	trimmed := strings.TrimPrefix(uri, "csdoc://")
	if trimmed == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	name := trimmed
	var member string
	if idx := strings.LastIndex(name, "#"); idx >= 0 {
		member = name[idx+1:]
		name = name[:idx]
	}

	resp, err := s.client.GetType(ctx, rpc.GetTypeRequest{Name: name, Member: member})
	if err != nil {
		return nil, fmt.Errorf("getting type doc: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     resp.Markdown,
		},
	}, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
