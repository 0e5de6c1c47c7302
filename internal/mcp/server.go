// Package mcp exposes the command index to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dotdex/dotdex/internal/config"
	"github.com/dotdex/dotdex/internal/explain"
	"github.com/dotdex/dotdex/internal/index"
	"github.com/dotdex/dotdex/internal/store"
)

// ServerConfig contains configuration for creating an MCP server
type ServerConfig struct {
	Name     string
	Version  string
	Settings *config.Settings
	Store    *store.Store
	Explain  *explain.Client
}

// CreateServer creates and configures the MCP server
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	RegisterSearchTool(s, cfg)
	RegisterExplainTool(s, cfg)

	return s
}

// SearchArgument defines search parameters.
type SearchArgument struct {
	Query    string `json:"query" jsonschema_description:"Search query matched against command names, descriptions and code"`
	Category string `json:"category,omitempty" jsonschema_description:"Filter by category name"`
	Kind     string `json:"kind,omitempty" jsonschema_description:"Filter by construct kind: alias, function or export"`
}

// ExplainArgument defines explain parameters.
type ExplainArgument struct {
	Name string `json:"name" jsonschema_description:"The command name to explain"`
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// SearchHandler handles the search_commands MCP tool.
type SearchHandler struct {
	cfg ServerConfig
}

// Handle executes the search and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return textResult("Query cannot be empty", true), nil, nil
	}

	idx, err := index.OpenSearchIndex(h.cfg.Settings.SearchIndexPath())
	if err != nil {
		return textResult(fmt.Sprintf("Search is not available: %s", err), true), nil, nil
	}
	defer func() { _ = idx.Close() }()

	hits, err := index.Search(idx, index.SearchRequest{
		Query:    args.Query,
		Category: args.Category,
		Kind:     args.Kind,
		Limit:    20,
	})
	if err != nil {
		return textResult(fmt.Sprintf("Search failed: %s", err), true), nil, nil
	}

	if len(hits) == 0 {
		return textResult(fmt.Sprintf("No results found for query: %s", args.Query), false), nil, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", len(hits), args.Query))
	for i, hit := range hits {
		sb.WriteString(fmt.Sprintf("### %d. %s (%s, %s)\n", i+1, hit.Name, hit.Kind, hit.Category))
		if hit.Description != "" {
			sb.WriteString(hit.Description + "\n")
		}
		sb.WriteString(fmt.Sprintf("Defined in: %s\n", hit.SourcePath))
		if hit.Code != "" {
			sb.WriteString("```shell\n" + hit.Code + "\n```\n")
		}
		sb.WriteString("\n")
	}
	return textResult(sb.String(), false), nil, nil
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, cfg ServerConfig) {
	handler := &SearchHandler{cfg: cfg}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_commands",
		Description: "Search indexed shell aliases, functions and exports using full-text search",
	}, handler.Handle)
}

// ExplainHandler handles the explain_command MCP tool.
type ExplainHandler struct {
	cfg ServerConfig
}

// Handle looks the command up in the index, falling back to the external
// explain capability when nothing is indexed under that name.
func (h *ExplainHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ExplainArgument) (*mcp.CallToolResult, any, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return textResult("Name cannot be empty", true), nil, nil
	}

	commands, err := h.cfg.Store.FindByName(ctx, name)
	if err != nil {
		return textResult(fmt.Sprintf("Store lookup failed: %s", err), true), nil, nil
	}

	if len(commands) > 0 {
		var sb strings.Builder
		for _, c := range commands {
			sb.WriteString(fmt.Sprintf("## %s (%s, %s)\n", c.Name, c.Kind, c.Category))
			if c.Description != "" {
				sb.WriteString(c.Description + "\n")
			}
			sb.WriteString(fmt.Sprintf("Defined in: %s:%d\n", c.SourcePath, c.Line))
			sb.WriteString("```shell\n" + c.Code + "\n```\n\n")
		}
		return textResult(sb.String(), false), nil, nil
	}

	if h.cfg.Explain == nil {
		return textResult(fmt.Sprintf("No indexed command named %q", name), false), nil, nil
	}

	text, found, err := h.cfg.Explain.Lookup(ctx, name)
	if err != nil {
		return textResult(fmt.Sprintf("External lookup failed: %s", err), true), nil, nil
	}
	if !found {
		return textResult(fmt.Sprintf("No indexed command or external documentation found for %q", name), false), nil, nil
	}
	return textResult(text, false), nil, nil
}

// RegisterExplainTool registers the explain tool with an MCP server.
func RegisterExplainTool(server *mcp.Server, cfg ServerConfig) {
	handler := &ExplainHandler{cfg: cfg}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "explain_command",
		Description: "Explain a command: show its indexed definition, or fall back to external documentation",
	}, handler.Handle)
}
