package api

import (
	"log/slog"

	"github.com/hazyhaar/pacm-search/pkg/fulltext"
	"github.com/hazyhaar/pacm-search/pkg/kit"
	"github.com/hazyhaar/pacm-search/pkg/library"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer returns an MCP server exposing the search tools.
func NewMCPServer(name, version string, lib *library.Library, opts fulltext.Options, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer(name, version, server.WithToolCapabilities(false), server.WithRecovery())
	RegisterMCPTools(srv, Config{Library: lib, Search: opts, Logger: logger})
	return srv
}

// RegisterMCPTools registers the three search tools on the server.
func RegisterMCPTools(srv *server.MCPServer, cfg Config) {
	registerSearchDocuments(srv, &cfg)
	registerSearchOccurrences(srv, &cfg)
	registerListCatalogue(srv, &cfg)
}

func registerSearchDocuments(srv *server.MCPServer, cfg *Config) {
	tool := mcp.NewTool("search_documents",
		mcp.WithDescription(`Search the Article 6.4 document catalogue. Matches titles and symbols, and document text when fulltext is true. Wrap the whole query in double quotes for an exact phrase; otherwise every word must occur.`),
		mcp.WithString("query", mcp.Required(), mcp.Description(`Search terms, e.g. baseline "additionality test"`)),
		mcp.WithBoolean("fulltext", mcp.Description("Also search the extracted document text (default false)")),
	)

	kit.RegisterMCPTool(srv, tool, instrument(cfg, "search_documents", searchDocumentsEndpoint(cfg.Library, cfg.Search)),
		func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			query, _ := args["query"].(string)
			fullText, _ := args["fulltext"].(bool)
			return &kit.MCPDecodeResult{Request: &searchReq{Query: query, FullText: fullText}}, nil
		})
}

func registerSearchOccurrences(srv *server.MCPServer, cfg *Config) {
	tool := mcp.NewTool("search_occurrences",
		mcp.WithDescription("List every place the query occurs in document text, with a highlighted snippet for each."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search terms or a quoted phrase")),
	)

	kit.RegisterMCPTool(srv, tool, instrument(cfg, "search_occurrences", searchOccurrencesEndpoint(cfg.Library, cfg.Search)),
		func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			query, _ := req.GetArguments()["query"].(string)
			return &kit.MCPDecodeResult{Request: &searchReq{Query: query}}, nil
		})
}

func registerListCatalogue(srv *server.MCPServer, cfg *Config) {
	tool := mcp.NewTool("list_catalogue",
		mcp.WithDescription("List the deduplicated document catalogue, optionally filtered by title or symbol and grouped by section."),
		mcp.WithString("query", mcp.Description("Optional filter on titles and symbols")),
		mcp.WithBoolean("grouped", mcp.Description("Group records by section and subsection")),
	)

	kit.RegisterMCPTool(srv, tool, instrument(cfg, "list_catalogue", listCatalogueEndpoint(cfg.Library, cfg.Search)),
		func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			query, _ := args["query"].(string)
			grouped, _ := args["grouped"].(bool)
			return &kit.MCPDecodeResult{Request: &catalogueReq{Query: query, Grouped: grouped}}, nil
		})
}
