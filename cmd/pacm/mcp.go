package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/api"
	"github.com/hazyhaar/pacm-search/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPCmd is the "mcp" subcommand.
type MCPCmd struct{}

// Run serves the MCP tools on stdio until stdin closes.
func (c *MCPCmd) Run(deps *Dependencies) error {
	opts, err := deps.Config.SearchOptions()
	if err != nil {
		return err
	}
	lib, err := deps.openLibrary()
	if err != nil {
		return err
	}
	srv := api.NewMCPServer("pacm", version, lib, opts, deps.Logger)
	return server.ServeStdio(srv)
}

// RemoteCmd is the "remote" subcommand.
type RemoteCmd struct {
	Addr     string        `arg:"" help:"host:port of a pacm server running with HTTP/3"`
	Tool     string        `arg:"" enum:"search_documents,search_occurrences,list_catalogue" help:"Tool to call (${enum})"`
	Query    string        `arg:"" optional:"" help:"Query"`
	FullText bool          `name:"fulltext" short:"f" help:"search_documents: also search text"`
	Verify   bool          `help:"Verify the server certificate"`
	Timeout  time.Duration `default:"30s" help:"Call timeout"`
}

// Run calls one tool over MCP-over-QUIC and prints its JSON result.
func (c *RemoteCmd) Run(deps *Dependencies) error {
	ctx, cancel := context.WithTimeout(deps.Ctx, c.Timeout)
	defer cancel()

	client := mcpquic.NewClient(c.Addr, mcpquic.ClientTLSConfig(!c.Verify))
	if err := client.Connect(ctx, "pacm-remote", version); err != nil {
		return err
	}
	defer client.Close()

	args := map[string]any{"query": c.Query}
	if c.Tool == "search_documents" {
		args["fulltext"] = c.FullText
	}
	res, err := client.CallTool(ctx, c.Tool, args)
	if err != nil {
		return fmt.Errorf("call %s: %w", c.Tool, err)
	}
	for _, content := range res.Content {
		if text, ok := content.(mcp.TextContent); ok {
			fmt.Fprintln(deps.Stdout, text.Text)
		}
	}
	if res.IsError {
		return fmt.Errorf("%s returned an error", c.Tool)
	}
	return nil
}
