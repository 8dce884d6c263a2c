package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
)

// Dependencies holds what every command needs.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *Config
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string `short:"c" default:"config.yaml" type:"path" help:"Configuration file (missing means defaults)"`
	DataDir  string `name:"data-dir" short:"d" help:"Feed directory, overrides data_dir"`
	LogLevel string `name:"log-level" help:"Log level, overrides log_level"`

	Version kong.VersionFlag `help:"Print the version and exit"`

	Serve     ServeCmd     `cmd:"" help:"Serve the HTTP API, MCP endpoints and optional HTTP/3"`
	Search    SearchCmd    `cmd:"" help:"Search document titles, symbols and optionally full text"`
	Catalogue CatalogueCmd `cmd:"" help:"List the deduplicated catalogue"`
	Import    ImportCmd    `cmd:"" help:"Download feeds with the import adapters"`
	Sources   SourcesCmd   `cmd:"" help:"Show or change feed source URLs"`
	Check     CheckCmd     `cmd:"" help:"Check that every feed source URL answers"`
	Audit     AuditCmd     `cmd:"" help:"Check required symbols are catalogued under their expected titles"`
	MCP       MCPCmd       `cmd:"" name:"mcp" help:"Serve the MCP tools on stdin/stdout"`
	Remote    RemoteCmd    `cmd:"" help:"Call a search tool on a remote pacm server over QUIC"`
}

// override applies global flags over the configuration.
func (c *CLI) override(cfg *Config) {
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
}
