package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/xhad/sitekb/internal/types"
	"github.com/xhad/sitekb/pkg/config"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	Logger *slog.Logger

	// Optional overrides; built from Config when nil.
	Embedder  types.Embedder
	Completer types.Completer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Path to config file"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Index IndexCmd `cmd:"" help:"Crawl the site and build the embeddings file"`
	Serve ServeCmd `cmd:"" help:"Serve the chat API over HTTP and WebSocket"`
	Chat  ChatCmd  `cmd:"" help:"Chat with the knowledge base in the terminal"`
	Query QueryCmd `cmd:"" help:"Print the context retrieved for a question"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	URL         string `arg:"" optional:"" help:"Root URL to crawl (overrides site.root_url)"`
	MaxDepth    int    `short:"d" default:"-1" help:"Maximum link depth from the root (-1 uses the config)"`
	MaxPages    int    `short:"n" help:"Maximum number of pages to keep"`
	Output      string `short:"o" type:"path" help:"Embeddings file to write"`
	Concurrency int    `help:"Concurrent embedding requests"`
	Publish     bool   `short:"p" help:"Also publish the embeddings to Postgres (store.database_url)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr   string `short:"a" help:"Listen address (overrides server.addr)"`
	Store  string `short:"s" type:"path" help:"Embeddings file to load"`
	FromDB bool   `name:"from-db" help:"Load embeddings from Postgres instead of the file"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Store string `short:"s" type:"path" help:"Embeddings file to load"`
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Question string `arg:"" help:"Question to retrieve context for"`
	Store    string `short:"s" type:"path" help:"Embeddings file to load"`
	TopK     int    `short:"k" help:"Number of chunks to retrieve"`
	Scores   bool   `help:"List matches with their similarity instead of the context block"`
}
