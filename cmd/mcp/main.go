package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/logging"
	"github.com/gittydocs/gittydocs/internal/mcptools"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/web"
)

var version = "dev"

func main() {
	input := flag.String("source", "", "Docs directory or GitHub URL (default $GITTYDOCS_SOURCE or .)")
	configPath := flag.String("config", config.DefaultPath(), "Path to site config (default: discovered in the docs directory)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	noCache := flag.Bool("no-cache", false, "Do not use the GitHub fetch cache")
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	logger := logging.BuildLogger(*logLevel)
	if *input == "" && flag.NArg() > 0 {
		*input = flag.Arg(0)
	}

	loader, closeCache := site.NewLoader(*input, *configPath, *noCache, logger)
	defer closeCache()

	docs, err := web.NewServer(loader, logger)
	if err != nil {
		logger.Error("create docs", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := docs.Reload(ctx); err != nil {
		logger.Error("load docs", "error", err)
		closeCache()
		os.Exit(1)
	}

	server := mcptools.NewServer(docs, version)
	logger.Info("mcp server ready", "pages", len(docs.Corpus().Pages))
	err = server.Run(ctx, &mcp.StdioTransport{})
	docs.Corpus().Release()
	if err != nil && ctx.Err() == nil {
		logger.Error("mcp server error", "error", err)
		closeCache()
		os.Exit(1)
	}
}
