package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/logging"
	"github.com/gittydocs/gittydocs/internal/pipeline"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/storage"
	"github.com/gittydocs/gittydocs/internal/web"
)

type options struct {
	input       string
	configPath  string
	output      string
	clean       bool
	precompress bool
	workers     int
	noCache     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "source", "", "Docs directory or GitHub URL (default $GITTYDOCS_SOURCE or .)")
	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to site config (default: discovered in the docs directory)")
	flag.StringVar(&opts.output, "out", "dist", "Output directory")
	flag.BoolVar(&opts.clean, "clean", true, "Empty the output directory before writing")
	flag.BoolVar(&opts.precompress, "precompress", false, "Also write .gz copies of text files")
	flag.IntVar(&opts.workers, "workers", 0, "Parallel page writers (default GOMAXPROCS)")
	flag.BoolVar(&opts.noCache, "no-cache", false, "Do not use the GitHub fetch cache")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.BuildLogger(*logLevel)
	if opts.input == "" && flag.NArg() > 0 {
		opts.input = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := build(ctx, logger, opts)
	stop()
	if err != nil {
		logger.Error("build failed", "error", err)
		os.Exit(1)
	}
}

func build(ctx context.Context, logger *slog.Logger, opts options) error {
	loader, closeCache := site.NewLoader(opts.input, opts.configPath, opts.noCache, logger)
	defer closeCache()

	corpus, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	defer corpus.Release()

	theme, err := web.NewTheme()
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	runner := &pipeline.Runner{
		Storage:     storage.NewFSStorage(opts.output),
		Theme:       theme,
		Logger:      logger,
		Workers:     opts.workers,
		Clean:       opts.clean,
		Precompress: opts.precompress,
	}
	return runner.Run(ctx, corpus)
}
