package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/logging"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/web"
)

func main() {
	input := flag.String("source", "", "Docs directory or GitHub URL (default $GITTYDOCS_SOURCE or .)")
	configPath := flag.String("config", config.DefaultPath(), "Path to site config (default: discovered in the docs directory)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	addr := flag.String("addr", ":8080", "HTTP bind address")
	noCache := flag.Bool("no-cache", false, "Do not use the GitHub fetch cache")
	flag.Parse()

	logger := logging.BuildLogger(*logLevel)
	if *input == "" && flag.NArg() > 0 {
		*input = flag.Arg(0)
	}

	loader, closeCache := site.NewLoader(*input, *configPath, *noCache, logger)
	defer closeCache()

	server, err := web.NewServer(loader, logger)
	if err != nil {
		logger.Error("create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Reload(ctx); err != nil {
		logger.Error("load docs", "error", err)
		closeCache()
		os.Exit(1)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("reloading docs")
				if err := server.Reload(ctx); err != nil {
					logger.Error("reload failed, keeping previous docs", "error", err)
				}
			}
		}
	}()

	err = server.ListenAndServe(ctx, *addr)
	server.Corpus().Release()
	if err != nil {
		logger.Error("server error", "error", err)
		closeCache()
		os.Exit(1)
	}
}
