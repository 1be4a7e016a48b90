package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/gittydocs/gittydocs/internal/cache"
	"github.com/gittydocs/gittydocs/internal/logging"
	"github.com/gittydocs/gittydocs/internal/source"
)

func main() {
	dir := flag.String("dir", cache.DefaultDir(), "Cache directory")
	repo := flag.String("repo", "", "Only clear files of this repository (owner/name or GitHub URL)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.BuildLogger(*logLevel)

	slug := strings.Trim(*repo, "/")
	if strings.Contains(slug, "github.com") {
		r, err := source.ParseGitHubURL(slug)
		if err != nil {
			logger.Error("invalid repo", "repo", slug, "error", err)
			os.Exit(1)
		}
		slug = r.Owner + "/" + r.Name
	} else if slug != "" && strings.Count(slug, "/") != 1 {
		logger.Error("invalid repo, expected owner/name", "repo", slug)
		os.Exit(1)
	}

	c, err := cache.OpenDir(*dir)
	if err != nil {
		logger.Error("open cache", "dir", *dir, "error", err)
		os.Exit(1)
	}
	removed, err := c.Clear(context.Background(), slug)
	if closeErr := c.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error("clear cache", "error", err)
		os.Exit(1)
	}
	logger.Info("cache cleared", "dir", *dir, "repo", slug, "files", removed)
}
