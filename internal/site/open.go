package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gittydocs/gittydocs/internal/cache"
	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/render"
	"github.com/gittydocs/gittydocs/internal/source"
)

// Loader resolves a docs source and loads it. It is reusable, so a server
// can call Load again to pick up changed content.
type Loader struct {
	// Input is a local directory or GitHub URL. Empty means
	// GITTYDOCS_SOURCE or the working directory.
	Input string
	// ConfigPath overrides config discovery in the docs directory.
	ConfigPath string
	// WorkDir receives fetched GitHub sources. Empty uses a temp dir.
	WorkDir  string
	Fetcher  *source.Fetcher
	Renderer *render.Renderer
	Logger   *slog.Logger
}

// Load prepares the source, reads its config and loads the corpus.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src, err := source.Resolve(l.Input)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}

	workDir := l.WorkDir
	if workDir == "" && src.Kind == source.GitHub {
		workDir, err = os.MkdirTemp("", "gittydocs-")
		if err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
		l.WorkDir = workDir
	}
	if src.Kind == source.GitHub && l.Fetcher != nil && l.Fetcher.Logger == nil {
		l.Fetcher.Logger = logger
	}

	logger.Info("preparing docs", "source", src.Kind.String(), "input", src.Input)
	prepared, err := source.Prepare(ctx, src, l.Fetcher, workDir)
	if err != nil {
		return nil, fmt.Errorf("prepare docs: %w", err)
	}

	release := func() {
		if !prepared.Owned {
			return
		}
		if err := os.RemoveAll(prepared.Dir); err != nil {
			logger.Warn("remove fetched docs", "dir", prepared.Dir, "error", err)
		}
	}

	var cfg *config.Config
	if l.ConfigPath != "" {
		cfg, err = config.Load(l.ConfigPath)
	} else {
		cfg, err = config.LoadDir(prepared.Dir, prepared.Repo)
	}
	if err != nil {
		release()
		return nil, fmt.Errorf("load config: %w", err)
	}

	c, err := Load(ctx, prepared.Dir, cfg, l.Renderer, logger)
	if err != nil {
		release()
		return nil, err
	}
	c.release = release
	return c, nil
}

// NewLoader builds the Loader the binaries share: GitHub sources are
// fetched with GITHUB_TOKEN and, unless noCache is set, through the fetch
// cache in cache.DefaultDir. The returned func releases the cache.
func NewLoader(input, configPath string, noCache bool, logger *slog.Logger) (*Loader, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	fetcher := source.NewFetcher(os.Getenv("GITHUB_TOKEN"))
	fetcher.Logger = logger
	closeFn := func() {}

	if !noCache {
		dir := cache.DefaultDir()
		c, err := cache.OpenDir(dir)
		if err != nil {
			// A broken cache only costs downloads.
			logger.Warn("fetch cache unavailable", "dir", dir, "error", err)
		} else {
			fetcher.Cache = c
			closeFn = func() {
				if err := c.Close(); err != nil {
					logger.Warn("close fetch cache", "error", err)
				}
			}
		}
	}

	return &Loader{
		Input:      input,
		ConfigPath: configPath,
		Fetcher:    fetcher,
		Logger:     logger,
	}, closeFn
}
