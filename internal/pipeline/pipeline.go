// Package pipeline writes a loaded docs corpus out as a static site.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gittydocs/gittydocs/internal/llms"
	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/sitemap"
	"github.com/gittydocs/gittydocs/internal/storage"
	"github.com/gittydocs/gittydocs/internal/web"
)

type Runner struct {
	Storage     *storage.FSStorage
	Theme       *web.Theme
	Logger      *slog.Logger
	Workers     int  // parallel page writers, GOMAXPROCS when zero
	Clean       bool // empty the output directory first
	Precompress bool // write .gz sidecars for text files
	Now         func() time.Time

	mu       sync.Mutex
	status   BuildStatus
	failures []error
}

// Run writes every page, its raw Markdown and the site-wide files. A page
// that fails does not stop the build; the failures are returned together
// once everything else has been written.
func (r *Runner) Run(ctx context.Context, c *site.Corpus) error {
	if r.Storage == nil || r.Theme == nil || c == nil {
		return errors.New("pipeline runner missing dependencies")
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	started := time.Now()

	r.mu.Lock()
	r.status = BuildStatus{Stage: "waiting", Total: len(c.Pages)}
	r.failures = nil
	r.mu.Unlock()

	if r.Clean {
		if err := r.Storage.Reset(ctx); err != nil {
			return r.fail(err)
		}
	}

	r.setStage("pages")
	r.writePages(ctx, c)
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	r.setStage("assets")
	if err := r.writeSiteFiles(ctx, c); err != nil {
		return r.fail(err)
	}

	r.mu.Lock()
	failures := append([]error(nil), r.failures...)
	r.status.Stage = "done"
	s := r.status
	r.mu.Unlock()

	r.Logger.Info("build done",
		"out", r.Storage.Root,
		"pages", s.Done,
		"errors", s.Errors,
		"duration", time.Since(started).Round(time.Millisecond))
	if len(failures) > 0 {
		r.Logger.Warn("build completed with failures", "count", len(failures))
		return fmt.Errorf("build finished with %d failed pages: %w", len(failures), errors.Join(failures...))
	}
	return nil
}

// Status returns a snapshot of the build progress.
func (r *Runner) Status() BuildStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) writePages(ctx context.Context, c *site.Corpus) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan *site.Page)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := r.writePage(ctx, c, p); err != nil {
					r.recordFailure(p.Route, err)
				}
				r.mu.Lock()
				r.status.Done++
				r.mu.Unlock()
			}
		}()
	}

	for _, p := range c.Pages {
		if ctx.Err() != nil {
			break
		}
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

func (r *Runner) writePage(ctx context.Context, c *site.Corpus, p *site.Page) error {
	r.Logger.Debug("writing page", "route", p.Route, "source", p.SourcePath)

	var buf bytes.Buffer
	if err := r.Theme.RenderPage(&buf, c, p); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := r.write(ctx, HTMLPath(p.Route), buf.Bytes()); err != nil {
		return err
	}
	if err := r.write(ctx, MarkdownPath(p.Route), []byte(p.Raw)); err != nil {
		return err
	}
	if c.Config.LLMs.On() {
		if err := r.write(ctx, llms.PagePath(c.Config.LLMs.Path, p.SourcePath), []byte(llms.Page(p))); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) writeSiteFiles(ctx context.Context, c *site.Corpus) error {
	ix := search.BuildWithOptions(c.Documents(), c.Config.SearchOptions())
	index, err := json.Marshal(ix.Export())
	if err != nil {
		return fmt.Errorf("encode search index: %w", err)
	}
	if err := r.write(ctx, "search-index.json", index); err != nil {
		return err
	}

	var searchPage bytes.Buffer
	if err := r.Theme.RenderClientSearch(&searchPage, c); err != nil {
		return fmt.Errorf("render search page: %w", err)
	}
	if err := r.write(ctx, "search/index.html", searchPage.Bytes()); err != nil {
		return err
	}

	var notFound bytes.Buffer
	if err := r.Theme.RenderNotFound(&notFound, c); err != nil {
		return fmt.Errorf("render 404: %w", err)
	}
	if err := r.write(ctx, "404.html", notFound.Bytes()); err != nil {
		return err
	}
	if err := r.write(ctx, "robots.txt", []byte(web.RobotsTxt(c))); err != nil {
		return err
	}

	if c.Config.LLMs.On() {
		if err := r.write(ctx, "llms.txt", []byte(llms.Index(c))); err != nil {
			return err
		}
	}

	if err := r.writeThemeStatic(ctx); err != nil {
		return err
	}
	// Site assets come after the theme so a docs folder can override
	// site.css or search.js.
	for _, a := range c.Assets {
		if err := r.Storage.CopyFile(ctx, a.Route, a.SourcePath); err != nil {
			return fmt.Errorf("copy asset %s: %w", a.Route, err)
		}
	}

	if url := c.Config.SiteURL(); url != "" {
		gen := &sitemap.SitemapGenerator{
			Root:    r.Storage.Root,
			SiteURL: url,
			Logger:  r.Logger,
			Now:     r.Now,
		}
		if err := gen.Generate(ctx, web.SitemapEntries(c)); err != nil {
			// Non-fatal: the pages are still usable without a sitemap.
			r.Logger.Error("sitemap generation failed", "error", err)
		}
	}
	return nil
}

func (r *Runner) writeThemeStatic(ctx context.Context) error {
	static := web.StaticFS()
	return fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, p)
		if err != nil {
			return fmt.Errorf("read theme asset %s: %w", p, err)
		}
		return r.write(ctx, "static/"+p, data)
	})
}

// write stores content at p and, when precompressing, its gzip sidecar.
func (r *Runner) write(ctx context.Context, p string, content []byte) error {
	p = strings.TrimPrefix(p, "/")
	if err := r.Storage.WriteFile(ctx, p, content); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	if !r.Precompress || !precompressible(p) {
		return nil
	}
	gz, err := gzipBytes(content)
	if err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}
	if err := r.Storage.WriteFile(ctx, GzipPath(p), gz); err != nil {
		return fmt.Errorf("write %s: %w", GzipPath(p), err)
	}
	return nil
}

func (r *Runner) setStage(stage string) {
	r.mu.Lock()
	r.status.Stage = stage
	r.mu.Unlock()
}

func (r *Runner) fail(err error) error {
	r.setStage("error")
	return err
}

func (r *Runner) recordFailure(route string, err error) {
	r.mu.Lock()
	r.failures = append(r.failures, &PageError{Route: route, Err: err})
	r.status.Errors++
	r.mu.Unlock()

	r.Logger.Warn("page failed", "route", route, "error", err)
}
