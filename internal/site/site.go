// Package site loads a docs directory into an ordered corpus of rendered
// pages, the navigation tree and the static assets published with them.
package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/markdown"
	"github.com/gittydocs/gittydocs/internal/nav"
	"github.com/gittydocs/gittydocs/internal/render"
	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/source"
	"github.com/gittydocs/gittydocs/internal/transform"
)

// Page is one Markdown document of the site.
type Page struct {
	Route       string
	SourcePath  string // slash separated, relative to the docs dir
	Title       string
	Description string
	Frontmatter markdown.Frontmatter
	Headings    []markdown.Heading
	Raw         string // file contents including frontmatter
	Body        string // Markdown without frontmatter
	HTML        string
	TOC         []transform.TOCEntry
	EditURL     string
	ModTime     time.Time
}

// Asset is a file from a static folder, served under /static/.
type Asset struct {
	Route      string
	SourcePath string // absolute path on disk
}

// Corpus is an immutable snapshot of a docs directory.
type Corpus struct {
	Config *config.Config
	Dir    string
	Pages  []*Page
	Nav    []nav.Item
	Assets []Asset

	byRoute map[string]*Page
	order   []string
	release func()
}

// Release removes the fetched files backing the corpus, if the corpus
// owns them. Callers must be done serving from it. It is safe to call on
// a nil corpus or more than once.
func (c *Corpus) Release() {
	if c == nil || c.release == nil {
		return
	}
	c.release()
	c.release = nil
}

var docExtensions = map[string]bool{".md": true, ".mdx": true}

type candidate struct {
	sourcePath string
	fullPath   string
	modTime    time.Time
}

// Load walks dir in lexical order and renders every Markdown page with r.
// Hidden directories are skipped. When two files map to the same route the
// first one is kept.
func Load(ctx context.Context, dir string, cfg *config.Config, r *render.Renderer, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = render.New("")
	}
	started := time.Now()

	var files []candidate
	var assets []Asset
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if isStatic(rel) {
			assets = append(assets, Asset{Route: assetRoute(rel), SourcePath: p})
			return nil
		}
		if !docExtensions[strings.ToLower(path.Ext(rel))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, candidate{sourcePath: rel, fullPath: p, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs: %w", err)
	}

	pages := make([]*Page, len(files))
	errs := make([]error, len(files))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			pages[i], errs[i] = loadPage(f, cfg, r)
		}()
	}
	wg.Wait()

	c := &Corpus{
		Config:  cfg,
		Dir:     dir,
		Assets:  assets,
		byRoute: make(map[string]*Page, len(pages)),
	}
	for i, p := range pages {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if prev, ok := c.byRoute[p.Route]; ok {
			logger.Warn("duplicate route", "route", p.Route, "kept", prev.SourcePath, "skipped", p.SourcePath)
			continue
		}
		c.byRoute[p.Route] = p
		c.Pages = append(c.Pages, p)
	}
	c.Nav = nav.Resolve(cfg.Nav, c.generatedNav())
	c.order = c.readingOrder()

	logger.Info("docs loaded",
		"dir", dir,
		"pages", len(c.Pages),
		"assets", len(c.Assets),
		"duration", time.Since(started).Round(time.Millisecond))
	return c, nil
}

func loadPage(f candidate, cfg *config.Config, r *render.Renderer) (*Page, error) {
	raw, err := os.ReadFile(f.fullPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.sourcePath, err)
	}
	fm, body, err := markdown.SplitFrontmatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.sourcePath, err)
	}

	route := nav.RoutePath(f.sourcePath)
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = markdown.DeriveTitle(body, titleSlug(route))
	}

	rendered, err := r.Render(f.sourcePath, title, []byte(body))
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(fm.Description)
	if description == "" {
		description = rendered.Description
	}

	return &Page{
		Route:       route,
		SourcePath:  f.sourcePath,
		Title:       title,
		Description: description,
		Frontmatter: fm,
		Headings:    markdown.ExtractHeadings(body),
		Raw:         string(raw),
		Body:        body,
		HTML:        rendered.HTML,
		TOC:         rendered.TOC,
		EditURL:     cfg.EditURL(f.sourcePath),
		ModTime:     f.modTime,
	}, nil
}

func titleSlug(route string) string {
	if route == "/" {
		return "overview"
	}
	return strings.TrimPrefix(route, "/")
}

func isStatic(rel string) bool {
	first, _, ok := strings.Cut(rel, "/")
	if !ok {
		return false
	}
	for _, d := range source.StaticDirs {
		if first == d {
			return true
		}
	}
	return false
}

func assetRoute(rel string) string {
	_, rest, _ := strings.Cut(rel, "/")
	return "/static/" + rest
}

func (c *Corpus) generatedNav() []nav.Item {
	paths := make([]string, 0, len(c.Pages))
	titles := make(map[string]string, len(c.Pages))
	for _, p := range c.Pages {
		paths = append(paths, p.SourcePath)
		titles[p.Route] = p.Title
	}
	return nav.Build(paths, titles)
}

// readingOrder lists routes as they appear in the navigation, followed by
// pages the navigation leaves out in corpus order.
func (c *Corpus) readingOrder() []string {
	seen := make(map[string]bool, len(c.Pages))
	var order []string
	for _, item := range nav.Flatten(c.Nav) {
		if _, ok := c.byRoute[item.Path]; ok && !seen[item.Path] {
			seen[item.Path] = true
			order = append(order, item.Path)
		}
	}
	for _, p := range c.Pages {
		if !seen[p.Route] {
			order = append(order, p.Route)
		}
	}
	return order
}

// Page returns the page served at route. A trailing slash is ignored.
func (c *Corpus) Page(route string) (*Page, bool) {
	if route != "/" {
		route = strings.TrimSuffix(route, "/")
	}
	p, ok := c.byRoute[route]
	return p, ok
}

// Routes returns every page route in reading order.
func (c *Corpus) Routes() []string {
	return append([]string(nil), c.order...)
}

// Neighbors returns the pages before and after route in reading order.
// Either may be nil.
func (c *Corpus) Neighbors(route string) (prev, next *Page) {
	for i, r := range c.order {
		if r != route {
			continue
		}
		if i > 0 {
			prev = c.byRoute[c.order[i-1]]
		}
		if i+1 < len(c.order) {
			next = c.byRoute[c.order[i+1]]
		}
		return prev, next
	}
	return nil, nil
}

// Documents converts the pages into the search corpus, in corpus order.
func (c *Corpus) Documents() []search.Document {
	docs := make([]search.Document, 0, len(c.Pages))
	for _, p := range c.Pages {
		docs = append(docs, search.Document{
			ID:          p.Route,
			Title:       p.Title,
			Description: p.Description,
			Headings:    p.Headings,
			RawBody:     p.Body,
		})
	}
	return docs
}

// MarkdownPath is where the raw Markdown of the page at route is served:
// "/guides/install.md", or "/index.md" for the root page.
func MarkdownPath(route string) string {
	if route == "/" || route == "" {
		return "/index.md"
	}
	return strings.TrimSuffix(route, "/") + ".md"
}
