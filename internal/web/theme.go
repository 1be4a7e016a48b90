package web

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/nav"
	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/transform"
)

//go:embed templates/base.html templates/page.html templates/search.html templates/404.html static/site.css static/search.js
var webAssets embed.FS

// Theme renders full HTML documents around page fragments. It is shared
// by the server and the static build.
type Theme struct {
	page     *template.Template
	search   *template.Template
	notFound *template.Template
	etag     string
}

type layoutView struct {
	Site         config.Site
	Links        config.Links
	Nav          []navView
	Title        string
	Description  string
	CanonicalURL string
	Query        string
	JSONLD       template.HTML
}

type navView struct {
	Label     string
	Path      string
	Items     []navView
	Accordion bool
	Active    bool
	Open      bool
}

type pageView struct {
	layoutView
	Page         *site.Page
	Body         template.HTML
	TOC          []transform.TOCEntry
	Prev         *site.Page
	Next         *site.Page
	MarkdownPath string
}

type searchView struct {
	layoutView
	MinQueryLength int
	Results        []resultView
	// Client marks a page whose results are filled in by search.js.
	Client bool
}

type resultView struct {
	Path    string
	Title   string
	Snippet template.HTML
}

func NewTheme() (*Theme, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.ParseFS(webAssets, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		return t, nil
	}
	page, err := parse("page.html")
	if err != nil {
		return nil, err
	}
	searchPage, err := parse("search.html")
	if err != nil {
		return nil, err
	}
	notFound, err := parse("404.html")
	if err != nil {
		return nil, err
	}
	return &Theme{page: page, search: searchPage, notFound: notFound, etag: computeStaticETag()}, nil
}

// StaticFS holds the theme assets served under /static/.
func StaticFS() fs.FS {
	sub, _ := fs.Sub(webAssets, "static")
	return sub
}

// RenderPage writes the HTML document for p.
func (t *Theme) RenderPage(w io.Writer, c *site.Corpus, p *site.Page) error {
	prev, next := c.Neighbors(p.Route)
	view := pageView{
		layoutView:   newLayout(c, p.Route, p.Title, p.Description),
		Page:         p,
		Body:         template.HTML(p.HTML),
		TOC:          p.TOC,
		Prev:         prev,
		Next:         next,
		MarkdownPath: site.MarkdownPath(p.Route),
	}
	view.JSONLD = articleJSONLD(c.Config, view.CanonicalURL, p)
	return t.page.ExecuteTemplate(w, "base", view)
}

// RenderSearch writes the search results page.
func (t *Theme) RenderSearch(w io.Writer, c *site.Corpus, query string, results []search.Result) error {
	view := searchView{
		layoutView:     newLayout(c, "/search", "Search", ""),
		MinQueryLength: c.Config.SearchOptions().MinQueryLength,
	}
	if view.MinQueryLength <= 0 {
		view.MinQueryLength = search.DefaultOptions().MinQueryLength
	}
	view.Query = query
	for _, r := range results {
		view.Results = append(view.Results, resultView{
			Path:    r.ID,
			Title:   r.Title,
			Snippet: HighlightSnippet(r.Snippet, r.Highlights),
		})
	}
	return t.search.ExecuteTemplate(w, "base", view)
}

// RenderClientSearch writes the search page for static builds. It carries
// no results; search.js fills them in from search-index.json.
func (t *Theme) RenderClientSearch(w io.Writer, c *site.Corpus) error {
	view := searchView{
		layoutView:     newLayout(c, "/search", "Search", ""),
		MinQueryLength: c.Config.SearchOptions().MinQueryLength,
		Client:         true,
	}
	if view.MinQueryLength <= 0 {
		view.MinQueryLength = search.DefaultOptions().MinQueryLength
	}
	return t.search.ExecuteTemplate(w, "base", view)
}

// RenderNotFound writes the 404 page.
func (t *Theme) RenderNotFound(w io.Writer, c *site.Corpus) error {
	return t.notFound.ExecuteTemplate(w, "base", newLayout(c, "", "Page not found", ""))
}

// HighlightSnippet escapes snippet and wraps each highlighted span in
// <mark>. Spans out of range or overlapping a previous span are skipped.
func HighlightSnippet(snippet string, spans []search.Span) template.HTML {
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(snippet) || s.Start >= s.End {
			continue
		}
		b.WriteString(html.EscapeString(snippet[pos:s.Start]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(snippet[s.Start:s.End]))
		b.WriteString("</mark>")
		pos = s.End
	}
	b.WriteString(html.EscapeString(snippet[pos:]))
	return template.HTML(b.String())
}

func newLayout(c *site.Corpus, route, title, description string) layoutView {
	cfg := c.Config
	v := layoutView{
		Site:        cfg.Site,
		Links:       cfg.Links,
		Nav:         navViews(c.Nav, route),
		Title:       title,
		Description: description,
	}
	if route == "/" {
		v.Title = ""
		if v.Description == "" {
			v.Description = cfg.Site.Description
		}
	}
	if base := cfg.SiteURL(); base != "" && route != "" {
		v.CanonicalURL = base + route
	}
	return v
}

func navViews(items []nav.Item, active string) []navView {
	out := make([]navView, 0, len(items))
	for _, item := range items {
		v := navView{
			Label:     item.Label,
			Path:      item.Path,
			Accordion: item.Accordion,
			Active:    item.Path != "" && item.Path == active,
			Items:     navViews(item.Items, active),
		}
		for _, child := range v.Items {
			if child.Active || child.Open {
				v.Open = true
			}
		}
		out = append(out, v)
	}
	return out
}

func articleJSONLD(cfg *config.Config, canonicalURL string, p *site.Page) template.HTML {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "TechArticle",
		"headline": p.Title,
		"isPartOf": map[string]any{
			"@type": "WebSite",
			"name":  cfg.Site.Name,
		},
	}
	if p.Description != "" {
		data["description"] = p.Description
	}
	if canonicalURL != "" {
		data["url"] = canonicalURL
	}
	if !p.ModTime.IsZero() {
		data["dateModified"] = p.ModTime.UTC().Format("2006-01-02")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return template.HTML(`<script type="application/ld+json">` + string(b) + `</script>`)
}

func computeStaticETag() string {
	h := sha256.New()
	entries, _ := webAssets.ReadDir("static")
	for _, entry := range entries {
		data, _ := webAssets.ReadFile("static/" + entry.Name())
		h.Write([]byte(entry.Name()))
		h.Write(data)
	}
	return `"` + hex.EncodeToString(h.Sum(nil))[:16] + `"`
}
