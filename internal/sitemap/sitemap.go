package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	maxSitemapURLs = 50000
	xmlns          = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

// Entry is one page route to list in the sitemap.
type Entry struct {
	Route   string
	LastMod time.Time
}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	XMLNS    string            `xml:"xmlns,attr"`
	Sitemaps []sitemapIndexRef `xml:"sitemap"`
}

type sitemapIndexRef struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// SitemapGenerator writes sitemap.xml for the site's page routes.
type SitemapGenerator struct {
	Root    string // output directory
	SiteURL string // e.g. "https://docs.example.com"
	Logger  *slog.Logger
	Now     func() time.Time
}

// Generate writes {Root}/sitemap.xml. Above 50 000 routes the URLs are
// split into sitemap-N.xml files and sitemap.xml becomes their index.
func (g *SitemapGenerator) Generate(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(g.Root, 0o755); err != nil {
		return fmt.Errorf("create sitemap dir: %w", err)
	}

	urls := g.urls(entries)
	chunks := splitURLs(urls, maxSitemapURLs)
	if len(chunks) == 1 {
		return writeXMLFile(filepath.Join(g.Root, "sitemap.xml"), urlSet(chunks[0]))
	}

	now := g.now().UTC().Format("2006-01-02")
	var refs []sitemapIndexRef
	for i, chunk := range chunks {
		filename := fmt.Sprintf("sitemap-%d.xml", i+1)
		if err := writeXMLFile(filepath.Join(g.Root, filename), urlSet(chunk)); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
		refs = append(refs, sitemapIndexRef{Loc: g.siteURL() + "/" + filename, LastMod: now})
	}
	if g.Logger != nil {
		g.Logger.Info("sitemap split", "urls", len(urls), "files", len(chunks))
	}
	return writeXMLFile(filepath.Join(g.Root, "sitemap.xml"), sitemapIndex{XMLNS: xmlns, Sitemaps: refs})
}

// Write renders a single urlset for entries to w, ignoring the split
// limit. It backs the dynamic /sitemap.xml handler.
func (g *SitemapGenerator) Write(w io.Writer, entries []Entry) error {
	return writeXML(w, urlSet(g.urls(entries)))
}

func (g *SitemapGenerator) urls(entries []Entry) []sitemapURL {
	base := g.siteURL()
	urls := make([]sitemapURL, 0, len(entries))
	for _, e := range entries {
		route := e.Route
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		u := sitemapURL{Loc: base + route}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return urls
}

func (g *SitemapGenerator) siteURL() string {
	return strings.TrimRight(g.SiteURL, "/")
}

func (g *SitemapGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func urlSet(urls []sitemapURL) sitemapURLSet {
	return sitemapURLSet{XMLNS: xmlns, URLs: urls}
}

func writeXMLFile(path string, v any) error {
	var buf bytes.Buffer
	if err := writeXML(&buf, v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func writeXML(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func splitURLs(urls []sitemapURL, maxPerFile int) [][]sitemapURL {
	if len(urls) <= maxPerFile {
		return [][]sitemapURL{urls}
	}
	var chunks [][]sitemapURL
	for i := 0; i < len(urls); i += maxPerFile {
		end := min(i+maxPerFile, len(urls))
		chunks = append(chunks, urls[i:end])
	}
	return chunks
}
