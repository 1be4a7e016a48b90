package web

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gittydocs/gittydocs/internal/llms"
	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/sitemap"
)

// CorpusLoader produces a fresh corpus on every call.
type CorpusLoader interface {
	Load(ctx context.Context) (*site.Corpus, error)
}

// Server serves a docs corpus and its search index. Reload swaps both
// wholesale; requests in flight keep the snapshot they started with.
type Server struct {
	logger *slog.Logger
	theme  *Theme
	loader CorpusLoader
	search *search.Service

	reloadMu sync.Mutex
	corpus   atomic.Pointer[site.Corpus]
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func NewServer(loader CorpusLoader, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	theme, err := NewTheme()
	if err != nil {
		return nil, err
	}
	return &Server{
		logger: logger,
		theme:  theme,
		loader: loader,
		search: search.NewService(search.DefaultOptions(), logger),
	}, nil
}

// Reload loads the corpus again and rebuilds the search index. On error
// the previous snapshot stays in place.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	c, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload docs: %w", err)
	}
	s.search.RebuildWithOptions(c.Documents(), c.Config.SearchOptions())
	old := s.corpus.Swap(c)
	old.Release()
	return nil
}

// Corpus returns the current snapshot, or nil before the first Reload.
func (s *Server) Corpus() *site.Corpus {
	return s.corpus.Load()
}

// Search queries the current index.
func (s *Server) Search(query string, limit int) []search.Result {
	return s.search.Search(query, limit)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/robots.txt", s.handleRobotsTxt)
	mux.HandleFunc("/llms.txt", s.handleLlmsTxt)
	mux.HandleFunc("/sitemap.xml", s.handleSitemap)
	mux.HandleFunc("/search-index.json", s.handleSearchIndex)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/search", s.handleSearchPage)
	mux.HandleFunc("/static/", s.handleStatic)
	mux.HandleFunc("/", s.handlePage)
	return s.logRequests(gzipHandler(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) current(w http.ResponseWriter) (*site.Corpus, bool) {
	c := s.corpus.Load()
	if c == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "docs not loaded"})
		return nil, false
	}
	return c, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c := s.corpus.Load()
	if c == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "loading", "indexed": s.search.Ready()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pages": len(c.Pages)})
}

// handleSearch answers with an empty result list until the first index is
// built; health and page routes report the missing corpus instead.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseIntQuery(r, "limit", 0)
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: s.search.Search(query, limit)})
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.current(w)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	var results []search.Result
	if query != "" {
		results = s.search.Search(query, parseIntQuery(r, "limit", 0))
	}
	s.renderHTML(w, http.StatusOK, "search", func(buf *bytes.Buffer) error {
		return s.theme.RenderSearch(buf, c, query, results)
	})
}

func (s *Server) handleSearchIndex(w http.ResponseWriter, _ *http.Request) {
	if _, ok := s.current(w); !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.search.Index().Export())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.current(w)
	if !ok {
		return
	}
	clean := path.Clean("/" + r.URL.Path)

	if c.Config.LLMs.On() {
		if p := llmsPage(c, clean); p != nil {
			writeText(w, "text/markdown; charset=utf-8", llms.Page(p))
			return
		}
	}

	if strings.HasSuffix(clean, ".md") {
		route := strings.TrimSuffix(clean, ".md")
		if route == "/index" {
			route = "/"
		}
		if p, ok := c.Page(route); ok {
			writeText(w, "text/markdown; charset=utf-8", p.Raw)
			return
		}
	}

	p, ok := c.Page(clean)
	if !ok {
		s.renderNotFound(w, c)
		return
	}
	s.renderHTML(w, http.StatusOK, "page", func(buf *bytes.Buffer) error {
		return s.theme.RenderPage(buf, c, p)
	})
}

func llmsPage(c *site.Corpus, clean string) *site.Page {
	prefix := "/" + c.Config.LLMs.Path + "/"
	if !strings.HasPrefix(clean, prefix) || !strings.HasSuffix(clean, ".md") {
		return nil
	}
	for _, p := range c.Pages {
		if llms.PagePath(c.Config.LLMs.Path, p.SourcePath) == clean {
			return p
		}
	}
	return nil
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if c := s.corpus.Load(); c != nil {
		clean := path.Clean(r.URL.Path)
		for _, a := range c.Assets {
			if a.Route == clean {
				http.ServeFile(w, r, a.SourcePath)
				return
			}
		}
	}
	staticCacheHandler(s.theme.etag,
		http.StripPrefix("/static/", http.FileServer(http.FS(StaticFS()))),
	).ServeHTTP(w, r)
}

func (s *Server) renderNotFound(w http.ResponseWriter, c *site.Corpus) {
	s.renderHTML(w, http.StatusNotFound, "404", func(buf *bytes.Buffer) error {
		return s.theme.RenderNotFound(buf, c)
	})
}

// renderHTML buffers the template output. A failed render is a 500.
func (s *Server) renderHTML(w http.ResponseWriter, status int, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Error("render error", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRobotsTxt(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "text/plain; charset=utf-8", RobotsTxt(s.corpus.Load()))
}

// RobotsTxt allows everything but the API. The sitemap is referenced once
// a site URL is configured. c may be nil.
func RobotsTxt(c *site.Corpus) string {
	text := "User-agent: *\nAllow: /\nDisallow: /api/\nDisallow: /healthz\n"
	if c != nil && c.Config.SiteURL() != "" {
		text += "\nSitemap: " + c.Config.SiteURL() + "/sitemap.xml\n"
	}
	return text
}

func (s *Server) handleLlmsTxt(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.current(w)
	if !ok {
		return
	}
	if !c.Config.LLMs.On() {
		s.renderNotFound(w, c)
		return
	}
	writeText(w, "text/plain; charset=utf-8", llms.Index(c))
}

func (s *Server) handleSitemap(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.current(w)
	if !ok {
		return
	}
	if c.Config.SiteURL() == "" {
		s.renderNotFound(w, c)
		return
	}
	gen := &sitemap.SitemapGenerator{SiteURL: c.Config.SiteURL(), Logger: s.logger}
	var buf bytes.Buffer
	if err := gen.Write(&buf, SitemapEntries(c)); err != nil {
		s.logger.Error("sitemap error", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// SitemapEntries lists every page route in reading order.
func SitemapEntries(c *site.Corpus) []sitemap.Entry {
	routes := c.Routes()
	entries := make([]sitemap.Entry, 0, len(routes))
	for _, route := range routes {
		p, _ := c.Page(route)
		entries = append(entries, sitemap.Entry{Route: route, LastMod: p.ModTime})
	}
	return entries
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, contentType, text string) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(text))
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", filepath.Clean(r.URL.Path),
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

func staticCacheHandler(etag string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("ETag", etag)

		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// gzipResponseWriter compresses text, JSON, JavaScript and Markdown
// responses.
type gzipResponseWriter struct {
	http.ResponseWriter
	gw      *gzip.Writer
	sniffed bool
}

func (grw *gzipResponseWriter) WriteHeader(code int) {
	if code != http.StatusNotModified {
		grw.sniff()
	}
	grw.ResponseWriter.WriteHeader(code)
}

func (grw *gzipResponseWriter) Write(b []byte) (int, error) {
	grw.sniff()
	if grw.gw != nil {
		return grw.gw.Write(b)
	}
	return grw.ResponseWriter.Write(b)
}

func (grw *gzipResponseWriter) sniff() {
	if grw.sniffed {
		return
	}
	grw.sniffed = true

	ct := grw.ResponseWriter.Header().Get("Content-Type")
	if strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/json") ||
		strings.HasPrefix(ct, "application/xml") ||
		strings.HasPrefix(ct, "application/javascript") {
		grw.ResponseWriter.Header().Set("Content-Encoding", "gzip")
		grw.ResponseWriter.Header().Del("Content-Length")
	} else {
		grw.gw = nil
	}
}

func (grw *gzipResponseWriter) Flush() {
	if grw.gw != nil {
		_ = grw.gw.Flush()
	}
	if f, ok := grw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func gzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gw := gzip.NewWriter(w)
		grw := &gzipResponseWriter{ResponseWriter: w, gw: gw}
		next.ServeHTTP(grw, r)
		if grw.gw != nil {
			_ = grw.gw.Close()
		}
	})
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
