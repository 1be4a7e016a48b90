package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/nav"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func testDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.md":                   "# Welcome\n\nStart here.\n",
		"01-guides/index.md":         "---\ntitle: Guides\ndescription: All the guides.\n---\n\nGuide overview.\n",
		"01-guides/02-deploy.md":     "# Deploy\n\n## Steps\n\nShip it.\n",
		"01-guides/01-install.mdx":   "Install with go.\n",
		"reference/config.md":        "# Configuration\n\nSee [install](../01-guides/01-install.mdx).\n",
		".github/workflow.md":        "# Hidden\n",
		"[static]/img/logo.svg":      "<svg/>",
		"[images]/shot.png":          "png",
		"gittydocs.json":             "{}",
		"notes.txt":                  "ignored",
		"node_modules/pkg/readme.md": "# Vendored\n",
	})
	return dir
}

func TestLoad(t *testing.T) {
	dir := testDocs(t)
	cfg := config.Default(config.Repo{Owner: "acme", Name: "docs", Ref: "main", DocsPath: "docs"})

	c, err := Load(context.Background(), dir, cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var routes []string
	for _, p := range c.Pages {
		routes = append(routes, p.Route)
	}
	want := []string{"/01-guides/01-install", "/01-guides/02-deploy", "/01-guides", "/", "/reference/config"}
	if len(routes) != len(want) {
		t.Fatalf("routes = %v, want %v", routes, want)
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Fatalf("routes = %v, want %v", routes, want)
		}
	}

	guides, ok := c.Page("/01-guides/")
	if !ok {
		t.Fatal("expected guides page")
	}
	if guides.Title != "Guides" || guides.Description != "All the guides." {
		t.Fatalf("frontmatter not applied: %q %q", guides.Title, guides.Description)
	}
	if guides.Body != "\nGuide overview.\n" {
		t.Fatalf("unexpected body %q", guides.Body)
	}

	install, _ := c.Page("/01-guides/01-install")
	if install.Title != "01 Install" {
		t.Fatalf("unexpected derived title %q", install.Title)
	}
	if install.Description != "Install with go." {
		t.Fatalf("expected description from first paragraph, got %q", install.Description)
	}

	deploy, _ := c.Page("/01-guides/02-deploy")
	if deploy.Title != "Deploy" || len(deploy.Headings) != 2 || len(deploy.TOC) != 1 {
		t.Fatalf("unexpected deploy page %+v", deploy)
	}
	if deploy.EditURL != "https://github.com/acme/docs/edit/main/docs/01-guides/02-deploy.md" {
		t.Fatalf("unexpected edit url %q", deploy.EditURL)
	}

	if len(c.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %+v", c.Assets)
	}
	if c.Assets[0].Route != "/static/shot.png" || c.Assets[1].Route != "/static/img/logo.svg" {
		t.Fatalf("unexpected asset routes %+v", c.Assets)
	}
}

func TestLoadNavAndNeighbors(t *testing.T) {
	dir := testDocs(t)
	c, err := Load(context.Background(), dir, config.Default(config.Repo{}), nil, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	order := c.Routes()
	if order[0] != "/" {
		t.Fatalf("expected index first in reading order, got %v", order)
	}
	prev, next := c.Neighbors("/01-guides/01-install")
	if prev == nil || prev.Route != "/01-guides" {
		t.Fatalf("unexpected prev %+v", prev)
	}
	if next == nil || next.Route != "/01-guides/02-deploy" {
		t.Fatalf("unexpected next %+v", next)
	}
	if prev, _ := c.Neighbors("/"); prev != nil {
		t.Fatalf("first page should have no prev, got %s", prev.Route)
	}
	if p, n := c.Neighbors("/missing"); p != nil || n != nil {
		t.Fatal("unknown route should have no neighbors")
	}
}

func TestLoadConfiguredNav(t *testing.T) {
	dir := testDocs(t)
	cfg := config.Default(config.Repo{})
	cfg.Nav = []nav.Item{
		{Label: "Config", Path: "/reference/config"},
		{Label: "Home", Path: "/"},
	}
	c, err := Load(context.Background(), dir, cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Nav) != 2 || c.Nav[0].Label != "Config" {
		t.Fatalf("configured nav not used: %+v", c.Nav)
	}
	order := c.Routes()
	if order[0] != "/reference/config" || order[1] != "/" || len(order) != 5 {
		t.Fatalf("unexpected reading order %v", order)
	}
}

func TestLoadDuplicateRoutes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"guide.md":  "# From md\n",
		"guide.mdx": "# From mdx\n",
	})
	c, err := Load(context.Background(), dir, config.Default(config.Repo{}), nil, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Pages) != 1 || c.Pages[0].Title != "From md" {
		t.Fatalf("expected the first file to win, got %+v", c.Pages)
	}
}

func TestLoadBadFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.md": "---\ntitle: [unclosed\n---\nbody\n"})
	if _, err := Load(context.Background(), dir, config.Default(config.Repo{}), nil, quietLogger()); err == nil {
		t.Fatal("expected frontmatter error")
	}
}

func TestDocuments(t *testing.T) {
	dir := testDocs(t)
	c, err := Load(context.Background(), dir, config.Default(config.Repo{}), nil, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	docs := c.Documents()
	if len(docs) != len(c.Pages) {
		t.Fatalf("expected %d documents, got %d", len(c.Pages), len(docs))
	}
	for i, d := range docs {
		if d.ID != c.Pages[i].Route || d.Title == "" {
			t.Fatalf("unexpected document %+v", d)
		}
	}
}

func TestLoaderLocal(t *testing.T) {
	dir := testDocs(t)
	writeFiles(t, dir, map[string]string{"gittydocs.json": `{"site": {"name": "Acme Docs"}}`})

	l := &Loader{Input: dir, Logger: quietLogger()}
	c, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Config.Site.Name != "Acme Docs" {
		t.Fatalf("config not loaded: %+v", c.Config.Site)
	}
	if len(c.Pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(c.Pages))
	}
}

func TestNewLoader(t *testing.T) {
	cacheDir := t.TempDir()
	t.Setenv("GITTYDOCS_CACHE_DIR", cacheDir)
	t.Setenv("GITHUB_TOKEN", "secret")

	l, closeFn := NewLoader(testDocs(t), "", false, quietLogger())
	defer closeFn()
	if l.Fetcher == nil || l.Fetcher.Token != "secret" {
		t.Fatalf("unexpected fetcher %+v", l.Fetcher)
	}
	if l.Fetcher.Cache == nil {
		t.Fatal("expected fetch cache")
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "fetch.db")); err != nil {
		t.Fatalf("cache database not created: %v", err)
	}
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	l, closeFn = NewLoader("", "", true, nil)
	defer closeFn()
	if l.Fetcher.Cache != nil {
		t.Fatal("cache should be off")
	}
}

func TestLoaderMissingDir(t *testing.T) {
	l := &Loader{Input: filepath.Join(t.TempDir(), "nope"), Logger: quietLogger()}
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestMarkdownPath(t *testing.T) {
	tests := map[string]string{
		"/":               "/index.md",
		"/guides":         "/guides.md",
		"/guides/install": "/guides/install.md",
		"/guides/":        "/guides.md",
	}
	for route, want := range tests {
		if got := MarkdownPath(route); got != want {
			t.Errorf("MarkdownPath(%q) = %q, want %q", route, got, want)
		}
	}
}
