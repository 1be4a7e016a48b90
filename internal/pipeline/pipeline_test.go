package pipeline

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/site"
	"github.com/gittydocs/gittydocs/internal/storage"
	"github.com/gittydocs/gittydocs/internal/web"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadCorpus(t *testing.T, files map[string]string) *site.Corpus {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := config.LoadDir(dir, config.Repo{})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	c, err := site.Load(context.Background(), dir, cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("site.Load: %v", err)
	}
	return c
}

func newRunner(t *testing.T, out string) *Runner {
	t.Helper()
	theme, err := web.NewTheme()
	if err != nil {
		t.Fatalf("NewTheme: %v", err)
	}
	return &Runner{
		Storage: storage.NewFSStorage(out),
		Theme:   theme,
		Logger:  quietLogger(),
		Workers: 2,
		Now:     func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) },
	}
}

func readOut(t *testing.T, out, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

var docs = map[string]string{
	"gittydocs.json":         `{"site": {"name": "Acme", "url": "https://docs.acme.dev"}}`,
	"index.md":               "# Welcome\n\nHello.\n",
	"guides/install.md":      "---\ndescription: Set up Acme.\n---\n# Install\n\nRun the wizard.\n",
	"[static]/img/logo.svg":  "<svg/>",
	"[static]/site.css":      "body{}",
	"notes/unlisted.mdx":     "Just notes.\n",
	".github/workflows/x.md": "# hidden\n",
}

func TestRunWritesSite(t *testing.T) {
	c := loadCorpus(t, docs)
	out := filepath.Join(t.TempDir(), "dist")
	r := newRunner(t, out)

	if err := r.Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if html := readOut(t, out, "guides/install/index.html"); !strings.Contains(html, "<title>Install · Acme</title>") {
		t.Errorf("unexpected page html:\n%s", html)
	}
	if html := readOut(t, out, "index.html"); !strings.Contains(html, "Welcome") {
		t.Error("missing root page")
	}
	if raw := readOut(t, out, "guides/install.md"); !strings.HasPrefix(raw, "---\ndescription: Set up Acme.") {
		t.Errorf("raw markdown should keep frontmatter, got %q", raw)
	}
	if raw := readOut(t, out, "index.md"); raw != docs["index.md"] {
		t.Errorf("unexpected root markdown %q", raw)
	}

	var index search.ClientIndex
	if err := json.Unmarshal([]byte(readOut(t, out, "search-index.json")), &index); err != nil {
		t.Fatalf("decode search index: %v", err)
	}
	if len(index.Documents) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(index.Documents))
	}
	if index.Options != search.DefaultOptions() {
		t.Errorf("unexpected client options %+v", index.Options)
	}
	for _, d := range index.Documents {
		if d.ID != "/guides/install" {
			continue
		}
		if !strings.Contains(d.Text, "Run the wizard.") || strings.Contains(d.Text, "#") || strings.Contains(d.Text, "---") {
			t.Errorf("client text should be plain body, got %q", d.Text)
		}
	}
	if page := readOut(t, out, "search/index.html"); !strings.Contains(page, "data-client-search") || !strings.Contains(page, "/static/search.js") {
		t.Errorf("unexpected static search page:\n%s", page)
	}

	if llms := readOut(t, out, "llms.txt"); !strings.Contains(llms, "- [Install](/llms/guides/install.md): Set up Acme.") {
		t.Errorf("unexpected llms.txt:\n%s", llms)
	}
	if page := readOut(t, out, "llms/notes/unlisted.md"); !strings.Contains(page, "# Unlisted") {
		t.Errorf("unexpected llms page:\n%s", page)
	}

	if sm := readOut(t, out, "sitemap.xml"); !strings.Contains(sm, "<loc>https://docs.acme.dev/guides/install</loc>") {
		t.Errorf("unexpected sitemap:\n%s", sm)
	}
	if robots := readOut(t, out, "robots.txt"); !strings.Contains(robots, "Sitemap: https://docs.acme.dev/sitemap.xml") {
		t.Errorf("unexpected robots.txt:\n%s", robots)
	}
	if nf := readOut(t, out, "404.html"); !strings.Contains(nf, "Page not found") {
		t.Error("missing 404 page")
	}

	if readOut(t, out, "static/img/logo.svg") != "<svg/>" {
		t.Error("asset not copied")
	}
	if readOut(t, out, "static/site.css") != "body{}" {
		t.Error("site asset should override theme css")
	}
	if js := readOut(t, out, "static/search.js"); !strings.Contains(js, "/api/search") {
		t.Error("theme script not written")
	}
	if _, err := os.Stat(filepath.Join(out, "workflows")); !os.IsNotExist(err) {
		t.Error("hidden directories should be skipped")
	}

	s := r.Status()
	if s.Stage != "done" || s.Done != 3 || s.Errors != 0 {
		t.Fatalf("unexpected status %+v", s)
	}
}

func TestRunWithoutSiteURLOrLLMs(t *testing.T) {
	c := loadCorpus(t, map[string]string{
		"gittydocs.yaml": "llms:\n  enabled: false\n",
		"index.md":       "# Home\n",
	})
	out := t.TempDir()
	if err := newRunner(t, out).Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"sitemap.xml", "llms.txt", "llms"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not be written", name)
		}
	}
	if robots := readOut(t, out, "robots.txt"); strings.Contains(robots, "Sitemap:") {
		t.Error("robots.txt should not reference a sitemap")
	}
}

func TestRunPrecompress(t *testing.T) {
	c := loadCorpus(t, docs)
	out := t.TempDir()
	r := newRunner(t, out)
	r.Precompress = true
	if err := r.Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "guides", "install", "index.html.gz"))
	if err != nil {
		t.Fatalf("missing gzip sidecar: %v", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := io.ReadAll(gz)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != readOut(t, out, "guides/install/index.html") {
		t.Error("gzip sidecar does not match page")
	}
	if _, err := os.Stat(filepath.Join(out, "search-index.json.gz")); err != nil {
		t.Errorf("expected compressed search index: %v", err)
	}
}

func TestRunClean(t *testing.T) {
	c := loadCorpus(t, map[string]string{"index.md": "# Home\n"})
	out := t.TempDir()
	stale := filepath.Join(out, "old", "index.html")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newRunner(t, out)
	r.Clean = true
	if err := r.Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale output should be removed")
	}
	readOut(t, out, "index.html")
}

func TestRunRecordsPageFailures(t *testing.T) {
	c := loadCorpus(t, docs)
	out := t.TempDir()
	// A file where the guides directory belongs breaks every page below it.
	if err := os.WriteFile(filepath.Join(out, "guides"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newRunner(t, out)
	err := r.Run(context.Background(), c)
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *PageError
	if !errors.As(err, &pe) || pe.Route != "/guides/install" {
		t.Fatalf("expected page error for /guides/install, got %v", err)
	}

	s := r.Status()
	if s.Errors != 1 || s.Done != 3 {
		t.Fatalf("unexpected status %+v", s)
	}
	readOut(t, out, "index.html")
	readOut(t, out, "search-index.json")
}

func TestRunMissingDependencies(t *testing.T) {
	r := &Runner{}
	if err := r.Run(context.Background(), &site.Corpus{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunCancelled(t *testing.T) {
	c := loadCorpus(t, docs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, t.TempDir())
	if err := r.Run(ctx, c); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.Status().Stage != "error" {
		t.Fatalf("unexpected stage %q", r.Status().Stage)
	}
}
