package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gittydocs/gittydocs/internal/source"
)

// flakyGitHub serves a one-page repository until broken is set, then
// answers every request with 502.
func flakyGitHub(t *testing.T, broken *atomic.Bool) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch r.URL.Path {
		case "/repos/acme/docs/contents":
			_ = json.NewEncoder(w).Encode([]map[string]string{{
				"type":         "file",
				"path":         "index.md",
				"sha":          "abc",
				"download_url": server.URL + "/raw/index.md",
			}})
		case "/raw/index.md":
			_, _ = w.Write([]byte("# Welcome\n\nFetched page.\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func gitHubLoader(t *testing.T, server *httptest.Server) *Loader {
	t.Helper()
	f := source.NewFetcher("")
	f.APIBase = server.URL
	f.Client = server.Client()
	f.RetryDelay = time.Millisecond
	return &Loader{
		Input:   "https://github.com/acme/docs",
		WorkDir: t.TempDir(),
		Fetcher: f,
		Logger:  quietLogger(),
	}
}

func TestLoaderFailedRefetchKeepsPreviousFiles(t *testing.T) {
	var broken atomic.Bool
	l := gitHubLoader(t, flakyGitHub(t, &broken))

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	page := filepath.Join(first.Dir, "index.md")
	if _, err := os.Stat(page); err != nil {
		t.Fatalf("fetched page missing: %v", err)
	}

	broken.Store(true)
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected second Load to fail")
	}
	if _, err := os.Stat(page); err != nil {
		t.Fatalf("failed refetch removed the serving copy: %v", err)
	}
	if p, _ := first.Page("/"); p == nil || p.Title != "Welcome" {
		t.Fatalf("first corpus changed: %+v", p)
	}
}

func TestLoaderRefetchUsesFreshDir(t *testing.T) {
	var broken atomic.Bool
	l := gitHubLoader(t, flakyGitHub(t, &broken))

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first.Dir == second.Dir {
		t.Fatalf("both loads used %s", first.Dir)
	}
	if _, err := os.Stat(first.Dir); err != nil {
		t.Fatalf("first copy should remain until released: %v", err)
	}

	first.Release()
	if _, err := os.Stat(first.Dir); !os.IsNotExist(err) {
		t.Fatalf("Release left %s behind", first.Dir)
	}
	if _, err := os.Stat(filepath.Join(second.Dir, "index.md")); err != nil {
		t.Fatalf("second copy missing: %v", err)
	}
	first.Release()
}

func TestReleaseKeepsLocalSources(t *testing.T) {
	dir := testDocs(t)
	c, err := (&Loader{Input: dir, Logger: quietLogger()}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Release()
	if _, err := os.Stat(filepath.Join(dir, "index.md")); err != nil {
		t.Fatalf("local docs removed: %v", err)
	}
}
