package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gittydocs/gittydocs/internal/cache"
	"github.com/gittydocs/gittydocs/internal/config"
)

const (
	defaultAPIBase     = "https://api.github.com"
	defaultConcurrency = 8
	maxAttempts        = 3
)

// StaticDirs are folders next to the docs whose assets are published under
// /static/.
var StaticDirs = []string{"[static]", "[images]"}

var (
	docExtensions    = map[string]bool{".md": true, ".mdx": true}
	staticExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
		".webp": true, ".ico": true, ".avif": true, ".pdf": true, ".txt": true,
		".json": true, ".css": true, ".js": true, ".mp4": true, ".webm": true,
	}
)

// StatusError is returned when GitHub answers with a non-2xx status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub request %s: status %s", e.URL, e.Status)
}

func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Fetcher downloads documentation from GitHub through the contents API.
type Fetcher struct {
	APIBase     string
	Token       string
	Client      *http.Client
	Cache       *cache.Cache
	Logger      *slog.Logger
	RetryDelay  time.Duration
	Concurrency int
}

func NewFetcher(token string) *Fetcher {
	return &Fetcher{
		APIBase:     defaultAPIBase,
		Token:       token,
		Client:      &http.Client{Timeout: 60 * time.Second},
		RetryDelay:  time.Second,
		Concurrency: defaultConcurrency,
	}
}

// FetchResult describes a completed fetch.
type FetchResult struct {
	Dir        string
	Files      []string
	ConfigFile string
	Assets     []string
	CacheHits  int
}

type entry struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	DownloadURL string `json:"download_url"`
}

type download struct {
	entry
	rel string
}

// Fetch mirrors the Markdown files under repo.DocsPath into destDir,
// keeping their paths relative to the docs folder. The first config file
// from config.FileNames found at the docs root is fetched too, as are
// assets from StaticDirs.
func (f *Fetcher) Fetch(ctx context.Context, repo config.Repo, destDir string) (*FetchResult, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("%w: repository owner and name are required", ErrInvalidGitHubURL)
	}
	if repo.Ref == "" {
		repo.Ref = "main"
	}
	docsPath := strings.Trim(repo.DocsPath, "/")

	entries, err := f.list(ctx, repo, docsPath)
	if err != nil {
		return nil, err
	}

	var downloads []download
	configByName := map[string]download{}
	for _, e := range entries {
		rel := relativeTo(docsPath, e.Path)
		if rel == "" || !filepath.IsLocal(rel) {
			continue
		}
		if isStaticPath(rel) {
			if staticExtensions[strings.ToLower(path.Ext(rel))] {
				downloads = append(downloads, download{entry: e, rel: rel})
			}
			continue
		}
		if docExtensions[strings.ToLower(path.Ext(rel))] {
			downloads = append(downloads, download{entry: e, rel: rel})
			continue
		}
		if !strings.Contains(rel, "/") {
			configByName[rel] = download{entry: e, rel: rel}
		}
	}

	result := &FetchResult{Dir: destDir}
	for _, name := range config.FileNames {
		if d, ok := configByName[name]; ok {
			downloads = append(downloads, d)
			result.ConfigFile = name
			break
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create docs dir: %w", err)
	}

	hits, err := f.downloadAll(ctx, repo, destDir, downloads)
	if err != nil {
		return nil, err
	}
	result.CacheHits = hits

	for _, d := range downloads {
		switch {
		case d.rel == result.ConfigFile:
		case isStaticPath(d.rel):
			result.Assets = append(result.Assets, d.rel)
		default:
			result.Files = append(result.Files, d.rel)
		}
	}
	sort.Strings(result.Files)
	sort.Strings(result.Assets)

	f.logger().Info("fetched docs from GitHub",
		"repo", repo.Owner+"/"+repo.Name,
		"ref", repo.Ref,
		"path", docsPath,
		"files", len(result.Files),
		"assets", len(result.Assets),
		"cached", result.CacheHits)
	return result, nil
}

// list walks the contents API recursively from dir.
func (f *Fetcher) list(ctx context.Context, repo config.Repo, dir string) ([]entry, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents", strings.TrimSuffix(f.apiBase(), "/"),
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	if dir != "" {
		endpoint += "/" + escapePath(dir)
	}
	endpoint += "?ref=" + url.QueryEscape(repo.Ref)

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var single entry
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("decode contents %s: %w", dir, err)
		}
		if single.Type == "file" {
			return []entry{single}, nil
		}
		return nil, nil
	}

	var items []entry
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode contents %s: %w", dir, err)
	}

	var out []entry
	for _, item := range items {
		switch item.Type {
		case "dir":
			children, err := f.list(ctx, repo, item.Path)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		case "file":
			out = append(out, item)
		}
	}
	return out, nil
}

// downloadAll fetches files in parallel and reports how many came from
// the cache.
func (f *Fetcher) downloadAll(ctx context.Context, repo config.Repo, destDir string, downloads []download) (int, error) {
	slug := repo.Owner + "/" + repo.Name
	workers := f.Concurrency
	if workers <= 0 {
		workers = defaultConcurrency
	}

	errs := make([]error, len(downloads))
	cached := make([]bool, len(downloads))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, d := range downloads {
		wg.Add(1)
		go func(i int, d download) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			cached[i], errs[i] = f.downloadOne(ctx, slug, destDir, d)
		}(i, d)
	}
	wg.Wait()

	hits := 0
	for i := range downloads {
		if errs[i] != nil {
			return 0, errs[i]
		}
		if cached[i] {
			hits++
		}
	}
	return hits, nil
}

func (f *Fetcher) downloadOne(ctx context.Context, slug, destDir string, d download) (bool, error) {
	var (
		content []byte
		hit     bool
	)
	if f.Cache != nil && d.SHA != "" {
		var err error
		content, hit, err = f.Cache.Get(ctx, slug, d.Path, d.SHA)
		if err != nil {
			f.logger().Warn("cache read failed", "path", d.Path, "error", err)
		}
	}

	if !hit {
		if d.DownloadURL == "" {
			return false, fmt.Errorf("missing download_url for %s", d.Path)
		}
		f.logger().Debug("downloading file", "path", d.Path)
		var err error
		content, err = f.get(ctx, d.DownloadURL)
		if err != nil {
			return false, fmt.Errorf("fetch %s: %w", d.Path, err)
		}
		if f.Cache != nil && d.SHA != "" {
			if err := f.Cache.Put(ctx, slug, d.Path, d.SHA, content); err != nil {
				f.logger().Warn("cache write failed", "path", d.Path, "error", err)
			}
		}
	}

	dest := filepath.Join(destDir, filepath.FromSlash(d.rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("create dir for %s: %w", d.rel, err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", d.rel, err)
	}
	return hit, nil
}

// get performs a GET with up to maxAttempts tries. Network errors, 5xx and
// 429 responses are retried; other statuses fail immediately.
func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			f.logger().Warn("retrying request", "url", target, "attempt", attempt+1, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * f.RetryDelay):
			}
		}

		var body []byte
		body, lastErr = f.getOnce(ctx, target)
		if lastErr == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && !statusErr.retryable() {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (f *Fetcher) getOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "gittydocs")
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: target, Code: resp.StatusCode, Status: resp.Status}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", target, err)
	}
	return body, nil
}

func (f *Fetcher) apiBase() string {
	if f.APIBase == "" {
		return defaultAPIBase
	}
	return f.APIBase
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}

func relativeTo(dir, p string) string {
	if dir == "" {
		return p
	}
	if p == dir {
		return path.Base(p)
	}
	return strings.TrimPrefix(p, dir+"/")
}

func isStaticPath(rel string) bool {
	first, _, _ := strings.Cut(rel, "/")
	for _, d := range StaticDirs {
		if first == d {
			return true
		}
	}
	return false
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
