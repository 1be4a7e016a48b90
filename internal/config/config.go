package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/gittydocs/gittydocs/internal/nav"
	"github.com/gittydocs/gittydocs/internal/search"
)

// FileNames lists the config files looked up in a docs directory, in
// priority order.
var FileNames = []string{
	"gittydocs.jsonc",
	"gittydocs.json",
	"gittydocs.toml",
	"gittydocs.yaml",
	"gittydocs.yml",
}

var ErrNotFound = errors.New("config file not found")

type Config struct {
	Site   Site       `json:"site"`
	Nav    []nav.Item `json:"nav,omitempty"`
	Links  Links      `json:"links"`
	LLMs   LLMs       `json:"llms"`
	Search Search     `json:"search"`
}

type Site struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Repo        Repo   `json:"repo"`
}

type Repo struct {
	Owner    string `json:"owner,omitempty"`
	Name     string `json:"name,omitempty"`
	Ref      string `json:"ref,omitempty"`
	DocsPath string `json:"docsPath,omitempty"`
}

type Links struct {
	GitHub  string `json:"github,omitempty"`
	Issues  string `json:"issues,omitempty"`
	Discord string `json:"discord,omitempty"`
}

// LLMs controls llms.txt output, which is on unless Enabled is false.
// Path is the directory, relative to the site root, that holds the
// per-page Markdown copies it links to.
type LLMs struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// On reports whether llms.txt is generated.
func (l LLMs) On() bool {
	return l.Enabled == nil || *l.Enabled
}

// Search overrides the search query policy. Zero values keep the defaults.
type Search struct {
	MinQueryLength int `json:"minQueryLength,omitempty"`
	Limit          int `json:"limit,omitempty"`
	ContextBefore  int `json:"contextBefore,omitempty"`
	ContextAfter   int `json:"contextAfter,omitempty"`
	FallbackLength int `json:"fallbackLength,omitempty"`
}

// DefaultPath returns the config file named by GITTYDOCS_CONFIG. An empty
// result means the file is discovered in the docs directory.
func DefaultPath() string {
	return os.Getenv("GITTYDOCS_CONFIG")
}

// Default returns the configuration used when a docs directory has no
// config file.
func Default(repo Repo) *Config {
	cfg := &Config{Site: Site{Repo: repo}}
	cfg.applyDefaults()
	return cfg
}

// FindPath returns the first config file from FileNames present in dir.
func FindPath(dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat config: %w", err)
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// LoadDir loads the config file found in dir, or Default(repo) when there
// is none. Values from repo fill in a config that leaves them unset.
func LoadDir(dir string, repo Repo) (*Config, error) {
	p, err := FindPath(dir)
	if errors.Is(err, ErrNotFound) {
		return Default(repo), nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := readFile(p)
	if err != nil {
		return nil, err
	}
	cfg.Site.Repo = mergeRepo(cfg.Site.Repo, repo)
	return cfg.finish()
}

// Load reads a config file. The format follows the file extension.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return cfg.finish()
}

// Parse decodes raw config bytes of the given format (".jsonc", ".json",
// ".toml", ".yaml" or ".yml"). source names the document in errors.
func Parse(raw []byte, format, source string) (*Config, error) {
	cfg, err := decode(raw, format, source)
	if err != nil {
		return nil, err
	}
	return cfg.finish()
}

func readFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(raw, filepath.Ext(path), path)
}

func decode(raw []byte, format, source string) (*Config, error) {
	normalized, err := normalize(raw, format)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", source, err)
	}
	if err := validateDocument(source, normalized); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(normalized, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", source, err)
	}
	return &cfg, nil
}

func (c *Config) finish() (*Config, error) {
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// normalize converts any supported format to standard JSON.
func normalize(raw []byte, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "jsonc", "json":
		if len(strings.TrimSpace(string(raw))) == 0 {
			return []byte("{}"), nil
		}
		return hujson.Standardize(raw)
	case "toml":
		doc := map[string]any{}
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	case "yaml", "yml":
		doc := map[string]any{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

func mergeRepo(cfg, fallback Repo) Repo {
	if cfg.Owner == "" {
		cfg.Owner = fallback.Owner
	}
	if cfg.Name == "" {
		cfg.Name = fallback.Name
	}
	if cfg.Ref == "" {
		cfg.Ref = fallback.Ref
	}
	if cfg.DocsPath == "" {
		cfg.DocsPath = fallback.DocsPath
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Site.Name == "" {
		if slug := c.RepoSlug(); slug != "" {
			c.Site.Name = slug
		} else {
			c.Site.Name = "Docs"
		}
	}
	if c.Site.Repo.Ref == "" && c.RepoSlug() != "" {
		c.Site.Repo.Ref = "main"
	}
	if c.Links.GitHub == "" && c.RepoSlug() != "" {
		c.Links.GitHub = "https://github.com/" + c.RepoSlug()
	}
	c.LLMs.Path = strings.Trim(strings.TrimSpace(c.LLMs.Path), "/")
	if c.LLMs.Path == "" {
		c.LLMs.Path = "llms"
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Name) == "" {
		return errors.New("config site.name is required")
	}
	if c.Site.URL != "" {
		u, err := url.Parse(c.Site.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config site.url must be an absolute URL, got %q", c.Site.URL)
		}
	}
	if (c.Site.Repo.Owner == "") != (c.Site.Repo.Name == "") {
		return errors.New("config site.repo needs both owner and name")
	}
	if err := validateNav(c.Nav, "nav"); err != nil {
		return err
	}
	if !filepath.IsLocal(c.LLMs.Path) {
		return fmt.Errorf("config llms.path must stay inside the site, got %q", c.LLMs.Path)
	}
	return nil
}

func validateNav(items []nav.Item, where string) error {
	for i, item := range items {
		at := fmt.Sprintf("%s[%d]", where, i)
		if item.Path == "" && len(item.Items) == 0 {
			return fmt.Errorf("config %s needs a path or items", at)
		}
		if item.Path != "" && !strings.HasPrefix(item.Path, "/") && !isExternal(item.Path) {
			return fmt.Errorf("config %s.path must start with / or be a URL, got %q", at, item.Path)
		}
		if err := validateNav(item.Items, at+".items"); err != nil {
			return err
		}
	}
	return nil
}

func isExternal(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// SiteURL returns the public base URL without a trailing slash.
func (c *Config) SiteURL() string {
	return strings.TrimRight(c.Site.URL, "/")
}

// RepoSlug returns "owner/name", or "" when no repository is configured.
func (c *Config) RepoSlug() string {
	if c.Site.Repo.Owner == "" || c.Site.Repo.Name == "" {
		return ""
	}
	return c.Site.Repo.Owner + "/" + c.Site.Repo.Name
}

// EditURL links to the GitHub editor for a source file relative to the
// docs directory, or returns "" without a repository.
func (c *Config) EditURL(sourcePath string) string {
	slug := c.RepoSlug()
	if slug == "" {
		return ""
	}
	p := path.Join(c.Site.Repo.DocsPath, sourcePath)
	return fmt.Sprintf("https://github.com/%s/edit/%s/%s", slug, c.Site.Repo.Ref, strings.TrimPrefix(p, "/"))
}

// SearchOptions maps the search section onto index options.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		MinQueryLength: c.Search.MinQueryLength,
		DefaultLimit:   c.Search.Limit,
		ContextBefore:  c.Search.ContextBefore,
		ContextAfter:   c.Search.ContextAfter,
		FallbackLength: c.Search.FallbackLength,
	}
}
