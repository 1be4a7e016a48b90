// Package source resolves where documentation comes from (a local folder
// or a GitHub repository URL) and materializes it as a local directory.
package source

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gittydocs/gittydocs/internal/config"
)

var (
	ErrInvalidGitHubURL = errors.New("invalid GitHub URL")
	ErrNotDirectory     = errors.New("source must be a directory")
)

type Kind int

const (
	Local Kind = iota
	GitHub
)

func (k Kind) String() string {
	if k == GitHub {
		return "github"
	}
	return "local"
}

// Source is a resolved documentation source. Dir is set for local sources
// and Repo for GitHub sources.
type Source struct {
	Kind  Kind
	Input string
	Dir   string
	Repo  config.Repo
}

var gitHubURLPattern = regexp.MustCompile(`(?i)^https?://(www\.)?github\.com/`)

// Resolve interprets input as a GitHub URL or a local directory. An empty
// input falls back to GITTYDOCS_SOURCE and then to the working directory.
func Resolve(input string) (Source, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("GITTYDOCS_SOURCE"))
	}
	if raw == "" {
		raw = "."
	}

	if gitHubURLPattern.MatchString(raw) {
		repo, err := ParseGitHubURL(raw)
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: GitHub, Input: raw, Repo: repo}, nil
	}

	abs, err := filepath.Abs(raw)
	if err != nil {
		return Source{}, fmt.Errorf("resolve source %s: %w", raw, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Source{}, fmt.Errorf("source not found: %w", err)
	}
	if !info.IsDir() {
		return Source{}, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return Source{Kind: Local, Input: raw, Dir: abs}, nil
}

// ParseGitHubURL extracts the repository, ref and docs folder from a
// github.com URL. Three shapes are accepted:
//
//	https://github.com/owner/repo/tree/<ref>/<docs path>
//	https://github.com/owner/repo/blob/<ref>/<path to a file in the docs folder>
//	https://github.com/owner/repo (ref "main", repository root)
func ParseGitHubURL(raw string) (config.Repo, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return config.Repo{}, fmt.Errorf("%w: %v", ErrInvalidGitHubURL, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return config.Repo{}, fmt.Errorf("%w: %s", ErrInvalidGitHubURL, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return config.Repo{}, fmt.Errorf("%w: missing owner or repository in %s", ErrInvalidGitHubURL, raw)
	}
	repo := config.Repo{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
		Ref:   "main",
	}
	if len(parts) < 4 {
		return repo, nil
	}

	switch parts[2] {
	case "tree":
		repo.Ref = parts[3]
		repo.DocsPath = strings.Join(parts[4:], "/")
	case "blob":
		repo.Ref = parts[3]
		dir := path.Dir(strings.Join(parts[4:], "/"))
		if dir != "." {
			repo.DocsPath = dir
		}
	}
	return repo, nil
}
