// Package llms renders llms.txt and the per-page Markdown files it links
// to.
package llms

import (
	"path"
	"regexp"
	"strings"

	"github.com/gittydocs/gittydocs/internal/nav"
	"github.com/gittydocs/gittydocs/internal/site"
)

// BOM prefixes every generated file.
const BOM = "\ufeff"

var docExtPattern = regexp.MustCompile(`(?i)\.(md|mdx)$`)

// PagePath returns the site path of the Markdown copy of a source file,
// e.g. "/llms/guides/install.md".
func PagePath(dir, sourcePath string) string {
	rel := docExtPattern.ReplaceAllString(strings.TrimPrefix(sourcePath, "/"), ".md")
	return "/" + path.Join(dir, rel)
}

// Index renders llms.txt for the corpus: a header, then one entry per
// navigation leaf grouped by top-level section.
func Index(c *site.Corpus) string {
	cfg := c.Config
	dir := cfg.LLMs.Path

	var b strings.Builder
	b.WriteString(BOM)
	b.WriteString("# " + cfg.Site.Name + "\n")
	if cfg.Site.Description != "" {
		b.WriteString("\n> " + cfg.Site.Description + "\n")
	}
	b.WriteString("\nPaths are site-relative. Use {origin}{path}, not /llms.txt{path}.\n")
	b.WriteString("Per-page markdown lives at /" + dir + "/... by default.\n")
	b.WriteString("\n## Table of Contents\n")

	var standalone, sections []nav.Item
	for _, item := range c.Nav {
		switch {
		case len(item.Items) > 0:
			sections = append(sections, item)
		case item.Path != "":
			standalone = append(standalone, item)
		}
	}

	if len(standalone) > 0 {
		b.WriteString("\n### Pages\n")
		writeItems(&b, c, standalone)
	}
	for _, section := range sections {
		b.WriteString("\n### " + section.Label + "\n")
		writeItems(&b, c, section.Items)
	}
	return b.String()
}

func writeItems(b *strings.Builder, c *site.Corpus, items []nav.Item) {
	for _, item := range items {
		if len(item.Items) > 0 {
			writeItems(b, c, item.Items)
			continue
		}
		if line, ok := entry(c, item); ok {
			b.WriteString(line + "\n")
		}
	}
}

func entry(c *site.Corpus, item nav.Item) (string, bool) {
	p := strings.TrimSpace(item.Path)
	if p == "" {
		return "", false
	}
	external := isExternal(p)
	if !external && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p == "/llms.txt" {
		return "", false
	}

	label := item.Label
	target := p
	var description string
	if page, ok := c.Page(p); ok && !external {
		label = page.Title
		description = page.Description
		target = PagePath(c.Config.LLMs.Path, page.SourcePath)
	}
	if label == "" {
		label = p
	}

	line := "- [" + label + "](" + target + ")"
	if description != "" {
		line += ": " + description
	}
	return line, true
}

// Page renders the Markdown copy of p: its title heading, the description
// as a blockquote, then the body.
func Page(p *site.Page) string {
	body := strings.TrimSpace(p.Body)

	heading := "# " + p.Title
	if strings.HasPrefix(body, "#") {
		first, rest, _ := strings.Cut(body, "\n")
		heading = first
		body = strings.TrimLeft(rest, " \t\r\n")
	}

	parts := []string{heading}
	if p.Description != "" {
		parts = append(parts, "> "+p.Description)
	}
	if body != "" {
		parts = append(parts, body)
	}
	return BOM + strings.TrimRight(strings.Join(parts, "\n\n"), " \t\r\n") + "\n"
}

func isExternal(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
