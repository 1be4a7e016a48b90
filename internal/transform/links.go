package transform

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gittydocs/gittydocs/internal/nav"
)

var docLinkPattern = regexp.MustCompile(`(?i)\.(md|mdx)$`)

// stageRewriteLinks points links at Markdown sources to their routes and
// opens external links in a new tab.
func stageRewriteLinks(doc *Doc) {
	doc.body().Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if rewritten, ok := RewriteHref(doc.SourcePath, href); ok {
			s.SetAttr("href", rewritten)
			return
		}
		if isExternal(href) {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "noopener noreferrer")
		}
	})
}

// RewriteHref maps a link written in the Markdown file at sourcePath to
// the route of the page it targets. Relative links resolve against the
// source file's directory, absolute ones against the docs root. It
// reports false for anything that is not a link to a .md or .mdx file.
func RewriteHref(sourcePath, href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	if !docLinkPattern.MatchString(u.Path) {
		return "", false
	}

	target := u.Path
	if !strings.HasPrefix(target, "/") {
		target = path.Join(path.Dir(sourcePath), target)
	}
	route := nav.RoutePath(target)
	if u.Fragment != "" {
		route += "#" + u.Fragment
	}
	return route, true
}

func isExternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
