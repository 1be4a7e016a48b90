package pipeline

import (
	"path"
	"strings"

	"github.com/gittydocs/gittydocs/internal/site"
)

// HTMLPath returns the output file for the page at route. Every page is a
// directory index so that routes resolve without an extension.
func HTMLPath(route string) string {
	route = strings.Trim(route, "/")
	if route == "" {
		return "index.html"
	}
	return path.Join(route, "index.html")
}

// MarkdownPath returns the output file holding the raw source of the page
// at route, matching the link the theme renders.
func MarkdownPath(route string) string {
	return strings.TrimPrefix(site.MarkdownPath(route), "/")
}

// GzipPath returns the precompressed sidecar of p.
func GzipPath(p string) string {
	return p + ".gz"
}

var compressible = map[string]bool{
	".html": true,
	".md":   true,
	".txt":  true,
	".json": true,
	".xml":  true,
	".css":  true,
	".js":   true,
	".svg":  true,
}

func precompressible(p string) bool {
	return compressible[strings.ToLower(path.Ext(p))]
}
