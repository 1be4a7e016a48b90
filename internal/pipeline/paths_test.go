package pipeline

import "testing"

func TestHTMLPath(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/", "index.html"},
		{"", "index.html"},
		{"/guides/install", "guides/install/index.html"},
		{"/guides/", "guides/index.html"},
	}
	for _, tt := range tests {
		if got := HTMLPath(tt.route); got != tt.want {
			t.Errorf("HTMLPath(%q) = %q, want %q", tt.route, got, tt.want)
		}
	}
}

func TestMarkdownPath(t *testing.T) {
	if got := MarkdownPath("/"); got != "index.md" {
		t.Fatalf("unexpected root markdown path: %s", got)
	}
	if got := MarkdownPath("/guides/install"); got != "guides/install.md" {
		t.Fatalf("unexpected markdown path: %s", got)
	}
}

func TestPrecompressible(t *testing.T) {
	for _, p := range []string{"index.html", "llms.txt", "static/site.css", "search-index.json", "img/logo.SVG"} {
		if !precompressible(p) {
			t.Errorf("expected %s to be precompressed", p)
		}
	}
	for _, p := range []string{"img/logo.png", "fonts/a.woff2", "README"} {
		if precompressible(p) {
			t.Errorf("expected %s to be left alone", p)
		}
	}
	if GzipPath("index.html") != "index.html.gz" {
		t.Fatal("unexpected gzip path")
	}
}
