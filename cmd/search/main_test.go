package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/gittydocs/gittydocs/internal/search"
)

func TestHighlight(t *testing.T) {
	mark := func(a ...any) string { return "[" + a[0].(string) + "]" }
	got := highlight("run the installer", []search.Span{{Start: 8, End: 15}, {Start: 9, End: 10}, {Start: 30, End: 40}}, mark)
	if got != "run the [install]er" {
		t.Fatalf("unexpected highlight %q", got)
	}
}

func TestPrintResults(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printResults(&buf, "install", []search.Result{
		{ID: "/guides/install", Title: "Install", Snippet: "Run the installer.", Highlights: []search.Span{{Start: 8, End: 15}}},
		{ID: "/", Title: "Welcome"},
	})
	out := buf.String()
	if !strings.Contains(out, "Install  /guides/install\n  Run the installer.\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "\nWelcome  /\n") {
		t.Errorf("missing second result:\n%s", out)
	}

	buf.Reset()
	printResults(&buf, "zz", nil)
	if buf.String() != "No results for \"zz\"\n" {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}
