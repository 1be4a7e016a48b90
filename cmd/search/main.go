package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/gittydocs/gittydocs/internal/config"
	"github.com/gittydocs/gittydocs/internal/logging"
	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/site"
)

func main() {
	input := flag.String("source", "", "Docs directory or GitHub URL (default $GITTYDOCS_SOURCE or .)")
	configPath := flag.String("config", config.DefaultPath(), "Path to site config (default: discovered in the docs directory)")
	limit := flag.Int("limit", 0, "Maximum number of results (default from the site config)")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	noCache := flag.Bool("no-cache", false, "Do not use the GitHub fetch cache")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <query>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.BuildLogger(*logLevel)
	query := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(query) == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *noColor {
		color.NoColor = true
	}

	loader, closeCache := site.NewLoader(*input, *configPath, *noCache, logger)
	corpus, err := loader.Load(context.Background())
	closeCache()
	if err != nil {
		logger.Error("load docs", "error", err)
		os.Exit(1)
	}

	index := search.BuildWithOptions(corpus.Documents(), corpus.Config.SearchOptions())
	corpus.Release()
	results := index.Search(query, *limit)
	printResults(color.Output, query, results)
}

var (
	titleColor = color.New(color.Bold)
	pathColor  = color.New(color.FgCyan)
	matchColor = color.New(color.FgYellow, color.Bold)
)

func printResults(w io.Writer, query string, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No results for %q\n", query)
		return
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s\n", titleColor.Sprint(r.Title), pathColor.Sprint(r.ID))
		if r.Snippet != "" {
			fmt.Fprintf(w, "  %s\n", highlight(r.Snippet, r.Highlights, matchColor.Sprint))
		}
	}
}

// highlight wraps each span of snippet with mark. Spans that overlap an
// earlier one or fall outside the snippet are ignored.
func highlight(snippet string, spans []search.Span, mark func(a ...any) string) string {
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(snippet) || s.Start >= s.End {
			continue
		}
		b.WriteString(snippet[pos:s.Start])
		b.WriteString(mark(snippet[s.Start:s.End]))
		pos = s.End
	}
	b.WriteString(snippet[pos:])
	return b.String()
}
