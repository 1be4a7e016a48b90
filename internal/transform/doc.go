// Package transform implements the HTML post-processing pipeline that
// turns rendered Markdown into a page fragment.
//
// The pipeline runs as a sequence of named stages:
//  1. Drop a leading h1 that repeats the page title
//  2. Assign heading IDs, add permalinks and collect the TOC
//  3. Rewrite links to Markdown sources into route paths
//  4. Wrap tables for horizontal scrolling
//  5. Extract a description from the first paragraph
package transform

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Doc holds the state of an HTML fragment as it passes through the
// pipeline.
type Doc struct {
	SourcePath  string     // source file relative to the docs root
	Title       string     // page title, rendered by the layout
	Body        string     // resulting HTML fragment
	TOC         []TOCEntry // h2 and h3 headings (set by stage 2)
	Description string     // first paragraph text (set by stage 5)

	dom *goquery.Document
}

// Pipeline runs all transformation stages on rawHTML.
func Pipeline(sourcePath, title, rawHTML string) (Doc, error) {
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Doc{}, fmt.Errorf("parse html: %w", err)
	}
	doc := Doc{SourcePath: sourcePath, Title: title, dom: dom}

	// Stage 1: Drop the title heading.
	stageDropTitleHeading(&doc)

	// Stage 2: Heading IDs, permalinks and TOC.
	stageHeadings(&doc)

	// Stage 3: Rewrite links.
	stageRewriteLinks(&doc)

	// Stage 4: Wrap tables.
	stageWrapTables(&doc)

	// Stage 5: Description.
	stageDescription(&doc)

	body, err := dom.Find("body").Html()
	if err != nil {
		return doc, fmt.Errorf("serialize html: %w", err)
	}
	doc.Body = strings.TrimSpace(body)
	doc.dom = nil
	return doc, nil
}

func (d *Doc) body() *goquery.Selection {
	return d.dom.Find("body")
}
