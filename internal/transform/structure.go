package transform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stageDropTitleHeading removes the first element when it is an h1 whose
// text equals the page title; the layout renders the title itself.
func stageDropTitleHeading(doc *Doc) {
	first := doc.body().Children().First()
	if goquery.NodeName(first) != "h1" {
		return
	}
	if strings.EqualFold(collapseWhitespace(first.Text()), collapseWhitespace(doc.Title)) {
		first.Remove()
	}
}

func stageWrapTables(doc *Doc) {
	doc.body().Find("table").WrapHtml(`<div class="table-wrap"></div>`)
}
