package transform

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gittydocs/gittydocs/internal/markdown"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// stageHeadings gives every heading a unique slug ID and a permalink.
// IDs use markdown.Slugify so they match the headings stored in the
// search index. Repeated slugs get "-1", "-2", ... suffixes.
func stageHeadings(doc *Doc) {
	seen := map[string]int{}
	doc.body().Find(headingSelector).Each(func(i int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if text == "" {
			return
		}

		slug := markdown.Slugify(text)
		if slug == "" {
			slug = fmt.Sprintf("heading-%d", i)
		}
		if _, dup := seen[slug]; dup {
			base := slug
			for n := seen[base] + 1; ; n++ {
				candidate := fmt.Sprintf("%s-%d", base, n)
				if _, taken := seen[candidate]; !taken {
					seen[base] = n
					slug = candidate
					break
				}
			}
		}
		seen[slug] = 0

		s.SetAttr("id", slug)
		s.AppendHtml(` <a class="permalink" href="#` + html.EscapeString(slug) + `" aria-hidden="true">#</a>`)

		level := headingLevel(goquery.NodeName(s))
		if level == 2 || level == 3 {
			doc.TOC = append(doc.TOC, TOCEntry{Level: level, Text: text, ID: slug})
		}
	})
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
