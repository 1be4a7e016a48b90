package transform

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const MaxDescriptionLen = 200

// stageDescription takes the text of the first non-empty paragraph.
func stageDescription(doc *Doc) {
	doc.body().Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseWhitespace(s.Text())
		if text == "" {
			return true
		}
		doc.Description = capDescription(text)
		return false
	})
}

func capDescription(desc string) string {
	if utf8.RuneCountInString(desc) <= MaxDescriptionLen {
		return desc
	}
	runes := []rune(desc)
	head := string(runes[:MaxDescriptionLen])
	cut := strings.LastIndex(head, " ")
	if cut <= 0 {
		cut = len(head)
	}
	return strings.TrimRight(head[:cut], ".,;: ") + " …"
}
