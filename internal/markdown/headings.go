package markdown

import (
	"regexp"
	"strings"
)

var (
	fenceLinePattern = regexp.MustCompile("^\\s*(```+|~~~+)")
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	slugDropPattern  = regexp.MustCompile(`[^\w\s-]`)
	slugSpacePattern = regexp.MustCompile(`\s+`)
	slugDashPattern  = regexp.MustCompile(`-+`)
)

// Heading is an ATX heading found in a document body.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// ExtractHeadings returns the headings of raw Markdown in document order.
// Lines inside fenced code blocks are skipped. A fence is closed only by
// the same fence character repeated at least as many times as the opener;
// nested fences are not supported.
func ExtractHeadings(raw string) []Heading {
	var headings []Heading
	var fenceChar byte
	fenceLen := 0

	for _, line := range strings.Split(raw, "\n") {
		if m := fenceLinePattern.FindStringSubmatch(line); m != nil {
			marker := m[1]
			if fenceChar == 0 {
				fenceChar = marker[0]
				fenceLen = len(marker)
				continue
			}
			if marker[0] == fenceChar && len(marker) >= fenceLen {
				fenceChar = 0
				fenceLen = 0
				continue
			}
		}
		if fenceChar != 0 {
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  text,
			Slug:  Slugify(text),
		})
	}
	return headings
}

// Slugify turns heading text into an anchor id: lowercase, punctuation
// dropped, whitespace runs replaced by single hyphens.
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = slugDropPattern.ReplaceAllString(slug, "")
	slug = slugSpacePattern.ReplaceAllString(slug, "-")
	slug = slugDashPattern.ReplaceAllString(slug, "-")
	return strings.TrimSpace(slug)
}
