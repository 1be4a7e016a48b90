// Package markdown holds the plain-text utilities shared by navigation,
// rendering and search: markup stripping, heading extraction, slugs,
// title derivation and frontmatter splitting.
//
// None of these functions parse Markdown properly. They are ordered
// regular-expression passes that tolerate malformed input: unbalanced
// constructs are left partially in place instead of producing an error.
package markdown

import (
	"regexp"
	"strings"
)

var (
	fencedCodePattern  = regexp.MustCompile("(?s)```.*?```|~~~.*?~~~")
	inlineCodePattern  = regexp.MustCompile("`[^`]*`")
	headingMarkPattern = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisPattern    = regexp.MustCompile(`\*\*|__|\*|_`)
	linkPattern        = regexp.MustCompile(`!?\[([^\]]+)\]\([^)]+\)`)
	imagePattern       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
)

// stripPasses run in order; later passes assume the earlier ones already
// removed their syntax.
var stripPasses = []func(string) string{
	removeFencedCode,
	removeInlineCode,
	removeHeadingMarkers,
	removeEmphasis,
	replaceLinks,
	removeImages,
	removeHTMLTags,
	collapseWhitespace,
}

// Strip converts Markdown source into a single line of prose suitable for
// matching and snippets.
func Strip(s string) string {
	for _, pass := range stripPasses {
		s = pass(s)
	}
	return s
}

func removeFencedCode(s string) string {
	return fencedCodePattern.ReplaceAllString(s, "")
}

func removeInlineCode(s string) string {
	return inlineCodePattern.ReplaceAllString(s, "")
}

func removeHeadingMarkers(s string) string {
	return headingMarkPattern.ReplaceAllString(s, "")
}

func removeEmphasis(s string) string {
	return emphasisPattern.ReplaceAllString(s, "")
}

// replaceLinks keeps the text of [text](url). Images share the bracket
// syntax, so a match starting with "!" is left for removeImages.
func replaceLinks(s string) string {
	return linkPattern.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "!") {
			return m
		}
		return linkPattern.FindStringSubmatch(m)[1]
	})
}

func removeImages(s string) string {
	return imagePattern.ReplaceAllString(s, "")
}

func removeHTMLTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// collapseWhitespace replaces runs of whitespace (including newlines)
// with a single space and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
