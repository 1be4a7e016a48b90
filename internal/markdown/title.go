package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var titleHeadingPrefix = regexp.MustCompile(`^#\s+`)

// DeriveTitle returns the text of the first level-one heading in raw, or a
// label built from the last segment of slug when there is none.
func DeriveTitle(raw string, slug string) string {
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(titleHeadingPrefix.ReplaceAllString(line, ""))
		}
	}

	name := slug
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		name = slug[i+1:]
	}
	if name == "" {
		name = "Untitled"
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return TitleWords(strings.Split(name, " "))
}

// TitleWords upper-cases the first letter of every word and joins them
// with single spaces. The rest of each word is left as is.
func TitleWords(words []string) string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, upperFirst(w))
	}
	return strings.Join(out, " ")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
