package search

import (
	"strings"
	"unicode"
)

const ellipsis = "..."

// Snippet cuts a display excerpt from text around the first
// case-insensitive occurrence of the trimmed query. The window holds up to
// opts.ContextBefore runes before the match and opts.ContextAfter runes
// after it, with "..." marking each truncated side. When the query does
// not occur, the first opts.FallbackLength runes are used instead.
//
// The query is matched literally. Highlights locate every occurrence of
// the query inside the returned snippet.
func Snippet(text, query string, opts Options) (string, []Span) {
	opts = opts.withDefaults()
	runes := []rune(text)
	needle := []rune(strings.TrimSpace(query))

	idx := indexFold(runes, needle, 0)
	if idx < 0 {
		if len(runes) <= opts.FallbackLength {
			return text, nil
		}
		return string(runes[:opts.FallbackLength]) + ellipsis, nil
	}

	start := max(0, idx-opts.ContextBefore)
	end := min(len(runes), idx+len(needle)+opts.ContextAfter)
	window := runes[start:end]

	var prefix, suffix string
	if start > 0 {
		prefix = ellipsis
	}
	if end < len(runes) {
		suffix = ellipsis
	}

	var spans []Span
	offset := len(prefix)
	for i := indexFold(window, needle, 0); i >= 0; i = indexFold(window, needle, i+len(needle)) {
		s := offset + len(string(window[:i]))
		spans = append(spans, Span{Start: s, End: s + len(string(window[i:i+len(needle)]))})
	}
	return prefix + string(window) + suffix, spans
}

// indexFold returns the rune index of the first case-insensitive match of
// needle in haystack at or after from, or -1.
func indexFold(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if !equalFold(haystack[i+j], r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func equalFold(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}
