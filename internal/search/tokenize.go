package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// maxTokenRunes bounds indexed prefixes so long identifiers or encoded
// blobs do not explode the posting table. Longer query terms are looked up
// by their first maxTokenRunes runes and then checked against the full
// document words.
const maxTokenRunes = 64

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// words splits s into case-folded words. Anything that is not a letter or
// a digit is a boundary.
func words(s string) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool { return !isWordRune(r) })
}

// tokenize is words with each word cut to maxTokenRunes.
func tokenize(s string) []string {
	out := words(s)
	for i, w := range out {
		out[i] = truncate(w)
	}
	return out
}

// prefixes returns every non-empty prefix of word, shortest first.
func prefixes(word string) []string {
	runes := []rune(word)
	out := make([]string, 0, len(runes))
	for i := 1; i <= len(runes); i++ {
		out = append(out, string(runes[:i]))
	}
	return out
}

func truncated(word string) bool {
	return utf8.RuneCountInString(word) > maxTokenRunes
}

func truncate(word string) string {
	runes := []rune(word)
	if len(runes) <= maxTokenRunes {
		return word
	}
	return string(runes[:maxTokenRunes])
}
