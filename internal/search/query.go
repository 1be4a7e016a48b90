package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gittydocs/gittydocs/internal/markdown"
)

type hit struct {
	doc   int
	score int
}

// Search returns up to limit results for query, best first. A limit <= 0
// uses the index's default. Queries shorter than the minimum length, or
// without any word characters, return an empty slice.
//
// Every query word must prefix-match some word of a document for it to be
// returned. Documents are ranked by the number of matching word
// occurrences, and ties keep corpus order.
func (ix *Index) Search(query string, limit int) []Result {
	results := []Result{}
	if ix == nil || len(ix.docs) == 0 {
		return results
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(fold(query)) < ix.opts.MinQueryLength {
		return results
	}
	if limit <= 0 {
		limit = ix.opts.DefaultLimit
	}

	terms := uniqueTerms(words(query))
	if len(terms) == 0 {
		return results
	}

	var scores map[int]int
	for _, term := range terms {
		long := truncated(term)
		list := ix.postings[truncate(term)]
		if len(list) == 0 {
			return results
		}
		next := make(map[int]int, len(list))
		for _, p := range list {
			prev, ok := scores[p.doc]
			if scores != nil && !ok {
				continue
			}
			freq := p.freq
			if long {
				if freq = ix.countPrefixed(p.doc, term); freq == 0 {
					continue
				}
			}
			next[p.doc] = prev + freq
		}
		if len(next) == 0 {
			return results
		}
		scores = next
	}

	hits := make([]hit, 0, len(scores))
	for doc, score := range scores {
		hits = append(hits, hit{doc: doc, score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc < hits[j].doc
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	for _, h := range hits {
		doc := ix.docs[h.doc]
		snippet, spans := Snippet(markdown.Strip(doc.RawBody), query, ix.opts)
		results = append(results, Result{
			ID:         doc.ID,
			Title:      doc.Title,
			Snippet:    snippet,
			Highlights: spans,
		})
	}
	return results
}

// countPrefixed counts the full, uncut words of a document that start with
// term. The posting table only knows the first maxTokenRunes runes of a
// word, so terms longer than that are verified here.
func (ix *Index) countPrefixed(doc int, term string) int {
	n := 0
	for _, w := range words(searchableText(ix.docs[doc])) {
		if strings.HasPrefix(w, term) {
			n++
		}
	}
	return n
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
