// Package search implements the in-memory full-text index behind the
// site's search page and API. Documents are tokenized into case-folded
// words and every forward prefix of a word is indexed, so partial words
// match while the user is still typing.
package search

import (
	"strings"

	"github.com/gittydocs/gittydocs/internal/markdown"
)

type posting struct {
	doc  int
	freq int
}

// Index is an immutable search index. It is safe for concurrent use.
type Index struct {
	opts     Options
	docs     []Document
	byID     map[string]int
	postings map[string][]posting
}

// Build indexes docs with DefaultOptions.
func Build(docs []Document) *Index {
	return BuildWithOptions(docs, DefaultOptions())
}

// BuildWithOptions indexes docs in order. When two documents share an ID
// the first one wins. A blank title is replaced with one derived from the
// body or route.
func BuildWithOptions(docs []Document, opts Options) *Index {
	ix := &Index{
		opts:     opts.withDefaults(),
		byID:     make(map[string]int, len(docs)),
		postings: make(map[string][]posting),
	}
	for _, doc := range docs {
		if _, dup := ix.byID[doc.ID]; dup {
			continue
		}
		if strings.TrimSpace(doc.Title) == "" {
			doc.Title = markdown.DeriveTitle(doc.RawBody, doc.ID)
		}
		ord := len(ix.docs)
		ix.docs = append(ix.docs, doc)
		ix.byID[doc.ID] = ord

		counts := make(map[string]int)
		for _, word := range tokenize(searchableText(doc)) {
			for _, p := range prefixes(word) {
				counts[p]++
			}
		}
		for p, n := range counts {
			ix.postings[p] = append(ix.postings[p], posting{doc: ord, freq: n})
		}
	}
	return ix
}

// searchableText joins the fields a query is matched against.
func searchableText(doc Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte(' ')
	b.WriteString(doc.Description)
	for _, h := range doc.Headings {
		b.WriteByte(' ')
		b.WriteString(h.Text)
	}
	b.WriteByte(' ')
	b.WriteString(markdown.Strip(doc.RawBody))
	return b.String()
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.docs)
}

// Terms reports the number of distinct indexed prefixes.
func (ix *Index) Terms() int {
	if ix == nil {
		return 0
	}
	return len(ix.postings)
}

// Document returns the indexed document with the given ID.
func (ix *Index) Document(id string) (Document, bool) {
	if ix == nil {
		return Document{}, false
	}
	ord, ok := ix.byID[id]
	if !ok {
		return Document{}, false
	}
	return ix.docs[ord], true
}

// Documents returns the indexed documents in corpus order.
func (ix *Index) Documents() []Document {
	if ix == nil {
		return nil
	}
	out := make([]Document, len(ix.docs))
	copy(out, ix.docs)
	return out
}

// Options returns the effective options of the index.
func (ix *Index) Options() Options {
	if ix == nil {
		return DefaultOptions()
	}
	return ix.opts
}
