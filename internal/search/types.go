package search

import "github.com/gittydocs/gittydocs/internal/markdown"

// Document is the unit indexed and returned by search. ID is the page's
// route path and must be unique within a corpus.
type Document struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Headings    []markdown.Heading `json:"headings,omitempty"`
	RawBody     string             `json:"rawBody"`
}

// Result is a single search hit ready for display.
type Result struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	Highlights []Span `json:"highlights,omitempty"`
}

// Span marks a highlighted region of Result.Snippet as byte offsets.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Options tunes query policy and snippet windows. Zero fields take the
// values from DefaultOptions.
type Options struct {
	// MinQueryLength is the minimum number of runes in a trimmed query.
	MinQueryLength int `json:"minQueryLength"`
	// DefaultLimit caps results when Search is called with limit <= 0.
	DefaultLimit int `json:"defaultLimit"`
	// ContextBefore and ContextAfter size the snippet window, in runes,
	// around the first body match.
	ContextBefore int `json:"contextBefore"`
	ContextAfter  int `json:"contextAfter"`
	// FallbackLength is the snippet length, in runes, when the query is
	// not found in the body.
	FallbackLength int `json:"fallbackLength"`
}

func DefaultOptions() Options {
	return Options{
		MinQueryLength: 2,
		DefaultLimit:   10,
		ContextBefore:  60,
		ContextAfter:   90,
		FallbackLength: 150,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = d.MinQueryLength
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = d.DefaultLimit
	}
	if o.ContextBefore <= 0 {
		o.ContextBefore = d.ContextBefore
	}
	if o.ContextAfter <= 0 {
		o.ContextAfter = d.ContextAfter
	}
	if o.FallbackLength <= 0 {
		o.FallbackLength = d.FallbackLength
	}
	return o
}
