package search

import "github.com/gittydocs/gittydocs/internal/markdown"

// ClientIndex is the search-index.json payload. Browsers on static hosts
// run the same query rules over it: prefix matching of every query word,
// ranking by occurrence count with corpus order for ties, and snippets cut
// from Text with the exported window sizes.
type ClientIndex struct {
	Options   Options          `json:"options"`
	Documents []ClientDocument `json:"documents"`
}

// ClientDocument is a Document with its body already reduced to plain
// text.
type ClientDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	// Text is the plain body, searched and used for snippets.
	Text string `json:"text"`
}

// Export returns the index contents in corpus order, after duplicate ids
// were dropped and missing titles filled in.
func (ix *Index) Export() ClientIndex {
	out := ClientIndex{Documents: []ClientDocument{}}
	if ix == nil {
		out.Options = DefaultOptions()
		return out
	}
	out.Options = ix.opts
	for _, doc := range ix.docs {
		cd := ClientDocument{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Text:        markdown.Strip(doc.RawBody),
		}
		for _, h := range doc.Headings {
			cd.Headings = append(cd.Headings, h.Text)
		}
		out.Documents = append(out.Documents, cd)
	}
	return out
}
