// Package mcptools exposes the docs corpus and its search index as MCP
// tools so assistants can query the documentation directly.
package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gittydocs/gittydocs/internal/search"
	"github.com/gittydocs/gittydocs/internal/site"
)

// Docs is the read side of a loaded site. *web.Server implements it.
type Docs interface {
	Corpus() *site.Corpus
	Search(query string, limit int) []search.Result
}

var errNotLoaded = errors.New("docs not loaded")

type SearchDocsInput struct {
	Query string `json:"query" jsonschema:"Words to look for; every word must prefix-match the page"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (optional, defaults to the site setting)"`
}

type SearchDocsOutput struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

type GetPageInput struct {
	Path string `json:"path" jsonschema:"Page route as returned by search_docs, e.g. /guides/install"`
}

type GetPageOutput struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Markdown    string `json:"markdown"`
	EditURL     string `json:"editUrl,omitempty"`
}

type ListPagesInput struct{}

type PageSummary struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ListPagesOutput struct {
	Pages []PageSummary `json:"pages"`
}

// NewServer returns an MCP server with every docs tool registered.
func NewServer(docs Docs, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "gittydocs", Version: version}, nil)
	Register(server, docs)
	return server
}

// Register adds search_docs, get_page and list_pages to server.
func Register(server *mcp.Server, docs Docs) {
	t := &tools{docs: docs}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_docs",
		Description: "Full-text search over the documentation. Returns page paths, titles and a highlighted snippet, best match first.",
	}, t.searchDocs)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page",
		Description: "Return the Markdown source of one documentation page by path.",
	}, t.getPage)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_pages",
		Description: "List every documentation page in reading order.",
	}, t.listPages)
}

type tools struct {
	docs Docs
}

func (t *tools) searchDocs(ctx context.Context, req *mcp.CallToolRequest, in SearchDocsInput) (*mcp.CallToolResult, SearchDocsOutput, error) {
	if t.docs.Corpus() == nil {
		return nil, SearchDocsOutput{}, errNotLoaded
	}
	return nil, SearchDocsOutput{Query: in.Query, Results: t.docs.Search(in.Query, in.Limit)}, nil
}

func (t *tools) getPage(ctx context.Context, req *mcp.CallToolRequest, in GetPageInput) (*mcp.CallToolResult, GetPageOutput, error) {
	c := t.docs.Corpus()
	if c == nil {
		return nil, GetPageOutput{}, errNotLoaded
	}
	route := in.Path
	if route == "" {
		route = "/"
	} else if route[0] != '/' {
		route = "/" + route
	}
	p, ok := c.Page(route)
	if !ok {
		return nil, GetPageOutput{}, fmt.Errorf("no page at %q", in.Path)
	}
	return nil, GetPageOutput{
		Path:        p.Route,
		Title:       p.Title,
		Description: p.Description,
		Markdown:    p.Body,
		EditURL:     p.EditURL,
	}, nil
}

func (t *tools) listPages(ctx context.Context, req *mcp.CallToolRequest, _ ListPagesInput) (*mcp.CallToolResult, ListPagesOutput, error) {
	c := t.docs.Corpus()
	if c == nil {
		return nil, ListPagesOutput{}, errNotLoaded
	}
	routes := c.Routes()
	out := ListPagesOutput{Pages: make([]PageSummary, 0, len(routes))}
	for _, route := range routes {
		p, _ := c.Page(route)
		out.Pages = append(out.Pages, PageSummary{Path: p.Route, Title: p.Title, Description: p.Description})
	}
	return nil, out, nil
}
