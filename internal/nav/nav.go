// Package nav builds the sidebar navigation tree from document source
// paths and maps source files to route paths.
package nav

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gittydocs/gittydocs/internal/markdown"
)

// Item is a navigation entry. Leaves carry a Path, sections carry Items.
type Item struct {
	Label     string `json:"label"`
	Path      string `json:"path,omitempty"`
	Items     []Item `json:"items,omitempty"`
	Accordion bool   `json:"accordion,omitempty"`
}

var (
	docExtPattern      = regexp.MustCompile(`(?i)\.(md|mdx)$`)
	orderPrefixPattern = regexp.MustCompile(`^(\d+)-`)
)

type node struct {
	name     string
	path     string
	isFile   bool
	children []*node
}

// Build groups source paths (slash separated, relative to the docs root)
// into a tree and returns it as navigation items. titleByRoute supplies
// labels for pages; missing titles fall back to a label derived from the
// file name. Directories without any pages are dropped.
func Build(sourcePaths []string, titleByRoute map[string]string) []Item {
	root := &node{}
	for _, p := range sourcePaths {
		insert(root, p)
	}
	return fromTree(root.children, titleByRoute)
}

// Resolve returns configured when it is non-empty, otherwise generated.
func Resolve(configured, generated []Item) []Item {
	if len(configured) > 0 {
		return configured
	}
	return generated
}

func insert(root *node, filePath string) {
	var parts []string
	for _, part := range strings.Split(filePath, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	current := root
	for i, part := range parts {
		isFile := i == len(parts)-1
		var next *node
		for _, child := range current.children {
			if child.name == part {
				next = child
				break
			}
		}
		if next == nil {
			p := part
			if current.path != "" {
				p = current.path + "/" + part
			}
			next = &node{name: part, path: p, isFile: isFile}
			current.children = append(current.children, next)
		}
		current = next
	}
}

func fromTree(nodes []*node, titleByRoute map[string]string) []Item {
	sorted := make([]*node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i].name, sorted[j].name)
	})

	var items []Item
	for _, n := range sorted {
		if !n.isFile {
			children := fromTree(n.children, titleByRoute)
			if len(children) > 0 {
				items = append(items, Item{Label: FormatLabel(n.name), Items: children})
			}
			continue
		}
		route := RoutePath(n.path)
		label := titleByRoute[route]
		if label == "" {
			label = defaultLabel(n.name)
		}
		items = append(items, Item{Label: label, Path: route})
	}
	return items
}

// Less orders sibling names: index files first, then names with a numeric
// "NN-" prefix by number, then everything else lexicographically.
func Less(a, b string) bool {
	aIndex := strings.HasPrefix(a, "index.")
	bIndex := strings.HasPrefix(b, "index.")
	if aIndex != bIndex {
		return aIndex
	}

	aNum, aOK := orderPrefix(a)
	bNum, bOK := orderPrefix(b)
	switch {
	case aOK && bOK:
		if aNum != bNum {
			return aNum < bNum
		}
	case aOK:
		return true
	case bOK:
		return false
	}
	return a < b
}

func orderPrefix(name string) (int, bool) {
	m := orderPrefixPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// RoutePath maps a source file path to its URL route: the extension is
// dropped, index and readme files stand for their directory, and the
// result always starts with "/".
func RoutePath(sourcePath string) string {
	route := strings.TrimPrefix(path.Clean("/"+sourcePath), "/")
	route = docExtPattern.ReplaceAllString(route, "")
	for _, name := range []string{"index", "readme"} {
		base := path.Base(route)
		if strings.EqualFold(base, name) {
			route = path.Dir(route)
			if route == "." {
				route = ""
			}
			break
		}
	}
	return "/" + strings.Trim(route, "/")
}

func defaultLabel(name string) string {
	if strings.HasPrefix(name, "index.") {
		return "Overview"
	}
	return FormatLabel(docExtPattern.ReplaceAllString(name, ""))
}

// FormatLabel turns a file or directory name such as "02-getting-started"
// into "Getting Started".
func FormatLabel(name string) string {
	name = orderPrefixPattern.ReplaceAllString(name, "")
	return markdown.TitleWords(strings.Split(name, "-"))
}

// Flatten returns the leaf items in display order.
func Flatten(items []Item) []Item {
	var out []Item
	for _, item := range items {
		if item.Path != "" {
			out = append(out, Item{Label: item.Label, Path: item.Path})
		}
		out = append(out, Flatten(item.Items)...)
	}
	return out
}
