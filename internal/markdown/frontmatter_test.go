package markdown

import (
	"reflect"
	"testing"
)

func TestSplitFrontmatter(t *testing.T) {
	raw := "---\ntitle: Hello\ndescription: A page\ncategories: guide\ntags: [a, b]\n---\n# Body\n"
	fm, body, err := SplitFrontmatter(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "Hello" || fm.Description != "A page" {
		t.Fatalf("unexpected frontmatter: %+v", fm)
	}
	if !reflect.DeepEqual([]string(fm.Categories), []string{"guide"}) {
		t.Fatalf("unexpected categories: %v", fm.Categories)
	}
	if !reflect.DeepEqual(fm.Tags, []string{"a", "b"}) {
		t.Fatalf("unexpected tags: %v", fm.Tags)
	}
	if body != "# Body\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestSplitFrontmatterCategoryList(t *testing.T) {
	raw := "---\ncategories:\n  - one\n  - two\ndate: 2024-05-01\n---\nbody"
	fm, body, err := SplitFrontmatter(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual([]string(fm.Categories), []string{"one", "two"}) {
		t.Fatalf("unexpected categories: %v", fm.Categories)
	}
	if fm.Date != "2024-05-01" {
		t.Fatalf("unexpected date: %q", fm.Date)
	}
	if body != "body" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestSplitFrontmatterAbsent(t *testing.T) {
	for _, raw := range []string{"# Just a doc\n", "", "---", "---\ntitle: unclosed\n"} {
		fm, body, err := SplitFrontmatter(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if body != raw {
			t.Errorf("body changed for %q: %q", raw, body)
		}
		if fm.Title != "" {
			t.Errorf("unexpected title for %q: %q", raw, fm.Title)
		}
	}
}

func TestSplitFrontmatterInvalidYAML(t *testing.T) {
	if _, _, err := SplitFrontmatter("---\ntitle: [unclosed\n---\nbody"); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
