package markdown

import (
	"reflect"
	"testing"
)

func TestExtractHeadings(t *testing.T) {
	raw := "# Getting Started\n" +
		"Intro text.\n" +
		"```bash\n" +
		"# not a heading\n" +
		"```\n" +
		"## Install & Setup\n" +
		"~~~\n" +
		"### inside tilde\n" +
		"```\n" +
		"### backticks do not close a tilde fence\n" +
		"~~~\n" +
		"#### After Tilde\n" +
		"#NoSpace\n" +
		"####### seven hashes\n"

	want := []Heading{
		{Level: 1, Text: "Getting Started", Slug: "getting-started"},
		{Level: 2, Text: "Install & Setup", Slug: "install-setup"},
		{Level: 4, Text: "After Tilde", Slug: "after-tilde"},
	}
	got := ExtractHeadings(raw)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractHeadings:\n got  %+v\n want %+v", got, want)
	}
}

func TestExtractHeadingsFenceLength(t *testing.T) {
	raw := "````\n# x\n```\n# y\n````\n# z"
	got := ExtractHeadings(raw)
	if len(got) != 1 || got[0].Text != "z" {
		t.Fatalf("expected only heading z, got %+v", got)
	}
}

func TestExtractHeadingsIndentedFence(t *testing.T) {
	raw := "  ```\n# hidden\n  ```\n## Shown"
	got := ExtractHeadings(raw)
	if len(got) != 1 || got[0].Level != 2 || got[0].Slug != "shown" {
		t.Fatalf("unexpected headings %+v", got)
	}
}

func TestExtractHeadingsCRLF(t *testing.T) {
	got := ExtractHeadings("# Windows Title\r\nbody\r\n")
	if len(got) != 1 || got[0].Text != "Windows Title" {
		t.Fatalf("unexpected headings %+v", got)
	}
}

func TestExtractHeadingsNone(t *testing.T) {
	if got := ExtractHeadings("just text\nno headings"); len(got) != 0 {
		t.Fatalf("expected no headings, got %+v", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hello World", "hello-world"},
		{"Install & Setup", "install-setup"},
		{"API v2.0", "api-v20"},
		{"a  --  b", "a-b"},
		{"snake_case name", "snake_case-name"},
		{"What's new?", "whats-new"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
