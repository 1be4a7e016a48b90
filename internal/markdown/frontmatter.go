package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header of a document.
type Frontmatter struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Date        string     `yaml:"date"`
	Categories  StringList `yaml:"categories"`
	Tags        []string   `yaml:"tags"`
}

// StringList accepts either a single YAML scalar or a sequence.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", value.Line)
	}
}

// SplitFrontmatter separates a leading "---" YAML block from the body.
// Documents without a complete block are returned unchanged with an empty
// Frontmatter. A block that is present but not valid YAML is an error.
func SplitFrontmatter(raw string) (Frontmatter, string, error) {
	var fm Frontmatter

	text := strings.TrimPrefix(raw, "\ufeff")
	first, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimRight(first, "\r") != "---" {
		return fm, raw, nil
	}

	var header []string
	lines := strings.SplitAfter(rest, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "---" || trimmed == "..." {
			if err := yaml.Unmarshal([]byte(strings.Join(header, "")), &fm); err != nil {
				return Frontmatter{}, raw, fmt.Errorf("parse frontmatter: %w", err)
			}
			return fm, strings.Join(lines[i+1:], ""), nil
		}
		header = append(header, line)
	}
	return fm, raw, nil
}
