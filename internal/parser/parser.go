// Package parser reads and writes the Markdown representation of an idea:
// YAML frontmatter (title, tags, folder, created) followed by the description.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}][\p{L}\p{N}_/-]*)`)

// createdLayouts are accepted for the created field when YAML leaves it a string.
var createdLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly}

// Document is an idea in its Markdown form.
type Document struct {
	Title       string
	Description string
	Tags        []string
	Folder      string
	Created     time.Time
}

type frontmatter struct {
	Title   string    `yaml:"title,omitempty"`
	Tags    []string  `yaml:"tags,omitempty"`
	Folder  string    `yaml:"folder,omitempty"`
	Created time.Time `yaml:"created,omitempty"`
}

// Parse extracts an idea from raw Markdown. Tags come from the frontmatter
// list and from inline #tags in the body. Without a frontmatter title, a
// leading "# Heading" becomes the title and is dropped from the description.
func Parse(data []byte) (*Document, error) {
	fm, body := splitFrontmatter(data)

	doc := &Document{
		Title:  stringField(fm, "title"),
		Folder: stringField(fm, "folder"),
		Tags:   extractTags(body, fm),
	}
	created, err := createdField(fm)
	if err != nil {
		return nil, err
	}
	doc.Created = created

	if doc.Title == "" {
		doc.Title, body = headingTitle(body)
	}
	doc.Description = strings.TrimSpace(body)
	return doc, nil
}

// Render writes doc as Markdown with YAML frontmatter.
func Render(doc *Document) ([]byte, error) {
	fm := frontmatter{
		Title:   doc.Title,
		Tags:    doc.Tags,
		Folder:  doc.Folder,
		Created: doc.Created.UTC(),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: render frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(doc.Description))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Missing or invalid frontmatter leaves the whole
// content as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

func stringField(fm map[string]any, key string) string {
	s, _ := fm[key].(string)
	return strings.TrimSpace(s)
}

func createdField(fm map[string]any) (time.Time, error) {
	switch v := fm["created"].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		for _, layout := range createdLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("parser: created %q is not a date", v)
	default:
		return time.Time{}, fmt.Errorf("parser: created has unsupported type %T", v)
	}
}

// extractTags collects tags from the frontmatter "tags" field (a list, or a
// single space- or comma-separated string) and inline #tags from the body.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(t string) {
		t = strings.TrimLeft(strings.TrimSpace(t), "#")
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			add(s)
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// headingTitle returns the first "# Heading" line as the title. When that
// heading is the first non-blank line it is removed from the body.
func headingTitle(body string) (string, string) {
	lines := strings.Split(body, "\n")
	leading := true
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(trimmed[2:])
			if leading {
				body = strings.Join(lines[i+1:], "\n")
			}
			return title, body
		}
		leading = false
	}
	return "", body
}
