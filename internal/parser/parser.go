// Package parser extracts frontmatter, slugs, and dates from content files.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/termblog/internal/apperr"
)

// DateLayout is the layout every post date must satisfy.
const DateLayout = "2006-01-02"

var dayPrefixRe = regexp.MustCompile(`^\d+-`)

// Frontmatter holds the recognised frontmatter keys.
type Frontmatter struct {
	Title   string     `yaml:"title"`
	Date    string     `yaml:"date"`
	Tags    StringList `yaml:"tags"`
	Excerpt string     `yaml:"excerpt"`
}

// StringList decodes either a YAML sequence or a single scalar.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if s := strings.TrimSpace(n.Value); s != "" {
			*l = StringList{s}
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		out := make(StringList, 0, len(items))
		for _, s := range items {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("tags: unexpected yaml node kind %d", n.Kind)
	}
}

// Result holds the output of parsing a markdown file.
type Result struct {
	Frontmatter Frontmatter
	Body        string
	WordCount   int
}

// Parse splits data into frontmatter and body. Both delimiters are
// mandatory; a file without them is malformed.
func Parse(data []byte) (*Result, error) {
	lines := strings.Split(string(data), "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return nil, fmt.Errorf("%w: missing opening ---", apperr.ErrMalformed)
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("%w: missing closing ---", apperr.ErrMalformed)
	}

	var fm Frontmatter
	block := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, fmt.Errorf("%w: frontmatter: %v", apperr.ErrMalformed, err)
	}

	body := strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
	return &Result{
		Frontmatter: fm,
		Body:        body,
		WordCount:   len(strings.Fields(body)),
	}, nil
}

// ParseSidecar decodes a sidecar metadata file (plain YAML, no delimiters).
func ParseSidecar(data []byte) (Frontmatter, error) {
	var fm Frontmatter
	if len(bytes.TrimSpace(data)) == 0 {
		return fm, nil
	}
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return fm, fmt.Errorf("%w: sidecar: %v", apperr.ErrMalformed, err)
	}
	return fm, nil
}

// Slug derives the slug from a file name: the leading day prefix and the
// extension are removed. "11-building-a-blog.md" becomes "building-a-blog".
func Slug(filename string) string {
	base := path.Base(filename)
	base = strings.TrimSuffix(base, path.Ext(base))
	return dayPrefixRe.ReplaceAllString(base, "")
}

// DateFromPath derives a date from the layout /posts/YYYY/MM/DD-slug.ext.
// It returns an empty string when the path does not follow that layout.
func DateFromPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) < 3 {
		return ""
	}
	year, month := parts[len(parts)-3], parts[len(parts)-2]
	day, _, ok := strings.Cut(parts[len(parts)-1], "-")
	if !ok {
		return ""
	}
	return year + "-" + month + "-" + day
}

// ValidateDate checks that s is a calendar date in DateLayout.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: invalid date %q", apperr.ErrMalformed, s)
	}
	return nil
}
