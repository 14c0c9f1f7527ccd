// Package models defines the domain types for termblog.
package models

// Meta is the metadata of a content file, taken from its frontmatter
// or its sidecar file.
type Meta struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Tags      []string `json:"tags"`
	Excerpt   string   `json:"excerpt"`
	WordCount int      `json:"word_count"`
}

// Entry describes one content file mounted in the virtual filesystem.
type Entry struct {
	// Path is rooted at the content directory, e.g. /posts/2016/04/11-building-a-blog.md.
	Path      string `json:"path"`
	Slug      string `json:"slug"`
	Extension string `json:"extension"`
	Meta      Meta   `json:"meta"`
	Checksum  string `json:"checksum"`
}

// IsMarkdown reports whether the entry is a readable post.
func (e Entry) IsMarkdown() bool {
	return e.Extension == ".md"
}

// Post is the loaded content of a markdown entry.
type Post struct {
	Slug    string            `json:"slug"`
	Title   string            `json:"title"`
	Date    string            `json:"date"`
	Tags    []string          `json:"tags"`
	Excerpt string            `json:"excerpt"`
	Content string            `json:"content"`
	Images  map[string]string `json:"images"`
}
