package pager

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/starford/termblog/internal/markdown"
	"github.com/starford/termblog/internal/models"
)

// PostDocument renders a post with glamour in the given standard style.
// When glamour fails the bat-style renderer is used instead.
func PostDocument(p *models.Post, style string, code *markdown.CodeColorer) Document {
	if style == "" {
		style = "dark"
	}
	source := postSource(p)
	return Document{
		Title: p.Slug,
		Render: func(cols int) []string {
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(max(20, cols-4)),
				glamour.WithPreservedNewLines(),
			)
			if err == nil {
				if out, renderErr := r.Render(source); renderErr == nil {
					return splitLines(out)
				}
			}
			return splitLines(markdown.RenderPost(p, markdown.PostOptions{Cols: cols, Code: code}))
		},
	}
}

func postSource(p *models.Post) string {
	var b strings.Builder
	b.WriteString("# " + p.Title + "\n\n")
	meta := p.Date
	if len(p.Tags) > 0 {
		meta += " · " + strings.Join(p.Tags, ", ")
	}
	b.WriteString("*" + meta + "*\n\n")
	b.WriteString(strings.ReplaceAll(p.Content, "\r\n", "\n"))
	b.WriteString("\n")
	return b.String()
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
