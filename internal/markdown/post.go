package markdown

import (
	"strings"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/models"
)

// PostOptions controls RenderPost.
type PostOptions struct {
	// Path is shown in the header. When empty it is derived from the date
	// and slug.
	Path string
	// Cols is the terminal width.
	Cols int
	// Code colours fenced code blocks; nil keeps them plain.
	Code *CodeColorer
	// NoHeader drops the file header and footer rules.
	NoHeader bool
}

// RenderPost formats a post bat-style: a header with the file name and
// metadata, the highlighted and wrapped body, and a footer rule. Lines are
// joined with "\r\n".
func RenderPost(p *models.Post, opts PostOptions) string {
	contentWidth := max(opts.Cols, 20)
	headerWidth := max(opts.Cols, 40)

	out := []string{""}
	if !opts.NoHeader {
		path := strings.TrimPrefix(opts.Path, "/")
		if path == "" {
			path = "posts/" + p.Slug + ".md"
			if parts := strings.Split(p.Date, "-"); len(parts) == 3 {
				path = "posts/" + parts[0] + "/" + parts[1] + "/" + parts[2] + "-" + p.Slug + ".md"
			}
		}
		bar := ansi.Dim + "│" + ansi.Reset
		out = append(out,
			ansi.Rule(headerWidth),
			bar+" "+ansi.Bold+ansi.BrightCyan+"File: "+path+ansi.Reset,
			bar+" "+ansi.Dim+p.Date+" • "+strings.Join(p.Tags, ", ")+ansi.Reset,
			ansi.Rule(headerWidth),
		)
	}

	h := NewHighlighter(opts.Code)
	for _, line := range strings.Split(p.Content, "\r\n") {
		rendered := h.Line(line)
		if strings.Contains(line, ansi.ImageMarker) {
			out = append(out, rendered)
			continue
		}
		// Headings carry a leading blank line.
		for _, physical := range strings.Split(rendered, "\r\n") {
			out = append(out, ansi.Wrap(physical, contentWidth)...)
		}
	}

	if !opts.NoHeader {
		out = append(out, ansi.Rule(headerWidth))
	}
	out = append(out, "")
	return strings.Join(out, "\r\n")
}
