// Package markdown renders markdown source as ANSI-decorated terminal text.
package markdown

import (
	"regexp"
	"strings"

	"github.com/starford/termblog/internal/ansi"
)

const ruleWidth = 40

var (
	setextRe     = regexp.MustCompile(`^(={3,}|-{3,})$`)
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	hrRe         = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})\s*$`)
	blockquoteRe = regexp.MustCompile(`^(>\s?)(.*)$`)
	bulletRe     = regexp.MustCompile(`^(\s*)([*-])\s(.*)$`)
	numberedRe   = regexp.MustCompile(`^(\s*)(\d+)\.\s(.*)$`)
)

// Highlighter converts markdown one line at a time. It remembers whether
// it is inside a fenced code block, so a post must be fed through a single
// Highlighter in order.
type Highlighter struct {
	code *CodeColorer

	inCode bool
	lang   string
}

// NewHighlighter returns a Highlighter. code may be nil.
func NewHighlighter(code *CodeColorer) *Highlighter {
	return &Highlighter{code: code}
}

// InCodeBlock reports whether the last line left a fence open.
func (h *Highlighter) InCodeBlock() bool { return h.inCode }

// Lang returns the language tag of the open fence.
func (h *Highlighter) Lang() string { return h.lang }

// Line renders one source line. Headings come back prefixed with "\r\n".
func (h *Highlighter) Line(line string) string {
	if strings.Contains(line, ansi.ImageMarker) {
		return line
	}

	if strings.HasPrefix(line, "```") {
		if !h.inCode {
			h.inCode = true
			h.lang = strings.TrimSpace(line[3:])
			suffix := ""
			if h.lang != "" {
				suffix = " " + h.lang
			}
			return ansi.Dim + strings.Repeat("─", ruleWidth) + suffix + ansi.Reset
		}
		h.inCode = false
		h.lang = ""
		return ansi.Rule(ruleWidth)
	}

	if h.inCode {
		if colored, ok := h.code.Line(h.lang, line); ok {
			return "  " + colored + ansi.Reset
		}
		return "  " + ansi.Yellow + line + ansi.Reset
	}

	if setextRe.MatchString(line) {
		return ansi.Dim + line + ansi.Reset
	}

	if m := headingRe.FindStringSubmatch(line); m != nil {
		text := RenderInline(m[2])
		if len(m[1]) <= 2 {
			return "\r\n" + ansi.Bold + ansi.Underline + ansi.BrightWhite + text + ansi.Reset
		}
		return "\r\n" + ansi.Bold + ansi.BrightYellow + text + ansi.Reset
	}

	if hrRe.MatchString(line) {
		return ansi.Rule(ruleWidth)
	}

	if m := blockquoteRe.FindStringSubmatch(line); m != nil {
		return ansi.Dim + ansi.BrightCyan + "▌" + ansi.Reset + " " + ansi.Italic + RenderInline(m[2]) + ansi.Reset
	}

	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return m[1] + ansi.BrightCyan + "•" + ansi.Reset + " " + RenderInline(m[3])
	}

	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return m[1] + ansi.BrightCyan + m[2] + "." + ansi.Reset + " " + RenderInline(m[3])
	}

	return RenderInline(line)
}
