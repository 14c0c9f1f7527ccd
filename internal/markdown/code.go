package markdown

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// CodeColorer colours fenced code lines for languages chroma knows.
// A nil *CodeColorer colours nothing.
type CodeColorer struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewCodeColorer returns a colorer using the named chroma style.
// Unknown style names fall back to chroma's default style.
func NewCodeColorer(style string) *CodeColorer {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}
	return &CodeColorer{style: s, formatter: f}
}

// Line colours one line of code in lang. ok is false when lang is unknown
// or highlighting failed; the caller falls back to plain colouring.
func (c *CodeColorer) Line(lang, line string) (out string, ok bool) {
	if c == nil || lang == "" {
		return "", false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	it, err := lexer.Tokenise(nil, line)
	if err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := c.formatter.Format(&buf, c.style, it); err != nil {
		return "", false
	}
	// The lexer appends a newline to its input.
	return strings.ReplaceAll(buf.String(), "\n", ""), true
}
