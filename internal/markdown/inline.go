package markdown

import (
	"strings"

	"github.com/starford/termblog/internal/ansi"
)

// RenderInline renders inline markdown spans in a single left-to-right
// scan. At each position it tries, in order: code, image, link, bold and
// italic. Markers without a closing counterpart are copied literally.
func RenderInline(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	for i := 0; i < len(text); {
		c := text[i]
		switch c {
		case '`':
			if end := strings.IndexByte(text[i+1:], '`'); end >= 0 {
				end += i + 1
				b.WriteString(ansi.Yellow + text[i+1:end] + ansi.Reset)
				i = end + 1
				continue
			}
		case '!':
			if i+1 < len(text) && text[i+1] == '[' {
				if alt, _, next, ok := bracketed(text, i+1); ok {
					if alt != "" {
						b.WriteString(ansi.Dim + "[" + alt + "]" + ansi.Reset)
					}
					i = next
					continue
				}
			}
		case '[':
			if label, url, next, ok := bracketed(text, i); ok {
				b.WriteString(ansi.Link(url, ansi.Underline+ansi.BrightCyan+label+ansi.Reset))
				i = next
				continue
			}
		case '*', '_':
			if i+1 < len(text) && text[i+1] == c {
				marker := text[i : i+2]
				if end := strings.Index(text[i+2:], marker); end >= 0 {
					end += i + 2
					b.WriteString(ansi.Bold + RenderInline(text[i+2:end]) + ansi.Reset)
					i = end + 2
					continue
				}
			}
			// snake_case stays intact.
			if c == '_' && i > 0 && isWordByte(text[i-1]) {
				break
			}
			if end := strings.IndexByte(text[i+1:], c); end > 0 {
				end += i + 1
				b.WriteString(ansi.Italic + RenderInline(text[i+1:end]) + ansi.Reset)
				i = end + 1
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// bracketed parses "[label](target)" starting at text[i] == '['. next is
// the index just past the closing parenthesis.
func bracketed(text string, i int) (label, target string, next int, ok bool) {
	labelEnd := strings.IndexByte(text[i+1:], ']')
	if labelEnd < 0 {
		return "", "", 0, false
	}
	labelEnd += i + 1
	if labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
		return "", "", 0, false
	}
	targetEnd := strings.IndexByte(text[labelEnd+2:], ')')
	if targetEnd < 0 {
		return "", "", 0, false
	}
	targetEnd += labelEnd + 2
	return text[i+1 : labelEnd], text[labelEnd+2 : targetEnd], targetEnd + 1, true
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
