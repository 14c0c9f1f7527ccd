package ansi

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const esc = 0x1b

// TokenKind classifies a token.
type TokenKind int

const (
	// Word is a run of visible characters with its attached escapes, or a
	// run of escapes with no visible text at all (zero width).
	Word TokenKind = iota
	// Space is a whitespace run. It never carries escapes.
	Space
)

// Token is a slice of the input text.
type Token struct {
	Kind  TokenKind
	Text  string
	Width int
}

// escapeLen returns the byte length of the escape sequence starting at
// s[i], which must be ESC. Unterminated sequences count as two bytes, a
// trailing ESC as one.
func escapeLen(s string, i int) int {
	if i+1 >= len(s) {
		return 1
	}
	switch s[i+1] {
	case '[':
		j := i + 2
		for j < len(s) && s[j] >= 0x30 && s[j] <= 0x3f {
			j++
		}
		for j < len(s) && s[j] >= 0x20 && s[j] <= 0x2f {
			j++
		}
		if j < len(s) && s[j] >= 0x40 && s[j] <= 0x7e {
			return j + 1 - i
		}
		return 2
	case ']':
		for j := i + 2; j < len(s); j++ {
			if s[j] == 0x07 {
				return j + 1 - i
			}
			if s[j] == esc && j+1 < len(s) && s[j+1] == '\\' {
				return j + 2 - i
			}
		}
		return 2
	default:
		if s[i+1] >= 0x20 && s[i+1] < 0x7f {
			return 2
		}
		return 1
	}
}

func runeWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	if r < 0x20 || r == 0x7f {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// VisibleLength returns the number of terminal cells s occupies once every
// CSI, OSC, and stray ESC sequence is removed.
func VisibleLength(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] == esc {
			i += escapeLen(s, i)
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		n += runeWidth(r)
		i += size
	}
	return n
}

// Strip removes every escape sequence from s.
func Strip(s string) string {
	if strings.IndexByte(s, esc) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == esc {
			i += escapeLen(s, i)
			continue
		}
		j := strings.IndexByte(s[i:], esc)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+j])
		i += j
	}
	return b.String()
}

// Tokenize splits s into whitespace and word tokens. Escapes that follow a
// visible character stay with that word; escapes that follow whitespace (or
// open the string) prefix the next word. Joining the token texts yields s.
func Tokenize(s string) []Token {
	const none TokenKind = -1
	var (
		toks    []Token
		kind    = none
		start   int
		width   int
		pending = -1
	)
	flush := func(end int) {
		if kind != none && end > start {
			toks = append(toks, Token{Kind: kind, Text: s[start:end], Width: width})
		}
		kind, width = none, 0
	}

	for i := 0; i < len(s); {
		if s[i] == esc {
			if kind == Space {
				flush(i)
			}
			if kind == none && pending < 0 {
				pending = i
			}
			i += escapeLen(s, i)
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			if kind == Word {
				flush(i)
			}
			if pending >= 0 {
				toks = append(toks, Token{Kind: Word, Text: s[pending:i]})
				pending = -1
			}
			if kind == none {
				kind, start = Space, i
			}
		} else {
			if kind == Space {
				flush(i)
			}
			if kind == none {
				kind, start = Word, i
				if pending >= 0 {
					start, pending = pending, -1
				}
			}
		}
		width += runeWidth(r)
		i += size
	}
	flush(len(s))
	if pending >= 0 {
		toks = append(toks, Token{Kind: Word, Text: s[pending:]})
	}
	return toks
}

// escapes calls fn for every escape sequence in s.
func escapes(s string, fn func(seq string)) {
	for i := 0; i < len(s); {
		if s[i] != esc {
			i++
			continue
		}
		n := escapeLen(s, i)
		fn(s[i : i+n])
		i += n
	}
}
