package shell

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/models"
	"github.com/starford/termblog/internal/terminal"
)

const maxGrepMatches = 50

// Match is one matching line of a post.
type Match struct {
	Entry  models.Entry
	LineNo int // 1-based
	Line   string
	Before []string
	After  []string
	Index  int // byte offset of the match in Line
	Length int // byte length of the match
}

// indexFold is strings.Index ignoring case.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Grep finds lines containing pattern, ignoring case, with one line of
// context on each side. It stops after limit matches and reports whether
// more were left.
func (s *Shell) Grep(inv *Invocation, pattern string, limit int) ([]Match, bool, error) {
	candidates := inv.Catalog.Posts()
	// The index folds ASCII case only, so non-ASCII patterns scan everything.
	if s.search != nil && isASCII(pattern) {
		slugs, err := s.search.Contains(pattern)
		if err != nil {
			s.logger.Warn("grep: index search failed", slog.String("error", err.Error()))
		} else {
			keep := make(map[string]struct{}, len(slugs))
			for _, slug := range slugs {
				keep[slug] = struct{}{}
			}
			filtered := candidates[:0:0]
			for _, e := range candidates {
				if _, ok := keep[e.Slug]; ok {
					filtered = append(filtered, e)
				}
			}
			candidates = filtered
		}
	}

	var out []Match
	for _, e := range candidates {
		post, err := inv.Catalog.ReadPost(e)
		if err != nil {
			return out, false, err
		}
		lines := strings.Split(post.Content, "\r\n")
		for i, line := range lines {
			idx := indexFold(line, pattern)
			if idx < 0 {
				continue
			}
			if len(out) == limit {
				return out, true, nil
			}
			m := Match{Entry: e, LineNo: i + 1, Line: line, Index: idx, Length: len(pattern)}
			if i > 0 {
				m.Before = lines[i-1 : i]
			}
			if i+1 < len(lines) {
				m.After = lines[i+1 : i+2]
			}
			out = append(out, m)
		}
	}
	return out, false, nil
}

func runGrep(_ context.Context, inv *Invocation) error {
	pattern := strings.Join(inv.Args, " ")
	if pattern == "" {
		terminal.WriteLines(inv.Term, "",
			ansi.Error("usage: grep <pattern>"),
			ansi.Faint("  Try: grep terminal"),
			"")
		return nil
	}
	matches, more, err := inv.Shell.Grep(inv, pattern, maxGrepMatches)
	if err != nil {
		return err
	}
	inv.Term.Write(formatGrep(matches, more))
	return nil
}

func formatGrep(matches []Match, more bool) string {
	if len(matches) == 0 {
		return "\r\n" + ansi.Faint("No matches found") + "\r\n"
	}

	bar := ansi.Faint("│")
	var out []string
	current := ""
	for i, m := range matches {
		path := strings.TrimPrefix(m.Entry.Path, "/")
		if path != current {
			if current != "" {
				out = append(out, "")
			}
			current = path
			out = append(out, "", ansi.Bold+ansi.BrightCyan+path+ansi.Reset, ansi.Rule(80))
		}

		width := len(strconv.Itoa(m.LineNo + len(m.After)))
		num := func(n int) string { return fmt.Sprintf("%*d", width, n) }

		for j, l := range m.Before {
			out = append(out, ansi.Faint(num(m.LineNo-len(m.Before)+j))+" "+bar+" "+l)
		}
		highlighted := m.Line[:m.Index] +
			ansi.Bold + ansi.BrightYellow + m.Line[m.Index:m.Index+m.Length] + ansi.Reset +
			m.Line[m.Index+m.Length:]
		out = append(out, ansi.BrightYellow+num(m.LineNo)+ansi.Reset+" "+bar+" "+highlighted)

		pad := ansi.VisibleLength(m.Line[:m.Index])
		carets := max(ansi.VisibleLength(m.Line[m.Index:m.Index+m.Length]), 1)
		out = append(out, ansi.Dim+strings.Repeat(" ", width+1)+"│"+ansi.Reset+" "+
			strings.Repeat(" ", pad)+ansi.BrightRed+strings.Repeat("^", carets)+ansi.Reset)

		for j, l := range m.After {
			out = append(out, ansi.Faint(num(m.LineNo+j+1))+" "+bar+" "+l)
		}

		if i+1 < len(matches) && matches[i+1].Entry.Path == m.Entry.Path {
			out = append(out, ansi.Faint("  "+strings.Repeat("─", 78)))
		}
	}

	noun := "matches"
	if len(matches) == 1 {
		noun = "match"
	}
	summary := ansi.Dim + "Found " + ansi.Reset + ansi.BrightGreen + strconv.Itoa(len(matches)) + ansi.Reset + ansi.Faint(" "+noun)
	if more {
		summary += ansi.Faint(fmt.Sprintf(" (showing the first %d)", maxGrepMatches))
	}
	out = append(out, "", summary, "")
	return strings.Join(out, "\r\n")
}
