// Package testutil provides shared test helpers for content trees and terminals.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/starford/termblog/internal/ansi"
)

// Terminal records everything written to it.
type Terminal struct {
	mu   sync.Mutex
	out  strings.Builder
	cols int
	rows int
}

// NewTerminal returns a recording terminal of the given size.
func NewTerminal(cols, rows int) *Terminal {
	return &Terminal{cols: cols, rows: rows}
}

// Write implements terminal.Terminal.
func (t *Terminal) Write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.WriteString(s)
}

// Size implements terminal.Terminal.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// Resize changes the reported size.
func (t *Terminal) Resize(cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols, t.rows = cols, rows
}

// Output returns everything written so far.
func (t *Terminal) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.String()
}

// Text returns the output with escape sequences removed.
func (t *Terminal) Text() string {
	return ansi.Strip(t.Output())
}

// Reset discards recorded output.
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.Reset()
}

// Post returns a markdown file with frontmatter.
func Post(title, date string, tags []string, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + title + "\n")
	if date != "" {
		b.WriteString("date: " + date + "\n")
	}
	if len(tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range tags {
			b.WriteString("  - " + tag + "\n")
		}
	}
	b.WriteString("excerpt: About " + strings.ToLower(title) + "\n")
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}

// Blog returns a small content tree used across tests.
func Blog() map[string]string {
	return map[string]string{
		"posts/2016/04/11-building-a-blog.md": Post("Building a blog", "2016-04-11", []string{"meta", "webdev"},
			"# Building a blog\n\nI built a **blog** that runs in a terminal.\n\n![cert](freesslcerts.png)\n\nIt uses `xterm.js` and Go.\n"),
		"posts/2016/04/building-a-blog/freesslcerts.png": "png",
		"posts/2024/01/02-hello-world.md": Post("Hello world", "2024-01-02", []string{"meta"},
			"Hello there.\n\n## Setup\n\n```go\nfmt.Println(\"hello\")\n```\n"),
		"posts/2024/03/05-vim-tips.md": Post("Vim tips", "", []string{"vim", "productivity"},
			"Use :set number to show line numbers.\n\n- one\n- two\n"),
	}
}

// WriteContent writes files (slash-separated paths relative to the root)
// into a temporary directory and returns it.
func WriteContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
