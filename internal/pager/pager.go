// Package pager implements the full-screen reader used by less.
package pager

import (
	"context"
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/keys"
	"github.com/starford/termblog/internal/terminal"
)

// Document is something the pager can show. Render is called again after
// every resize with the new width.
type Document struct {
	Title  string
	Render func(cols int) []string
}

// Run takes over the screen and shows doc until the reader quits, the
// events channel closes or ctx is cancelled. The main screen is restored
// in every case.
func Run(ctx context.Context, t terminal.Terminal, events <-chan terminal.Event, doc Document) error {
	v := &view{term: t, doc: doc}
	v.layout()

	t.Write(ansi.AltScreen + ansi.HideCursor)
	defer t.Write(ansi.ShowCursor + ansi.MainScreen)
	v.draw()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Resize {
				v.layout()
				v.draw()
				continue
			}
			for _, k := range keys.Decode(ev.Input) {
				if v.handle(k) {
					return nil
				}
			}
			v.draw()
		}
	}
}

type view struct {
	term   terminal.Terminal
	doc    Document
	lines  []string
	offset int
	cols   int
	rows   int
}

func (v *view) layout() {
	v.cols, v.rows = terminal.Cols(v.term), terminal.Rows(v.term)
	v.lines = v.doc.Render(v.cols)
	v.clamp()
}

// page is the number of content rows; the last row holds the status line.
func (v *view) page() int { return max(v.rows-1, 1) }

func (v *view) maxOffset() int { return max(len(v.lines)-v.page(), 0) }

func (v *view) clamp() {
	v.offset = min(max(v.offset, 0), v.maxOffset())
}

// handle applies one key and reports whether the pager should close.
func (v *view) handle(k keys.Key) bool {
	page := v.page()
	switch k.Kind {
	case keys.Escape:
		return true
	case keys.Down, keys.Enter:
		v.offset++
	case keys.Up:
		v.offset--
	case keys.PageDown:
		v.offset += page
	case keys.PageUp:
		v.offset -= page
	case keys.CtrlD:
		v.offset += page / 2
	case keys.CtrlU:
		v.offset -= page / 2
	case keys.Home:
		v.offset = 0
	case keys.End:
		v.offset = v.maxOffset()
	case keys.Text:
		for _, r := range k.Text {
			if v.handleRune(r) {
				return true
			}
		}
	}
	v.clamp()
	return false
}

func (v *view) handleRune(r rune) bool {
	page := v.page()
	switch r {
	case 'q', 'Q':
		return true
	case 'j':
		v.offset++
	case 'k':
		v.offset--
	case ' ', 'f':
		v.offset += page
	case 'b':
		v.offset -= page
	case 'd':
		v.offset += page / 2
	case 'u':
		v.offset -= page / 2
	case 'g':
		v.offset = 0
	case 'G':
		v.offset = v.maxOffset()
	}
	v.clamp()
	return false
}

func (v *view) draw() {
	var b strings.Builder
	b.WriteString(ansi.Home)
	page := v.page()
	for i := 0; i < page; i++ {
		b.WriteString("\x1b[2K")
		if n := v.offset + i; n < len(v.lines) {
			b.WriteString(xansi.Truncate(v.lines[n], v.cols, ""))
			b.WriteString(ansi.Reset)
		}
		b.WriteString("\r\n")
	}
	b.WriteString("\x1b[2K")
	b.WriteString(v.status())
	v.term.Write(b.String())
}

func (v *view) status() string {
	total := len(v.lines)
	first := min(v.offset+1, total)
	last := min(v.offset+v.page(), total)
	pct := 100
	if total > 0 {
		pct = last * 100 / total
	}
	s := fmt.Sprintf(" %s  lines %d-%d/%d  %d%%  (q to quit) ", v.doc.Title, first, last, total, pct)
	return ansi.Inverse + xansi.Truncate(s, v.cols, "") + ansi.NoInverse + ansi.Reset
}
