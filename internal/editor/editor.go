// Package editor implements the interactive line editor of a shell
// session: echo, history, tab completion and input interception.
package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/keys"
	"github.com/starford/termblog/internal/terminal"
)

// Completer proposes completions for the buffer. It returns the byte
// offset at which the fragment being completed starts and the sorted,
// de-duplicated candidates that could replace it.
type Completer interface {
	Complete(buffer string) (start int, matches []string)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(buffer string) (int, []string)

// Complete implements Completer.
func (f CompleterFunc) Complete(buffer string) (int, []string) { return f(buffer) }

// Option configures an Editor.
type Option func(*Editor)

// WithPrompt sets the prompt function. It is called on every redraw so the
// prompt can follow the working directory.
func WithPrompt(fn func() string) Option {
	return func(e *Editor) { e.prompt = fn }
}

// WithCompleter enables tab completion.
func WithCompleter(c Completer) Option {
	return func(e *Editor) { e.completer = c }
}

// WithSubmit sets the callback for entered lines. The callback owns the
// prompt: the editor does not redraw it after a submitted line.
func WithSubmit(fn func(line string)) Option {
	return func(e *Editor) { e.submit = fn }
}

// WithEOF sets the callback for Ctrl+D on an empty line.
func WithEOF(fn func()) Option {
	return func(e *Editor) { e.eof = fn }
}

type completion struct {
	matches  []string
	index    int
	original string
	start    int
}

// Editor is not safe for concurrent use; a session feeds it from one goroutine.
type Editor struct {
	term      terminal.Terminal
	prompt    func() string
	completer Completer
	submit    func(string)
	eof       func()

	buf       string
	history   []string
	histIdx   int
	tab       *completion
	intercept func(string)
}

// New returns an Editor writing to t.
func New(t terminal.Terminal, opts ...Option) *Editor {
	e := &Editor{
		term:    t,
		prompt:  func() string { return "$ " },
		histIdx: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buffer returns the current input.
func (e *Editor) Buffer() string { return e.buf }

// History returns the entered lines, oldest first.
func (e *Editor) History() []string { return e.history }

// ShowPrompt writes the prompt.
func (e *Editor) ShowPrompt() { e.term.Write(e.prompt()) }

// Intercept routes all further input verbatim to fn until Release.
func (e *Editor) Intercept(fn func(data string)) { e.intercept = fn }

// Release returns input to the editor.
func (e *Editor) Release() { e.intercept = nil }

// Intercepted reports whether input is currently routed elsewhere.
func (e *Editor) Intercepted() bool { return e.intercept != nil }

// Execute shows line at the prompt and enters it as if it had been typed.
func (e *Editor) Execute(line string) {
	e.buf = line
	e.tab = nil
	e.redraw()
	e.enter()
}

// Feed processes a chunk of raw terminal input.
func (e *Editor) Feed(data string) {
	if e.intercept != nil {
		e.intercept(data)
		return
	}
	ks := keys.Decode(data)
	for i, k := range ks {
		e.handle(k)
		if e.intercept != nil && i+1 < len(ks) {
			// A submitted line claimed the input; hand it the rest.
			var rest strings.Builder
			for _, r := range ks[i+1:] {
				rest.WriteString(r.Raw)
			}
			e.intercept(rest.String())
			return
		}
	}
}

func (e *Editor) handle(k keys.Key) {
	switch k.Kind {
	case keys.Text:
		e.buf += k.Text
		e.term.Write(k.Text)
		e.tab = nil
	case keys.Enter:
		e.enter()
	case keys.Tab:
		e.completeTab()
	case keys.Backspace:
		if e.buf == "" {
			return
		}
		r, size := utf8.DecodeLastRuneInString(e.buf)
		e.buf = e.buf[:len(e.buf)-size]
		w := max(ansi.VisibleLength(string(r)), 1)
		e.term.Write(strings.Repeat("\b", w) + strings.Repeat(" ", w) + strings.Repeat("\b", w))
		e.tab = nil
	case keys.Up:
		if len(e.history) == 0 {
			return
		}
		if e.histIdx == -1 {
			e.histIdx = len(e.history) - 1
		} else if e.histIdx > 0 {
			e.histIdx--
		}
		e.buf = e.history[e.histIdx]
		e.tab = nil
		e.redraw()
	case keys.Down:
		if e.histIdx == -1 {
			return
		}
		if e.histIdx < len(e.history)-1 {
			e.histIdx++
			e.buf = e.history[e.histIdx]
		} else {
			e.histIdx = -1
			e.buf = ""
		}
		e.tab = nil
		e.redraw()
	case keys.CtrlC:
		e.term.Write("^C\r\n")
		e.buf = ""
		e.tab = nil
		e.ShowPrompt()
	case keys.CtrlL:
		e.term.Write(ansi.ClearScreen)
		e.buf = ""
		e.tab = nil
		e.ShowPrompt()
	case keys.CtrlU:
		e.buf = ""
		e.tab = nil
		e.redraw()
	case keys.CtrlD:
		if e.buf == "" && e.eof != nil {
			e.eof()
		}
	}
}

func (e *Editor) redraw() {
	e.term.Write(ansi.ClearLine + e.prompt() + e.buf)
}

func (e *Editor) enter() {
	e.term.Write("\r\n")
	line := strings.TrimSpace(e.buf)
	e.buf = ""
	e.tab = nil
	if line == "" {
		e.ShowPrompt()
		return
	}
	e.history = append(e.history, line)
	e.histIdx = -1
	if e.submit == nil {
		e.ShowPrompt()
		return
	}
	e.submit(line)
}

func (e *Editor) completeTab() {
	if e.completer == nil {
		return
	}
	if st := e.tab; st != nil && st.original == e.buf {
		st.index = (st.index + 1) % len(st.matches)
		e.buf = e.buf[:st.start] + st.matches[st.index]
		e.redraw()
		st.original = e.buf
		return
	}

	e.tab = nil
	start, matches := e.completer.Complete(e.buf)
	switch len(matches) {
	case 0:
		return
	case 1:
		e.buf = e.buf[:start] + matches[0]
		e.redraw()
		return
	}

	e.term.Write("\r\n" + columns(matches, terminal.Cols(e.term)))
	e.term.Write(e.prompt() + e.buf)
	e.tab = &completion{matches: matches, original: e.buf, start: start}
}

// columns lays matches out in rows of equal-width columns.
func columns(matches []string, width int) string {
	longest := 0
	for _, m := range matches {
		longest = max(longest, ansi.VisibleLength(m))
	}
	colWidth := longest + 4
	perRow := max(1, width/colWidth)

	var b strings.Builder
	for i := 0; i < len(matches); i += perRow {
		end := min(i+perRow, len(matches))
		for _, m := range matches[i:end] {
			b.WriteString(ansi.PadRight(ansi.BrightCyan+m+ansi.Reset, colWidth))
		}
		b.WriteString("\r\n")
	}
	return b.String()
}
