package ansi

import "strings"

// Wrap breaks s into lines of at most maxWidth visible cells at whitespace.
//
// Style (SGR) and hyperlink (OSC-8) state that is active at a break is
// closed at the end of the line and reopened at the start of the next, so
// every line can be written on its own. Whitespace at a break is dropped.
// A word wider than maxWidth is placed alone on a line and never split.
func Wrap(s string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	if VisibleLength(s) <= maxWidth {
		return []string{s}
	}
	w := &wrapper{max: maxWidth}
	for _, t := range Tokenize(s) {
		if t.Kind == Space {
			w.space(t)
		} else {
			w.word(t)
		}
	}
	return w.done()
}

type wrapper struct {
	max   int
	lines []string

	prefix  string
	parts   []Token
	width   int
	hasWord bool

	link   string // OSC-8 open sequence, empty when no link is active
	styles []string
}

func (w *wrapper) space(t Token) {
	if !w.hasWord {
		// Indentation survives on the first line only.
		if len(w.lines) == 0 && w.width+t.Width <= w.max {
			w.parts = append(w.parts, t)
			w.width += t.Width
		}
		return
	}
	if w.width+t.Width > w.max {
		w.breakLine()
		return
	}
	w.parts = append(w.parts, t)
	w.width += t.Width
}

func (w *wrapper) word(t Token) {
	if t.Width > 0 && w.width+t.Width > w.max {
		if w.hasWord {
			w.breakLine()
		} else {
			w.dropSpaces()
		}
	}
	w.parts = append(w.parts, t)
	w.width += t.Width
	if t.Width > 0 {
		w.hasWord = true
	}
	w.track(t.Text)
}

func (w *wrapper) dropSpaces() {
	kept := w.parts[:0]
	for _, p := range w.parts {
		if p.Kind != Space {
			kept = append(kept, p)
		}
	}
	w.parts = kept
	w.width = 0
}

// track updates the active link and style state from the escapes in text.
func (w *wrapper) track(text string) {
	escapes(text, func(seq string) {
		if link, ok := parseLink(seq); ok {
			if link == "" {
				w.link = ""
			} else {
				w.link = seq
			}
			return
		}
		params, ok := parseSGR(seq)
		if !ok {
			return
		}
		switch {
		case params == "" || params == "0":
			w.styles = nil
		case strings.HasPrefix(params, "0;"):
			w.styles = []string{seq}
		default:
			w.styles = append(w.styles, seq)
		}
	})
}

func (w *wrapper) text() string {
	var b strings.Builder
	b.WriteString(w.prefix)
	for _, p := range w.parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (w *wrapper) breakLine() {
	for len(w.parts) > 0 && w.parts[len(w.parts)-1].Kind == Space {
		w.parts = w.parts[:len(w.parts)-1]
	}
	line := w.text()
	if w.link != "" {
		line += linkClose
	}
	if len(w.styles) > 0 {
		line += Reset
	}
	w.lines = append(w.lines, line)

	w.prefix = strings.Join(w.styles, "") + w.link
	w.parts = w.parts[:0]
	w.width = 0
	w.hasWord = false
}

func (w *wrapper) done() []string {
	switch {
	case w.hasWord:
		w.lines = append(w.lines, w.text())
	case len(w.parts) > 0:
		// Only whitespace or escapes remain; keep the escapes on the
		// previous line instead of emitting a blank one.
		var tail strings.Builder
		for _, p := range w.parts {
			if p.Kind == Word {
				tail.WriteString(p.Text)
			}
		}
		if len(w.lines) == 0 {
			w.lines = append(w.lines, w.prefix+tail.String())
		} else {
			w.lines[len(w.lines)-1] += tail.String()
		}
	}
	if len(w.lines) == 0 {
		// Whitespace wider than the line still occupies one line.
		w.lines = append(w.lines, "")
	}
	return w.lines
}

// parseLink reports whether seq is an OSC-8 sequence and returns its URI.
func parseLink(seq string) (string, bool) {
	if !strings.HasPrefix(seq, linkOpenPrefix) {
		return "", false
	}
	body := strings.TrimPrefix(seq, linkOpenPrefix)
	body = strings.TrimSuffix(strings.TrimSuffix(body, "\x07"), "\x1b\\")
	_, uri, ok := strings.Cut(body, ";")
	if !ok {
		return "", false
	}
	return uri, true
}

// parseSGR reports whether seq is a Select Graphic Rendition sequence and
// returns its parameter bytes.
func parseSGR(seq string) (string, bool) {
	if len(seq) < 3 || seq[1] != '[' || seq[len(seq)-1] != 'm' {
		return "", false
	}
	params := seq[2 : len(seq)-1]
	for i := 0; i < len(params); i++ {
		if params[i] < 0x30 || params[i] > 0x3f {
			return "", false
		}
	}
	return params, true
}
