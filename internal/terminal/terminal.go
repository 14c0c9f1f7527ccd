// Package terminal defines the display a shell session writes to.
package terminal

import "strings"

// Terminal accepts text with embedded escape sequences and reports its
// size in cells. Implementations must be safe for concurrent use.
type Terminal interface {
	Write(s string)
	Size() (cols, rows int)
}

// Writeln writes s followed by "\r\n".
func Writeln(t Terminal, s string) {
	t.Write(s + "\r\n")
}

// WriteLines writes each line followed by "\r\n".
func WriteLines(t Terminal, lines ...string) {
	if len(lines) == 0 {
		return
	}
	t.Write(strings.Join(lines, "\r\n") + "\r\n")
}

// Cols returns the terminal width, never less than one.
func Cols(t Terminal) int {
	c, _ := t.Size()
	return max(c, 1)
}

// Rows returns the terminal height, never less than one.
func Rows(t Terminal) int {
	_, r := t.Size()
	return max(r, 1)
}

// Event is delivered to a running command: a chunk of raw input, or a
// notice that the terminal was resized.
type Event struct {
	Input  string
	Resize bool
}
