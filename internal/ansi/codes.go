// Package ansi measures, tokenizes, and wraps text carrying terminal escape
// sequences, and holds the SGR and OSC-8 vocabulary used across the shell.
package ansi

import "strings"

// SGR codes.
const (
	Reset     = "\x1b[0m"
	Bold      = "\x1b[1m"
	Dim       = "\x1b[2m"
	Italic    = "\x1b[3m"
	Underline = "\x1b[4m"
	Inverse   = "\x1b[7m"
	NoInverse = "\x1b[27m"

	Black   = "\x1b[30m"
	Red     = "\x1b[31m"
	Green   = "\x1b[32m"
	Yellow  = "\x1b[33m"
	Blue    = "\x1b[34m"
	Magenta = "\x1b[35m"
	Cyan    = "\x1b[36m"
	White   = "\x1b[37m"
	Gray    = "\x1b[90m"

	BrightRed     = "\x1b[91m"
	BrightGreen   = "\x1b[92m"
	BrightYellow  = "\x1b[93m"
	BrightBlue    = "\x1b[94m"
	BrightMagenta = "\x1b[95m"
	BrightCyan    = "\x1b[96m"
	BrightWhite   = "\x1b[97m"
)

// Screen and cursor control.
const (
	ClearLine   = "\x1b[2K\r"
	ClearScreen = "\x1b[H\x1b[2J\x1b[3J"
	HideCursor  = "\x1b[?25l"
	ShowCursor  = "\x1b[?25h"
	AltScreen   = "\x1b[?1049h"
	MainScreen  = "\x1b[?1049l"
	Home        = "\x1b[H"
)

// ImageMarker prefixes an iTerm2 inline image sequence.
const ImageMarker = "\x1b]1337;File="

const (
	linkOpenPrefix = "\x1b]8;"
	linkClose      = "\x1b]8;;\x1b\\"
)

// Link wraps text in an OSC-8 hyperlink to url.
func Link(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + linkClose
}

// Color wraps text in code and a reset.
func Color(code, text string) string {
	return code + text + Reset
}

// Error formats an error message.
func Error(text string) string { return Red + text + Reset }

// Faint formats secondary text.
func Faint(text string) string { return Dim + text + Reset }

// Header formats a section title.
func Header(text string) string { return Bold + Cyan + text + Reset }

// Rule returns a dim horizontal rule of width cells.
func Rule(width int) string {
	if width < 0 {
		width = 0
	}
	return Dim + strings.Repeat("─", width) + Reset
}

// PadRight pads s with spaces to width visible cells.
func PadRight(s string, width int) string {
	if n := VisibleLength(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
