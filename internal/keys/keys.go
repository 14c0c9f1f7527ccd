// Package keys decodes the raw byte stream a terminal sends into keys.
package keys

import "unicode/utf8"

// Kind identifies a key.
type Kind int

const (
	Unknown Kind = iota
	Text
	Enter
	Tab
	Backspace
	Up
	Down
	Left
	Right
	Home
	End
	PageUp
	PageDown
	Escape
	CtrlC
	CtrlD
	CtrlL
	CtrlU
)

// Key is one decoded key. Text holds the runes of a Text key; Raw holds
// the bytes the key was decoded from.
type Key struct {
	Kind Kind
	Text string
	Raw  string
}

var csiKeys = map[string]Kind{
	"A":  Up,
	"B":  Down,
	"C":  Right,
	"D":  Left,
	"H":  Home,
	"F":  End,
	"1~": Home,
	"7~": Home,
	"4~": End,
	"8~": End,
	"5~": PageUp,
	"6~": PageDown,
}

var ss3Keys = map[byte]Kind{
	'A': Up,
	'B': Down,
	'C': Right,
	'D': Left,
	'H': Home,
	'F': End,
}

// Decode splits data into keys. Consecutive printable runes form a single
// Text key, and "\r\n" is a single Enter.
func Decode(data string) []Key {
	var out []Key
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '\r':
			n := 1
			if i+1 < len(data) && data[i+1] == '\n' {
				n = 2
			}
			out = append(out, Key{Kind: Enter, Raw: data[i : i+n]})
			i += n
		case c == '\n':
			out = append(out, Key{Kind: Enter, Raw: "\n"})
			i++
		case c == '\t':
			out = append(out, Key{Kind: Tab, Raw: "\t"})
			i++
		case c == 0x7f || c == 0x08:
			out = append(out, Key{Kind: Backspace, Raw: data[i : i+1]})
			i++
		case c == 0x03:
			out = append(out, Key{Kind: CtrlC, Raw: data[i : i+1]})
			i++
		case c == 0x04:
			out = append(out, Key{Kind: CtrlD, Raw: data[i : i+1]})
			i++
		case c == 0x0c:
			out = append(out, Key{Kind: CtrlL, Raw: data[i : i+1]})
			i++
		case c == 0x15:
			out = append(out, Key{Kind: CtrlU, Raw: data[i : i+1]})
			i++
		case c == 0x1b:
			k, n := decodeEscape(data[i:])
			k.Raw = data[i : i+n]
			out = append(out, k)
			i += n
		case c < 0x20:
			out = append(out, Key{Kind: Unknown, Raw: data[i : i+1]})
			i++
		default:
			j := i
			for j < len(data) {
				r, size := utf8.DecodeRuneInString(data[j:])
				if r < 0x20 || r == 0x7f {
					break
				}
				j += size
			}
			out = append(out, Key{Kind: Text, Text: data[i:j], Raw: data[i:j]})
			i = j
		}
	}
	return out
}

func decodeEscape(s string) (Key, int) {
	if len(s) == 1 {
		return Key{Kind: Escape}, 1
	}
	switch s[1] {
	case '[':
		j := 2
		for j < len(s) && s[j] >= 0x30 && s[j] <= 0x3f {
			j++
		}
		if j < len(s) && s[j] >= 0x40 && s[j] <= 0x7e {
			if kind, ok := csiKeys[s[2:j+1]]; ok {
				return Key{Kind: kind}, j + 1
			}
			return Key{Kind: Unknown}, j + 1
		}
		return Key{Kind: Unknown}, j
	case 'O':
		if len(s) > 2 {
			if kind, ok := ss3Keys[s[2]]; ok {
				return Key{Kind: kind}, 3
			}
			return Key{Kind: Unknown}, 3
		}
		return Key{Kind: Unknown}, 2
	default:
		return Key{Kind: Escape}, 1
	}
}
