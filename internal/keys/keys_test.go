package keys

import "testing"

func kinds(ks []Key) []Kind {
	out := make([]Kind, len(ks))
	for i, k := range ks {
		out[i] = k.Kind
	}
	return out
}

func TestDecode(t *testing.T) {
	cases := []struct {
		in   string
		want []Kind
	}{
		{"ls", []Kind{Text}},
		{"\r", []Kind{Enter}},
		{"\r\n", []Kind{Enter}},
		{"ls\rpwd\r", []Kind{Text, Enter, Text, Enter}},
		{"\t", []Kind{Tab}},
		{"\x7f\x08", []Kind{Backspace, Backspace}},
		{"\x1b[A\x1b[B\x1bOA\x1bOB", []Kind{Up, Down, Up, Down}},
		{"\x1b[C\x1b[D", []Kind{Right, Left}},
		{"\x1b[5~\x1b[6~", []Kind{PageUp, PageDown}},
		{"\x1b[H\x1b[F\x1b[1~\x1b[4~", []Kind{Home, End, Home, End}},
		{"\x1b", []Kind{Escape}},
		{"\x1bq", []Kind{Escape, Text}},
		{"\x03\x04\x0c\x15", []Kind{CtrlC, CtrlD, CtrlL, CtrlU}},
		{"\x1b[99~", []Kind{Unknown}},
		{"\x01", []Kind{Unknown}},
		{"héllo wörld", []Kind{Text}},
	}
	for _, c := range cases {
		got := kinds(Decode(c.in))
		if len(got) != len(c.want) {
			t.Errorf("Decode(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Decode(%q) = %v, want %v", c.in, got, c.want)
				break
			}
		}
	}
}

func TestDecodeRawRoundTrip(t *testing.T) {
	in := "ab\x1b[A\r\ncd\x7f\x1b[5~\x03"
	var raw string
	for _, k := range Decode(in) {
		raw += k.Raw
	}
	if raw != in {
		t.Errorf("raw = %q, want %q", raw, in)
	}
}

func TestDecodeText(t *testing.T) {
	ks := Decode("hi there\r")
	if ks[0].Text != "hi there" {
		t.Errorf("text = %q", ks[0].Text)
	}
}
