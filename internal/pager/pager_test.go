package pager

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/models"
	"github.com/starford/termblog/internal/terminal"
	"github.com/starford/termblog/internal/testutil"
)

func numbered(n int) Document {
	return Document{
		Title: "doc",
		Render: func(cols int) []string {
			out := make([]string, n)
			for i := range out {
				out[i] = fmt.Sprintf("line %d at %d", i+1, cols)
			}
			return out
		},
	}
}

func run(t *testing.T, term *testutil.Terminal, doc Document, inputs ...terminal.Event) error {
	t.Helper()
	events := make(chan terminal.Event, len(inputs))
	for _, ev := range inputs {
		events <- ev
	}
	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), term, events, doc) }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("pager did not return")
		return nil
	}
}

func TestPager_QuitRestoresScreen(t *testing.T) {
	term := testutil.NewTerminal(40, 5)
	if err := run(t, term, numbered(20), terminal.Event{Input: "q"}); err != nil {
		t.Fatal(err)
	}
	out := term.Output()
	if !strings.HasPrefix(out, ansi.AltScreen) {
		t.Errorf("alt screen not entered: %q", out[:min(len(out), 20)])
	}
	if !strings.HasSuffix(out, ansi.ShowCursor+ansi.MainScreen) {
		t.Errorf("screen not restored")
	}
	if !strings.Contains(term.Text(), "doc  lines 1-4/20  20%  (q to quit)") {
		t.Errorf("status line missing: %q", term.Text())
	}
}

func TestPager_Scrolling(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"down", "jj", "lines 3-6/20"},
		{"arrow down", "\x1b[B", "lines 2-5/20"},
		{"page", " ", "lines 5-8/20"},
		{"half page", "\x04", "lines 3-6/20"},
		{"bottom", "G", "lines 17-20/20"},
		{"top after bottom", "Gg", "lines 1-4/20"},
		{"up clamps", "kkk", "lines 1-4/20"},
		{"past end clamps", "GGjjj", "lines 17-20/20"},
		{"end key", "\x1b[F", "lines 17-20/20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			term := testutil.NewTerminal(40, 5)
			_ = run(t, term, numbered(20), terminal.Event{Input: tc.input}, terminal.Event{Input: "q"})
			text := term.Text()
			// The last frame before quitting is the last status line.
			last := text[strings.LastIndex(text, "doc  lines"):]
			if !strings.Contains(last, tc.want) {
				t.Errorf("after %q: %q, want %q", tc.input, last, tc.want)
			}
		})
	}
}

func TestPager_EscapeCloses(t *testing.T) {
	term := testutil.NewTerminal(40, 5)
	if err := run(t, term, numbered(3), terminal.Event{Input: "\x1b"}); err != nil {
		t.Fatal(err)
	}
}

func TestPager_ResizeRerenders(t *testing.T) {
	term := testutil.NewTerminal(40, 5)
	events := make(chan terminal.Event, 2)
	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), term, events, numbered(3)) }()

	time.Sleep(20 * time.Millisecond)
	term.Resize(60, 10)
	events <- terminal.Event{Resize: true}
	events <- terminal.Event{Input: "q"}
	<-done

	if !strings.Contains(term.Text(), "line 1 at 60") {
		t.Errorf("content not re-rendered at new width")
	}
}

func TestPager_CancelRestores(t *testing.T) {
	term := testutil.NewTerminal(40, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, term, make(chan terminal.Event), numbered(3))
	if err == nil {
		t.Fatal("expected context error")
	}
	if !strings.HasSuffix(term.Output(), ansi.MainScreen) {
		t.Error("screen not restored on cancel")
	}
}

func TestPager_ClipsLongLines(t *testing.T) {
	term := testutil.NewTerminal(10, 3)
	doc := Document{Title: "x", Render: func(int) []string {
		return []string{strings.Repeat("abcdef", 5)}
	}}
	_ = run(t, term, doc, terminal.Event{Input: "q"})
	if strings.Contains(term.Text(), "abcdefabcdef") {
		t.Errorf("line not clipped: %q", term.Text())
	}
}

func TestPostDocument(t *testing.T) {
	p := &models.Post{
		Slug:    "hello",
		Title:   "Hello world",
		Date:    "2024-01-02",
		Tags:    []string{"meta"},
		Content: "Some **bold** words.\r\n\r\n## Section\r\n\r\nMore text.",
	}
	lines := PostDocument(p, "dark", nil).Render(60)
	text := ansi.Strip(strings.Join(lines, "\n"))
	for _, want := range []string{"Hello world", "bold", "Section", "More text."} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered post missing %q:\n%s", want, text)
		}
	}
}
