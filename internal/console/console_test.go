package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/shell"
	"github.com/starford/termblog/internal/storage"
	"github.com/starford/termblog/internal/testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatal(msg)
}

func TestRun_EOFEndsSession(t *testing.T) {
	store, err := storage.NewFS(testutil.WriteContent(t, testutil.Blog()))
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Build(store, "/media")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	sh := shell.New(shell.DefaultCommands(), shell.Config{User: "me", Host: "local"}, shell.WithLogger(logger))

	inR, inW := io.Pipe()
	out := &syncBuffer{}
	size := func() (int, int) { return 90, 30 }

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), inR, out, size, sh, cat, Options{Logger: logger}) }()

	eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return strings.Contains(ansi.Strip(out.String()), "me@local:~$ ")
	}, "prompt not shown")

	_, _ = inW.Write([]byte("pwd\r"))
	eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return strings.Contains(ansi.Strip(out.String()), "/home/visitor")
	}, "pwd not run")
	eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return strings.Count(ansi.Strip(out.String()), "me@local:~$ ") == 2
	}, "prompt not redrawn")

	_, _ = inW.Write([]byte{0x04})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ctrl+D did not end the session")
	}
	_ = inW.Close()
}

func TestReadInput_KeepsRunesWhole(t *testing.T) {
	r, w := io.Pipe()
	var got []string
	done := make(chan error, 1)
	go func() { done <- readInput(r, func(s string) { got = append(got, s) }) }()

	euro := []byte("€")
	_, _ = w.Write([]byte{'a', euro[0]})
	_, _ = w.Write(euro[1:])
	_ = w.Close()
	if err := <-done; err != io.EOF {
		t.Fatalf("err = %v", err)
	}
	if strings.Join(got, "") != "a€" {
		t.Fatalf("got %q", got)
	}
	for _, chunk := range got {
		if strings.ContainsRune(chunk, '�') {
			t.Errorf("chunk %q splits a rune", chunk)
		}
	}
}

func TestCompletePrefix(t *testing.T) {
	euro := []byte("€")
	cases := []struct {
		in   []byte
		want int
	}{
		{[]byte("abc"), 3},
		{append([]byte("a"), euro...), 4},
		{append([]byte("a"), euro[:2]...), 1},
		{euro[:1], 0},
		{nil, 0},
	}
	for _, c := range cases {
		if got := completePrefix(c.in); got != c.want {
			t.Errorf("completePrefix(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
