// Package console runs a session in the local terminal.
package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/session"
	"github.com/starford/termblog/internal/shell"
)

// ErrNotTerminal is returned when stdin is not a terminal.
var ErrNotTerminal = errors.New("console: stdin is not a terminal")

// Options configures a console session.
type Options struct {
	// DeepLink is a "/post/<slug>" path to open on start.
	DeepLink string
	// BaseURL prefixes post links in the banner.
	BaseURL string
	Logger  *slog.Logger
}

// Run puts stdin in raw mode and runs a session until Ctrl+D on an empty
// line or ctx is cancelled.
func Run(ctx context.Context, sh *shell.Shell, cat *catalog.Catalog, opts Options) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() { _ = term.Restore(fd, old) }()

	size := func() (int, int) {
		w, h, err := term.GetSize(fd)
		if err != nil {
			return 80, 24
		}
		return w, h
	}
	return run(ctx, os.Stdin, os.Stdout, size, sh, cat, opts)
}

func run(ctx context.Context, in io.Reader, out io.Writer, size func() (int, int), sh *shell.Shell, cat *catalog.Catalog, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := &localTerminal{out: out, size: size}
	t.refresh()

	s := session.New(sh, t, cat,
		session.WithDeepLink(opts.DeepLink),
		session.WithBaseURL(opts.BaseURL),
		session.WithLogger(opts.Logger),
		session.WithEOF(cancel),
	)

	stopResize := notifyResize(func() {
		t.refresh()
		s.Resize()
	})
	defer stopResize()

	go func() {
		defer cancel()
		if err := readInput(in, s.Input); err != nil && !errors.Is(err, io.EOF) {
			opts.Logger.Debug("console: read failed", slog.String("error", err.Error()))
		}
	}()

	err := s.Run(ctx)
	t.Write(ansi.Reset + "\r\n")
	return err
}

// readInput passes input to fn in chunks that never split a UTF-8
// sequence.
func readInput(in io.Reader, fn func(string)) error {
	buf := make([]byte, 4096)
	var pending []byte
	for {
		n, err := in.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := completePrefix(pending)
			if cut > 0 {
				fn(string(pending[:cut]))
				pending = append(pending[:0], pending[cut:]...)
			}
		}
		if err != nil {
			return err
		}
	}
}

// completePrefix returns the length of b without a trailing incomplete
// rune.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

type localTerminal struct {
	mu   sync.Mutex
	out  io.Writer
	size func() (int, int)
	cols atomic.Int32
	rows atomic.Int32
}

func (t *localTerminal) Write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.out, s)
}

func (t *localTerminal) Size() (int, int) {
	return int(t.cols.Load()), int(t.rows.Load())
}

func (t *localTerminal) refresh() {
	w, h := t.size()
	t.cols.Store(int32(w))
	t.rows.Store(int32(h))
}
