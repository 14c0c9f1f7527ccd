// Package session runs one visitor's shell: it owns the line editor and
// hands the terminal to commands while they run.
package session

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/editor"
	"github.com/starford/termblog/internal/shell"
	"github.com/starford/termblog/internal/terminal"
	"github.com/starford/termblog/internal/vfs"
)

// eventBuffer bounds the keystrokes queued for a running command; further
// input is dropped until it catches up.
const eventBuffer = 64

var deepLinkRe = regexp.MustCompile(`^/post/(.+)$`)

// DeepLinkSlug extracts the slug from a "/post/<slug>" path.
func DeepLinkSlug(path string) (string, bool) {
	m := deepLinkRe.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Session is a single shell bound to a terminal. Input, Resize and
// RunCommand may be called from any goroutine; everything else happens on
// the goroutine running Run.
type Session struct {
	sh     *shell.Shell
	term   terminal.Terminal
	env    *shell.Env
	ed     *editor.Editor
	logger *slog.Logger

	deepLink string
	onEOF    func()

	input    chan string
	resize   chan struct{}
	commands chan string
	done     chan struct{}
	stopped  chan struct{}

	ctx     context.Context
	running bool
	events  chan terminal.Event
	wg      sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithDeepLink opens the post named by a "/post/<slug>" path on start.
func WithDeepLink(path string) Option {
	return func(s *Session) { s.deepLink = path }
}

// WithBaseURL sets the prefix of links to posts.
func WithBaseURL(u string) Option {
	return func(s *Session) { s.env.BaseURL = u }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithEOF is called when Ctrl+D is pressed on an empty line.
func WithEOF(fn func()) Option {
	return func(s *Session) { s.onEOF = fn }
}

// New creates a session browsing cat. The catalog stays fixed for the
// life of the session.
func New(sh *shell.Shell, term terminal.Terminal, cat *catalog.Catalog, opts ...Option) *Session {
	s := &Session{
		sh:       sh,
		term:     term,
		env:      &shell.Env{Term: term, Catalog: cat, Cwd: vfs.Home},
		logger:   slog.Default(),
		input:    make(chan string, 16),
		resize:   make(chan struct{}, 1),
		commands: make(chan string, 4),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.ed = editor.New(term,
		editor.WithPrompt(func() string { return sh.Prompt(s.env.Cwd) }),
		editor.WithCompleter(editor.CompleterFunc(func(buf string) (int, []string) {
			return sh.Complete(s.env.Catalog, buf)
		})),
		editor.WithSubmit(s.submit),
		editor.WithEOF(func() {
			if s.onEOF != nil {
				s.onEOF()
			}
		}),
	)
	return s
}

// Input queues raw terminal input.
func (s *Session) Input(data string) {
	select {
	case s.input <- data:
	case <-s.stopped:
	}
}

// Resize notes that the terminal size changed.
func (s *Session) Resize() {
	select {
	case s.resize <- struct{}{}:
	default: // one pending notice is enough
	}
}

// RunCommand shows line at the prompt and runs it, as if typed. It is
// ignored while another command is running.
func (s *Session) RunCommand(line string) {
	select {
	case s.commands <- line:
	case <-s.stopped:
	}
}

// Run writes the banner and processes input until ctx is cancelled. It
// waits for a running command to return before returning itself.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	defer close(s.stopped)
	defer s.wg.Wait()

	s.term.Write(s.sh.Banner(s.env))
	s.start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-s.input:
			s.ed.Feed(data)
		case <-s.resize:
			if s.running {
				s.forward(terminal.Event{Resize: true})
			}
		case line := <-s.commands:
			if s.running {
				s.logger.Debug("session: command ignored while busy", slog.String("line", line))
				continue
			}
			s.ed.Execute(line)
		case <-s.done:
			s.running = false
			s.events = nil
			s.env.Events = nil
			s.ed.Release()
			s.ed.ShowPrompt()
		}
	}
}

func (s *Session) start() {
	if slug, ok := DeepLinkSlug(s.deepLink); ok {
		if e := s.env.Catalog.FindBySlug(slug); e != nil && e.IsMarkdown() {
			s.ed.Execute("less " + slug)
			return
		}
		s.logger.Debug("session: unknown deep link", slog.String("path", s.deepLink))
	}
	s.ed.ShowPrompt()
}

// submit runs line on its own goroutine and routes input to it until it
// returns.
func (s *Session) submit(line string) {
	s.running = true
	s.events = make(chan terminal.Event, eventBuffer)
	s.env.Events = s.events
	s.ed.Intercept(func(data string) {
		s.forward(terminal.Event{Input: data})
	})

	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sh.Execute(ctx, s.env, line)
		select {
		case s.done <- struct{}{}:
		case <-ctx.Done():
		}
	}()
}

func (s *Session) forward(ev terminal.Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("session: event dropped")
	}
}
