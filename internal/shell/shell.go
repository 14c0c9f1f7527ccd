// Package shell interprets command lines against the blog's virtual
// filesystem.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime/debug"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/fuzzy"
	"github.com/starford/termblog/internal/markdown"
	"github.com/starford/termblog/internal/terminal"
	"github.com/starford/termblog/internal/vfs"
)

// RunFunc executes a command. Returned errors are printed by the shell.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Command is one entry of the command table.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	// Hidden commands run but are left out of help and completion.
	Hidden bool
	// ReadsContent marks commands whose arguments name posts. Their
	// arguments are normalized and completed against slugs.
	ReadsContent bool
	Run          RunFunc
}

// Env is the per-session state a command works on. It is owned by one
// goroutine at a time.
type Env struct {
	Term    terminal.Terminal
	Catalog *catalog.Catalog
	Cwd     string
	// Events carries input and resize notices while a command runs.
	Events <-chan terminal.Event
	// BaseURL prefixes links to posts, e.g. "https://blog.example".
	BaseURL string
}

// Invocation is a parsed command line bound to its environment.
type Invocation struct {
	*Env
	Shell *Shell
	Name  string
	// Args are normalized for content commands; Raw keeps what was typed.
	Args []string
	Raw  []string
}

// Searcher narrows grep to posts containing a substring.
type Searcher interface {
	Contains(substr string) ([]string, error)
}

// Identity describes the blog author for the banner and whoami.
type Identity struct {
	Name    string
	Tagline string
	Email   string
	Links   []Link
}

// Link is a labelled contact URL.
type Link struct {
	Label string
	URL   string
}

// Config holds the presentation settings of a shell.
type Config struct {
	User       string
	Host       string
	Identity   Identity
	CodeStyle  string
	PagerStyle string
}

// Shell resolves and runs commands. It is safe for concurrent use by many
// sessions; per-session state lives in Env.
type Shell struct {
	cfg      Config
	commands []Command
	lookup   map[string]*Command
	search   Searcher
	code     *markdown.CodeColorer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Shell.
type Option func(*Shell)

// WithSearcher makes grep consult an index.
func WithSearcher(s Searcher) Option {
	return func(sh *Shell) { sh.search = s }
}

// WithLogger sets the logger used for recovered command panics.
func WithLogger(l *slog.Logger) Option {
	return func(sh *Shell) { sh.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(sh *Shell) { sh.now = now }
}

// New creates a shell over an immutable command table.
func New(commands []Command, cfg Config, opts ...Option) *Shell {
	if cfg.User == "" {
		cfg.User = "visitor"
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	sh := &Shell{
		cfg:      cfg,
		commands: commands,
		lookup:   make(map[string]*Command),
		code:     markdown.NewCodeColorer(cfg.CodeStyle),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for i := range sh.commands {
		c := &sh.commands[i]
		sh.lookup[c.Name] = c
	}
	for i := range sh.commands {
		c := &sh.commands[i]
		for _, a := range c.Aliases {
			if _, taken := sh.lookup[a]; !taken {
				sh.lookup[a] = c
			}
		}
	}
	for _, o := range opts {
		o(sh)
	}
	return sh
}

// Find returns the command with the given name or alias.
func (s *Shell) Find(name string) *Command { return s.lookup[name] }

// Commands returns the visible commands in table order.
func (s *Shell) Commands() []Command {
	out := make([]Command, 0, len(s.commands))
	for _, c := range s.commands {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Config returns the shell's configuration.
func (s *Shell) Config() Config { return s.cfg }

// Prompt renders the prompt for the given working directory.
func (s *Shell) Prompt(cwd string) string {
	return ansi.BrightGreen + s.cfg.User + ansi.Reset +
		ansi.Gray + "@" + ansi.Reset +
		ansi.BrightCyan + s.cfg.Host + ansi.Reset +
		ansi.Gray + ":" + ansi.Reset +
		ansi.BrightBlue + vfs.DisplayPath(cwd) + ansi.Reset +
		ansi.Gray + "$ " + ansi.Reset
}

var datePrefixRe = regexp.MustCompile(`^\d+-`)

// NormalizeArg turns a path-like argument into a bare slug: a leading
// "./", "~/" or "/" is removed, only the last segment is kept, and the
// ".md" extension and a leading "<digits>-" are stripped. Flags pass
// through unchanged.
func NormalizeArg(arg string) string {
	if strings.HasPrefix(arg, "-") {
		return arg
	}
	for _, p := range []string{"./", "~/", "/"} {
		if strings.HasPrefix(arg, p) {
			arg = arg[len(p):]
			break
		}
	}
	if i := strings.LastIndexByte(arg, '/'); i >= 0 {
		arg = arg[i+1:]
	}
	arg = strings.TrimSuffix(arg, ".md")
	return datePrefixRe.ReplaceAllString(arg, "")
}

// Parsed is the result of splitting a command line.
type Parsed struct {
	Name    string
	Command *Command
	Args    []string
	Raw     []string
}

// Parse splits line into a command and its arguments. Command is nil for
// unknown names.
func (s *Shell) Parse(line string) Parsed {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Parsed{}
	}
	p := Parsed{Name: strings.ToLower(fields[0]), Raw: fields[1:]}
	p.Command = s.lookup[p.Name]
	if p.Name == "ll" && p.Command != nil {
		p.Raw = append([]string{"-l"}, p.Raw...)
	}
	p.Args = p.Raw
	if p.Command != nil && p.Command.ReadsContent {
		p.Args = make([]string, len(p.Raw))
		for i, a := range p.Raw {
			p.Args[i] = NormalizeArg(a)
		}
	}
	return p
}

// Execute runs one command line. Errors and panics from the command are
// printed to the terminal; they never end the session.
func (s *Shell) Execute(ctx context.Context, env *Env, line string) {
	p := s.Parse(line)
	if p.Name == "" {
		return
	}
	if p.Command == nil {
		s.unknown(env.Term, p.Name)
		return
	}
	inv := &Invocation{Env: env, Shell: s, Name: p.Command.Name, Args: p.Args, Raw: p.Raw}
	if err := s.run(ctx, p.Command, inv); err != nil {
		terminal.Writeln(env.Term, ansi.Error(p.Command.Name+": "+err.Error()))
	}
}

func (s *Shell) run(ctx context.Context, c *Command, inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("shell: command panicked",
				slog.String("command", c.Name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("internal error")
		}
	}()
	return c.Run(ctx, inv)
}

func (s *Shell) unknown(t terminal.Terminal, name string) {
	terminal.Writeln(t, ansi.Error(fmt.Sprintf("Command not found: '%s'", name)))
	names := make([]string, len(s.commands))
	for i, c := range s.commands {
		names[i] = c.Name
	}
	if suggestion, ok := fuzzy.Closest(name, names, 2); ok {
		terminal.WriteLines(t, "",
			ansi.Dim+"Did you mean "+ansi.Reset+ansi.BrightGreen+suggestion+ansi.Reset+ansi.Dim+"?"+ansi.Reset,
			ansi.Dim+"Try: "+ansi.Reset+ansi.Green+suggestion+ansi.Reset)
		return
	}
	terminal.WriteLines(t, "",
		ansi.Dim+"Type "+ansi.Reset+ansi.Green+"help"+ansi.Reset+ansi.Dim+" to see all available commands"+ansi.Reset)
}

// Complete returns the completion candidates for buffer and the byte
// offset they replace from. Command names and aliases complete while the
// first word is being typed; content commands complete post slugs.
func (s *Shell) Complete(c *catalog.Catalog, buffer string) (int, []string) {
	fields := strings.Fields(buffer)
	trailing := strings.HasSuffix(buffer, " ")

	if len(fields) <= 1 && !trailing {
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}
		var matches []string
		for _, cmd := range s.commands {
			if cmd.Hidden {
				continue
			}
			for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
				if strings.HasPrefix(name, prefix) {
					matches = append(matches, name)
				}
			}
		}
		sort.Strings(matches)
		return len(buffer) - len(prefix), slices.Compact(matches)
	}

	cmd := s.lookup[strings.ToLower(fields[0])]
	if cmd == nil || !cmd.ReadsContent || c == nil {
		return len(buffer), nil
	}
	prefix := ""
	if !trailing {
		prefix = fields[len(fields)-1]
	}
	var matches []string
	for _, slug := range c.Slugs() {
		if strings.HasPrefix(slug, prefix) {
			matches = append(matches, slug)
		}
	}
	sort.Strings(matches)
	return len(buffer) - len(prefix), matches
}
