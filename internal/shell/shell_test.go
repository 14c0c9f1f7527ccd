package shell

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/index"
	"github.com/starford/termblog/internal/storage"
	"github.com/starford/termblog/internal/terminal"
	"github.com/starford/termblog/internal/testutil"
	"github.com/starford/termblog/internal/vfs"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	store, err := storage.NewFS(testutil.WriteContent(t, testutil.Blog()))
	if err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Build(store, "/media")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

var testConfig = Config{
	User: "visitor",
	Host: "blog.test",
	Identity: Identity{
		Name:    "Ada",
		Tagline: "Writes about terminals",
		Email:   "ada@example.com",
		Links:   []Link{{Label: "GitHub", URL: "https://github.com/ada"}},
	},
}

func fixedClock() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

func newTestShell(t *testing.T, opts ...Option) (*Shell, *Env, *testutil.Terminal) {
	t.Helper()
	term := testutil.NewTerminal(100, 30)
	env := &Env{Term: term, Catalog: testCatalog(t), Cwd: vfs.Home}
	sh := New(DefaultCommands(), testConfig, append([]Option{WithClock(fixedClock)}, opts...)...)
	return sh, env, term
}

func run(sh *Shell, env *Env, term *testutil.Terminal, line string) string {
	term.Reset()
	sh.Execute(context.Background(), env, line)
	return term.Text()
}

func TestNormalizeArg(t *testing.T) {
	cases := map[string]string{
		"./posts/2025/01/01-welcome.md": "welcome",
		"posts/welcome.md":              "welcome",
		"welcome":                       "welcome",
		"~/welcome":                     "welcome",
		"/welcome":                      "welcome",
		"01-welcome":                    "welcome",
		"-l":                            "-l",
		"--sort=date":                   "--sort=date",
		"2024":                          "2024",
	}
	for in, want := range cases {
		if got := NormalizeArg(in); got != want {
			t.Errorf("NormalizeArg(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	sh := New(DefaultCommands(), testConfig)

	p := sh.Parse("  LL  posts ")
	if p.Command == nil || p.Command.Name != "ls" {
		t.Fatalf("ll should resolve to ls: %+v", p)
	}
	if strings.Join(p.Args, " ") != "-l posts" {
		t.Errorf("args = %v", p.Args)
	}

	p = sh.Parse("cat ./posts/2016/04/11-building-a-blog.md")
	if p.Args[0] != "building-a-blog" || p.Raw[0] != "./posts/2016/04/11-building-a-blog.md" {
		t.Errorf("content args not normalized: %+v", p)
	}

	p = sh.Parse("cd posts/2016")
	if p.Args[0] != "posts/2016" {
		t.Errorf("cd args must stay paths: %v", p.Args)
	}

	if p := sh.Parse("nope x"); p.Command != nil || p.Name != "nope" {
		t.Errorf("unknown = %+v", p)
	}
}

func TestUnknownCommand(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "sl")
	if !strings.Contains(out, "Command not found: 'sl'") || !strings.Contains(out, "Did you mean ls?") || !strings.Contains(out, "Try: ls") {
		t.Errorf("unexpected output:\n%s", out)
	}
	out = run(sh, env, term, "xyzzyplugh")
	if !strings.Contains(out, "Type help to see all available commands") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHelp(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "help")
	for _, want := range []string{"Available Commands", "Reading", "Navigation", "grep", "(bat)"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
	if strings.Contains(out, "fortune") {
		t.Error("hidden command listed in help")
	}
}

func TestLs(t *testing.T) {
	sh, env, term := newTestShell(t)
	if out := run(sh, env, term, "ls"); !strings.Contains(out, "posts/") {
		t.Errorf("ls ~:\n%s", out)
	}

	out := run(sh, env, term, "ls -la posts/2016/04")
	for _, want := range []string{"2016-04-11", "11-building-a-blog.md", "Building a blog", "[meta, webdev]", "~1 min read"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls -la missing %q:\n%s", want, out)
		}
	}

	out = run(sh, env, term, "ls posts")
	if strings.Index(out, "2016/") > strings.Index(out, "2024/") {
		t.Errorf("entries should sort by name:\n%s", out)
	}

	if out := run(sh, env, term, "ls missing"); !strings.Contains(out, "ls: cannot access 'missing': No such file or directory") {
		t.Errorf("ls missing:\n%s", out)
	}
}

func TestCdPwd(t *testing.T) {
	sh, env, term := newTestShell(t)
	run(sh, env, term, "cd posts/2024")
	if env.Cwd != vfs.Home+"/posts/2024" {
		t.Fatalf("cwd = %q", env.Cwd)
	}
	if out := run(sh, env, term, "pwd"); !strings.Contains(out, "/home/visitor/posts/2024") {
		t.Errorf("pwd:\n%s", out)
	}
	if got := stripPrompt(sh.Prompt(env.Cwd)); got != "visitor@blog.test:~/posts/2024$ " {
		t.Errorf("prompt = %q", got)
	}

	if out := run(sh, env, term, "cd nowhere"); !strings.Contains(out, "No such file or directory") {
		t.Errorf("cd nowhere:\n%s", out)
	}
	if out := run(sh, env, term, "cd 01/02-hello-world.md"); !strings.Contains(out, "Not a directory") {
		t.Errorf("cd file:\n%s", out)
	}
	run(sh, env, term, "cd")
	if env.Cwd != vfs.Home {
		t.Errorf("cd with no args should go home, got %q", env.Cwd)
	}
	for range 10 {
		run(sh, env, term, "cd ..")
	}
	if env.Cwd != "/" {
		t.Errorf("cd .. should clamp at root, got %q", env.Cwd)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func stripPrompt(s string) string {
	term := testutil.NewTerminal(1, 1)
	term.Write(s)
	return term.Text()
}

func TestTree(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "tree posts/2016")
	for _, want := range []string{"~/posts/2016", "└── 04/", "    └── 11-building-a-blog.md", "1 directories, 1 files"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestCat(t *testing.T) {
	sh, env, term := newTestShell(t)
	for _, line := range []string{
		"cat building-a-blog",
		"cat posts/2016/04/11-building-a-blog.md",
		"bat ./11-building-a-blog",
	} {
		out := run(sh, env, term, line)
		if !strings.Contains(out, "File: posts/2016/04/11-building-a-blog.md") || !strings.Contains(out, "runs in a terminal") {
			t.Errorf("%s:\n%s", line, out)
		}
	}

	env.Cwd = vfs.Home + "/posts/2016/04"
	if out := run(sh, env, term, "cat 11-building-a-blog"); !strings.Contains(out, "Building a blog") {
		t.Errorf("cat relative with .md fallback:\n%s", out)
	}
}

func TestCatNotFound(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "cat helo-world")
	if !strings.Contains(out, "cat: 'helo-world': No such file or directory") || !strings.Contains(out, "Did you mean hello-world?") {
		t.Errorf("unexpected output:\n%s", out)
	}
	out = run(sh, env, term, "cat zzzzzzzzzzzz")
	if !strings.Contains(out, "Use ls to see files in the current directory") {
		t.Errorf("unexpected output:\n%s", out)
	}
	out = run(sh, env, term, "cat")
	if !strings.Contains(out, "usage: cat <file>") {
		t.Errorf("unexpected output:\n%s", out)
	}
	out = run(sh, env, term, "cat posts")
	if !strings.Contains(out, "Not a readable file") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLess(t *testing.T) {
	sh, env, term := newTestShell(t)
	events := make(chan terminal.Event, 1)
	events <- terminal.Event{Input: "q"}
	env.Events = events

	out := run(sh, env, term, "less hello-world")
	if !strings.Contains(out, "hello-world  lines") {
		t.Errorf("pager status missing:\n%s", out)
	}
}

func TestStats(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "stats")
	for _, want := range []string{"btop - blog monitor", "2024-06-01 12:00:00", "Posts", "Words", "Avg words/post", "Posts/month", "meta", "blog/meta"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
	st := ComputeStats(env.Catalog)
	if st.Posts != 3 || st.OldestDate != "2016-04-11" || st.Tags[0].Tag != "meta" {
		t.Errorf("stats = %+v", st)
	}
}

func TestTags(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "tags")
	if !strings.Contains(out, "All Tags") || !strings.Contains(out, "Total: 4 tags, 5 tagged posts") {
		t.Errorf("tags:\n%s", out)
	}
	out = run(sh, env, term, "tags meta")
	if !strings.Contains(out, "Posts tagged with") || !strings.Contains(out, "hello-world") || !strings.Contains(out, "Related tags: webdev") {
		t.Errorf("tags meta:\n%s", out)
	}
	if strings.Index(out, "hello-world") > strings.Index(out, "building-a-blog") {
		t.Errorf("tagged posts should be newest first:\n%s", out)
	}
	out = run(sh, env, term, "tags mta")
	if !strings.Contains(out, "No such tag") || !strings.Contains(out, "Did you mean meta?") {
		t.Errorf("tags mta:\n%s", out)
	}
}

type fakeSearcher struct {
	slugs []string
	err   error
}

func (f fakeSearcher) Contains(string) ([]string, error) { return f.slugs, f.err }

func TestGrep(t *testing.T) {
	sh, env, term := newTestShell(t)
	out := run(sh, env, term, "grep TERMINAL")
	if !strings.Contains(out, "posts/2016/04/11-building-a-blog.md") || !strings.Contains(out, "Found 1 match") {
		t.Errorf("grep:\n%s", out)
	}
	if !strings.Contains(out, "^^^^^^^^") {
		t.Errorf("caret marker missing:\n%s", out)
	}
	if out := run(sh, env, term, "grep nothing-like-this"); !strings.Contains(out, "No matches found") {
		t.Errorf("grep miss:\n%s", out)
	}
}

func TestGrep_UsesSearcher(t *testing.T) {
	sh, env, term := newTestShell(t, WithSearcher(fakeSearcher{slugs: []string{"hello-world"}}))
	out := run(sh, env, term, "grep e")
	if strings.Contains(out, "building-a-blog") || !strings.Contains(out, "hello-world") {
		t.Errorf("grep should only scan indexed candidates:\n%s", out)
	}

	sh, env, term = newTestShell(t, WithSearcher(fakeSearcher{err: errors.New("down")}))
	out = run(sh, env, term, "grep terminal")
	if !strings.Contains(out, "Found 1 match") {
		t.Errorf("grep should fall back to a scan:\n%s", out)
	}
}

func TestGrep_IndexFoldsUnicode(t *testing.T) {
	store, err := storage.NewFS(testutil.WriteContent(t, map[string]string{
		"posts/2024/05/01-terminals.md": testutil.Post("Terminals", "2024-05-01", nil, "Ein Text über Terminals.\n"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Build(store, "/media")
	if err != nil {
		t.Fatal(err)
	}
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := index.Sync(db, c, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatal(err)
	}

	for _, opts := range [][]Option{nil, {WithSearcher(db)}} {
		term := testutil.NewTerminal(100, 30)
		env := &Env{Term: term, Catalog: c, Cwd: vfs.Home}
		sh := New(DefaultCommands(), testConfig, opts...)
		if out := run(sh, env, term, "grep ÜBER"); !strings.Contains(out, "Found 1 match") {
			t.Errorf("grep with %d options:\n%s", len(opts), out)
		}
	}
}

func TestGrep_Limit(t *testing.T) {
	sh, env, _ := newTestShell(t)
	inv := &Invocation{Env: env, Shell: sh}
	matches, more, err := sh.Grep(inv, "e", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 || !more {
		t.Errorf("got %d matches, more=%v", len(matches), more)
	}
}

func TestManAndMisc(t *testing.T) {
	sh, env, term := newTestShell(t)
	if out := run(sh, env, term, "man ls"); !strings.Contains(out, "ls - list directory contents") || !strings.Contains(out, "-l, --long") {
		t.Errorf("man ls:\n%s", out)
	}
	if out := run(sh, env, term, "man nope"); !strings.Contains(out, "No manual entry for nope") {
		t.Errorf("man nope:\n%s", out)
	}
	if out := run(sh, env, term, "man"); !strings.Contains(out, "AVAILABLE MANUAL PAGES") || !strings.Contains(out, "grep") {
		t.Errorf("man:\n%s", out)
	}
	if out := run(sh, env, term, "exit"); !strings.Contains(out, "Nice try!") {
		t.Errorf("exit:\n%s", out)
	}
	if out := run(sh, env, term, "whoami"); !strings.Contains(out, "A D A") || !strings.Contains(out, "https://github.com/ada") {
		t.Errorf("whoami:\n%s", out)
	}
	if out := run(sh, env, term, "fortune"); !strings.Contains(out, "Your Fortune") {
		t.Errorf("fortune:\n%s", out)
	}
	run(sh, env, term, "clear")
	if !strings.Contains(term.Output(), "\x1b[2J") {
		t.Error("clear did not clear the screen")
	}
}

func TestPanicIsRecovered(t *testing.T) {
	cmds := []Command{{Name: "boom", Run: func(context.Context, *Invocation) error { panic("kaboom") }}}
	sh := New(cmds, testConfig, WithLogger(quietLogger()))
	term := testutil.NewTerminal(80, 24)
	sh.Execute(context.Background(), &Env{Term: term}, "boom")
	if !strings.Contains(term.Text(), "boom: internal error") {
		t.Errorf("output = %q", term.Text())
	}
}

func TestComplete(t *testing.T) {
	sh, env, _ := newTestShell(t)
	cases := []struct {
		buf   string
		start int
		want  []string
	}{
		{"c", 0, []string{"c", "cat", "cd", "clear"}},
		{"ma", 0, []string{"man"}},
		{"fo", 0, nil},
		{"cat ", 4, []string{"building-a-blog", "hello-world", "vim-tips"}},
		{"less he", 5, []string{"hello-world"}},
		{"cd p", 4, nil},
	}
	for _, tc := range cases {
		start, got := sh.Complete(env.Catalog, tc.buf)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Errorf("Complete(%q) = %v, want %v", tc.buf, got, tc.want)
		}
		if len(tc.want) > 0 && start != tc.start {
			t.Errorf("Complete(%q) start = %d, want %d", tc.buf, start, tc.start)
		}
	}
}

func TestComplete_Deduplicates(t *testing.T) {
	commands := append(DefaultCommands(), Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Run:     func(context.Context, *Invocation) error { return nil },
	})
	sh := New(commands, testConfig)
	_, got := sh.Complete(nil, "ca")
	if strings.Join(got, ",") != "cat,catalog" {
		t.Errorf("Complete = %v", got)
	}
}

func TestBanner(t *testing.T) {
	sh, env, _ := newTestShell(t)
	env.BaseURL = "https://blog.test"
	b := sh.Banner(env)
	if !strings.Contains(b, "\x1b]8;;https://blog.test/post/vim-tips\x1b\\") {
		t.Errorf("recent post link missing: %q", b)
	}
	term := testutil.NewTerminal(80, 24)
	term.Write(b)
	text := term.Text()
	for _, want := range []string{"A D A", "Writes about terminals", "Recent Posts:", "1. vim-tips", "Tip: ", "Type help to get started."} {
		if !strings.Contains(text, want) {
			t.Errorf("banner missing %q:\n%s", want, text)
		}
	}
}
