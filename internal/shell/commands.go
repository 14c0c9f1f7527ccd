package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/fuzzy"
	"github.com/starford/termblog/internal/markdown"
	"github.com/starford/termblog/internal/models"
	"github.com/starford/termblog/internal/pager"
	"github.com/starford/termblog/internal/terminal"
	"github.com/starford/termblog/internal/vfs"
)

// DefaultCommands returns the blog's command table.
func DefaultCommands() []Command {
	return []Command{
		{Name: "help", Aliases: []string{"h"}, Description: "Show available commands", Run: runHelp},
		{Name: "man", Description: "Display manual pages for commands", Run: runMan},
		{Name: "ls", Aliases: []string{"ll"}, Description: "List directory contents", Run: runLs},
		{Name: "cat", Aliases: []string{"bat"}, Description: "Read a blog post with syntax highlighting", ReadsContent: true, Run: runCat},
		{Name: "less", Description: "Read a blog post in the pager", ReadsContent: true, Run: runLess},
		{Name: "cd", Description: "Change directory", Run: runCd},
		{Name: "pwd", Description: "Print working directory", Run: runPwd},
		{Name: "tree", Description: "Display directory tree", Run: runTree},
		{Name: "clear", Aliases: []string{"c"}, Description: "Clear the terminal", Run: runClear},
		{Name: "whoami", Description: "About the blog author", Run: runWhoami},
		{Name: "exit", Aliases: []string{"q"}, Description: "Exit the terminal (just kidding)", Run: runExit},
		{Name: "stats", Description: "Show blog statistics (htop-style)", Run: runStats},
		{Name: "tags", Description: "Browse posts by tag", Run: runTags},
		{Name: "grep", Description: "Search post contents", Run: runGrep},
		{Name: "fortune", Description: "Random programming quotes and tips", Hidden: true, Run: runFortune},
	}
}

var helpGroups = []struct {
	label string
	names []string
}{
	{"Reading", []string{"cat", "less", "ls", "grep"}},
	{"Navigation", []string{"cd", "pwd", "tree"}},
	{"Info", []string{"stats", "tags", "whoami"}},
	{"Terminal", []string{"clear", "help", "man"}},
}

func runHelp(_ context.Context, inv *Invocation) error {
	lines := []string{"", ansi.Header("Available Commands")}
	for _, g := range helpGroups {
		lines = append(lines, "", "  "+ansi.Bold+ansi.BrightWhite+g.label+ansi.Reset)
		for _, name := range g.names {
			c := inv.Shell.Find(name)
			if c == nil || c.Hidden {
				continue
			}
			alias := ""
			if len(c.Aliases) > 0 {
				alias = ansi.Dim + " (" + strings.Join(c.Aliases, ", ") + ")" + ansi.Reset
			}
			lines = append(lines, "    "+ansi.PadRight(ansi.Green+c.Name+ansi.Reset, 16)+c.Description+alias)
		}
	}
	terminal.WriteLines(inv.Term, append(lines, "")...)
	return nil
}

// lsFlags parses -l, -a, combined short flags and their long forms.
func lsFlags(args []string) (long, all bool, target string) {
	for _, a := range args {
		switch {
		case a == "--long":
			long = true
		case a == "--all":
			all = true
		case strings.HasPrefix(a, "--"):
		case strings.HasPrefix(a, "-"):
			long = long || strings.ContainsRune(a, 'l')
			all = all || strings.ContainsRune(a, 'a')
		case target == "":
			target = a
		}
	}
	return long, all, target
}

// sortNodes orders directories first, then by name.
func sortNodes(nodes []*vfs.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsDir() != nodes[j].IsDir() {
			return nodes[i].IsDir()
		}
		return nodes[i].Name < nodes[j].Name
	})
}

func nodeName(n *vfs.Node) string {
	if n.IsDir() {
		return ansi.BrightBlue + n.Name + "/" + ansi.Reset
	}
	return ansi.BrightGreen + n.Name + ansi.Reset
}

func runLs(_ context.Context, inv *Invocation) error {
	long, all, target := lsFlags(inv.Args)
	fs := inv.Catalog.FS()
	resolved := inv.Cwd
	if target != "" {
		resolved = vfs.Resolve(inv.Cwd, target)
	} else {
		target = inv.Cwd
	}
	node := fs.Stat(resolved)
	if node == nil {
		terminal.WriteLines(inv.Term, "", ansi.Error(fmt.Sprintf("ls: cannot access '%s': No such file or directory", target)), "")
		return nil
	}
	if !node.IsDir() {
		terminal.WriteLines(inv.Term, "", "  "+nodeName(node), "")
		return nil
	}

	entries := fs.Readdir(resolved)
	if len(entries) == 0 {
		terminal.WriteLines(inv.Term, "", ansi.Faint("  (empty directory)"), "")
		return nil
	}
	sortNodes(entries)

	lines := []string{""}
	for _, n := range entries {
		if n.IsDir() || !(long || all) || n.Entry == nil {
			lines = append(lines, "  "+nodeName(n))
			continue
		}
		meta := n.Entry.Meta
		lines = append(lines, "  "+ansi.Faint(meta.Date)+"  "+nodeName(n)+"  "+ansi.BrightWhite+meta.Title+ansi.Reset)
		if !all {
			continue
		}
		indent := strings.Repeat(" ", 14)
		if len(meta.Tags) > 0 {
			tags := make([]string, len(meta.Tags))
			for i, t := range meta.Tags {
				tags[i] = ansi.Cyan + t + ansi.Reset
			}
			lines = append(lines, indent+ansi.Faint("[")+strings.Join(tags, ansi.Faint(", "))+ansi.Faint("]"))
		}
		lines = append(lines, indent+ansi.Faint(fmt.Sprintf("%d words • ~%d min read", meta.WordCount, readTime(meta.WordCount))))
	}
	terminal.WriteLines(inv.Term, append(lines, "")...)
	return nil
}

// readTime is minutes at 200 words per minute, rounded up.
func readTime(words int) int {
	return (words + 199) / 200
}

// resolveFile finds the node an argument names: the path itself, the path
// with ".md" appended, and finally a slug lookup.
func resolveFile(inv *Invocation, raw, slug string) (string, *vfs.Node) {
	fs := inv.Catalog.FS()
	resolved := vfs.Resolve(inv.Cwd, raw)
	if n := fs.Stat(resolved); n != nil {
		return resolved, n
	}
	if n := fs.Stat(resolved + ".md"); n != nil {
		return resolved + ".md", n
	}
	if e := fs.FindBySlug(slug); e != nil {
		p := vfs.Home + e.Path
		return p, fs.Stat(p)
	}
	return "", nil
}

var errNotReadable = errors.New("not readable")

// openPost resolves the first argument of a content command and loads the
// post, printing the usual complaints when that fails.
func openPost(inv *Invocation) (*models.Post, *models.Entry, error) {
	if len(inv.Args) == 0 {
		terminal.WriteLines(inv.Term, "",
			ansi.Error("usage: "+inv.Name+" <file>"),
			ansi.Faint("  Try: "+inv.Name+" posts/2016/04/11-building-a-blog.md"),
			"")
		return nil, nil, errNotReadable
	}
	raw, slug := inv.Raw[0], inv.Args[0]
	_, node := resolveFile(inv, raw, slug)
	if node == nil {
		notFound(inv, raw, slug)
		return nil, nil, errNotReadable
	}
	if node.IsDir() || node.Entry == nil || !node.Entry.IsMarkdown() {
		terminal.WriteLines(inv.Term, "", ansi.Error(fmt.Sprintf("%s: '%s': Not a readable file", inv.Name, raw)), "")
		return nil, nil, errNotReadable
	}
	post, err := inv.Catalog.ReadPost(*node.Entry)
	if err != nil {
		return nil, nil, err
	}
	return post, node.Entry, nil
}

func notFound(inv *Invocation, raw, slug string) {
	t := inv.Term
	terminal.WriteLines(t, "", ansi.Error(fmt.Sprintf("%s: '%s': No such file or directory", inv.Name, raw)))

	candidates := inv.Catalog.Slugs()
	for _, n := range inv.Catalog.FS().Readdir(inv.Cwd) {
		if !n.IsDir() {
			candidates = append(candidates, n.Name)
		}
	}
	if suggestion, ok := fuzzy.Closest(slug, candidates, 3); ok {
		terminal.WriteLines(t, "",
			ansi.Dim+"Did you mean "+ansi.Reset+ansi.BrightGreen+suggestion+ansi.Reset+ansi.Dim+"?"+ansi.Reset)
	} else {
		terminal.WriteLines(t, "",
			ansi.Dim+"Use "+ansi.Reset+ansi.Green+"ls"+ansi.Reset+ansi.Dim+" to see files in the current directory"+ansi.Reset)
	}
	terminal.Writeln(t, "")
}

func runCat(_ context.Context, inv *Invocation) error {
	post, entry, err := openPost(inv)
	if errors.Is(err, errNotReadable) {
		return nil
	}
	if err != nil {
		return err
	}
	inv.Term.Write(markdown.RenderPost(post, markdown.PostOptions{
		Path: entry.Path,
		Cols: terminal.Cols(inv.Term),
		Code: inv.Shell.code,
	}))
	return nil
}

func runLess(ctx context.Context, inv *Invocation) error {
	post, _, err := openPost(inv)
	if errors.Is(err, errNotReadable) {
		return nil
	}
	if err != nil {
		return err
	}
	doc := pager.PostDocument(post, inv.Shell.cfg.PagerStyle, inv.Shell.code)
	if err := pager.Run(ctx, inv.Term, inv.Events, doc); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runCd(_ context.Context, inv *Invocation) error {
	target := "~"
	if len(inv.Args) > 0 {
		target = inv.Args[0]
	}
	resolved := vfs.Resolve(inv.Cwd, target)
	node := inv.Catalog.FS().Stat(resolved)
	switch {
	case node == nil:
		terminal.WriteLines(inv.Term, "", ansi.Error(fmt.Sprintf("cd: '%s': No such file or directory", target)), "")
	case !node.IsDir():
		terminal.WriteLines(inv.Term, "", ansi.Error(fmt.Sprintf("cd: '%s': Not a directory", target)), "")
	default:
		inv.Cwd = resolved
	}
	return nil
}

func runPwd(_ context.Context, inv *Invocation) error {
	terminal.WriteLines(inv.Term, "", "  "+inv.Cwd, "")
	return nil
}

func runTree(_ context.Context, inv *Invocation) error {
	_, _, target := lsFlags(inv.Args)
	resolved := inv.Cwd
	if target != "" {
		resolved = vfs.Resolve(inv.Cwd, target)
	} else {
		target = inv.Cwd
	}
	fs := inv.Catalog.FS()
	node := fs.Stat(resolved)
	if node == nil || !node.IsDir() {
		terminal.WriteLines(inv.Term, "", ansi.Error(fmt.Sprintf("tree: '%s': No such file or directory", target)), "")
		return nil
	}

	var dirs, files int
	lines := []string{"", "  " + ansi.BrightBlue + vfs.DisplayPath(resolved) + ansi.Reset}
	var walk func(path, prefix string)
	walk = func(path, prefix string) {
		children := fs.Readdir(path)
		sortNodes(children)
		for i, c := range children {
			last := i == len(children)-1
			connector, next := "├── ", "│   "
			if last {
				connector, next = "└── ", "    "
			}
			lines = append(lines, prefix+connector+nodeName(c))
			if c.IsDir() {
				dirs++
				walk(path+"/"+c.Name, prefix+next)
			} else {
				files++
			}
		}
	}
	walk(strings.TrimSuffix(resolved, "/"), "  ")

	lines = append(lines, "", "  "+ansi.Faint(fmt.Sprintf("%d directories, %d files", dirs, files)), "")
	terminal.WriteLines(inv.Term, lines...)
	return nil
}

func runClear(_ context.Context, inv *Invocation) error {
	inv.Term.Write(ansi.ClearScreen)
	return nil
}

func runWhoami(_ context.Context, inv *Invocation) error {
	id := inv.Shell.cfg.Identity
	lines := []string{""}
	lines = append(lines, identityBox(id.Name)...)
	lines = append(lines, "")
	lines = append(lines, contactLines(id)...)
	terminal.WriteLines(inv.Term, append(lines, "")...)
	return nil
}

func runExit(_ context.Context, inv *Invocation) error {
	terminal.WriteLines(inv.Term, "",
		ansi.Faint("Nice try! But you can't escape that easily..."),
		ansi.Faint("Just close the browser tab if you really want to leave."),
		"")
	return nil
}
