package shell

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/terminal"
)

type manOption struct {
	flag        string
	description string
}

type manPage struct {
	name        string
	synopsis    string
	description []string
	options     []manOption
	examples    []string
	seeAlso     []string
}

func synopsis(cmd string, args ...string) string {
	s := ansi.Bold + cmd + ansi.Reset
	for _, a := range args {
		s += " " + a
	}
	return s
}

func optional(name string) string { return "[" + ansi.Underline + name + ansi.Reset + "]" }

func required(name string) string { return ansi.Underline + name + ansi.Reset }

var manPages = map[string]manPage{
	"ls": {
		name:     "ls - list directory contents",
		synopsis: synopsis("ls", optional("OPTION")+"...", optional("PATH")),
		description: []string{
			"List the contents of a directory in the virtual filesystem.",
			"",
			"By default, lists the current working directory.",
			"Directories are shown in blue, files in green.",
		},
		options: []manOption{
			{"-l, --long", "Use a long listing format with metadata (date, title)"},
			{"-a, --all", "Show all metadata including tags, word count, and reading time"},
		},
		examples: []string{
			"ls               List current directory",
			"ls -l            List with metadata",
			"ls posts/        List posts directory",
			"ls -la ~/posts/  List posts with all metadata",
			"ll               Alias for ls -l",
		},
		seeAlso: []string{"cat(1)", "cd(1)", "tree(1)"},
	},
	"cat": {
		name:     "cat - display blog post content",
		synopsis: synopsis("cat", required("FILE")),
		description: []string{
			"Read and display a blog post with syntax highlighting.",
			"",
			"Paths are resolved relative to the current working directory.",
			"The .md extension is optional, and a bare post name works anywhere.",
		},
		examples: []string{
			"cat 11-building-a-blog.md    Display post by filename",
			"cat building-a-blog          Extension is optional",
			"cat posts/2016/04/11-building-a-blog.md   Full path",
			"bat building-a-blog          Alias for cat",
		},
		seeAlso: []string{"ls(1)", "less(1)", "cd(1)"},
	},
	"less": {
		name:     "less - read a blog post in the pager",
		synopsis: synopsis("less", required("FILE")),
		description: []string{
			"Open a blog post in a full-screen pager.",
			"",
			"Paths are resolved relative to the current working directory.",
			"The .md extension is optional.",
		},
		options: []manOption{
			{"j / Down", "Scroll down one line"},
			{"k / Up", "Scroll up one line"},
			{"Space / PageDown", "Scroll down one page"},
			{"b / PageUp", "Scroll up one page"},
			{"Ctrl+d", "Scroll down half page"},
			{"Ctrl+u", "Scroll up half page"},
			{"g / Home", "Go to top"},
			{"G / End", "Go to bottom"},
			{"q / Esc", "Close pager"},
		},
		examples: []string{
			"less 11-building-a-blog.md   Open post in pager",
			"less building-a-blog         Extension is optional",
		},
		seeAlso: []string{"cat(1)", "ls(1)"},
	},
	"cd": {
		name:     "cd - change directory",
		synopsis: synopsis("cd", optional("PATH")),
		description: []string{
			"Change the current working directory.",
			"",
			"With no arguments, changes to the home directory (~).",
			"Supports absolute paths, relative paths, ~, and ..",
		},
		examples: []string{
			"cd               Change to home directory",
			"cd posts/        Change to posts directory",
			"cd ..            Go up one level",
			"cd ~/posts/2016  Absolute path from home",
		},
		seeAlso: []string{"pwd(1)", "ls(1)"},
	},
	"pwd": {
		name:        "pwd - print working directory",
		synopsis:    synopsis("pwd"),
		description: []string{"Print the full pathname of the current working directory."},
		examples:    []string{"pwd              Print current directory"},
		seeAlso:     []string{"cd(1)", "ls(1)"},
	},
	"tree": {
		name:     "tree - display directory tree",
		synopsis: synopsis("tree", optional("PATH")),
		description: []string{
			"Display a tree view of the directory structure.",
			"",
			"Shows directories and files in a hierarchical format.",
			"With no arguments, displays the tree from the current directory.",
		},
		examples: []string{
			"tree             Show tree from current directory",
			"tree ~           Show tree from home directory",
			"tree posts/      Show tree of posts directory",
		},
		seeAlso: []string{"ls(1)", "cd(1)"},
	},
	"stats": {
		name:     "stats - display blog statistics",
		synopsis: synopsis("stats"),
		description: []string{
			"Display blog statistics in an htop-style interface.",
			"",
			"Shows metrics including total posts, word count, tags, posting velocity,",
			"and a breakdown of the most popular tags.",
		},
		examples: []string{"stats                Show blog statistics dashboard"},
		seeAlso:  []string{"tags(1)", "ls(1)"},
	},
	"tags": {
		name:     "tags - browse posts by tag",
		synopsis: synopsis("tags", optional("TAG")),
		description: []string{
			"Without arguments, list every tag sorted by the number of posts.",
			"",
			"With a tag, list the posts carrying it, newest first,",
			"followed by tags that often appear alongside it.",
		},
		examples: []string{
			"tags                 List all tags",
			"tags vim             Posts tagged vim",
		},
		seeAlso: []string{"stats(1)", "grep(1)"},
	},
	"grep": {
		name:     "grep - search post contents",
		synopsis: synopsis("grep", required("PATTERN")),
		description: []string{
			"Search every post for lines containing PATTERN, ignoring case.",
			"",
			"Each match is shown with one line of context and the file it came from.",
			fmt.Sprintf("At most %d matches are shown.", maxGrepMatches),
		},
		examples: []string{
			"grep terminal        Lines mentioning terminal",
			"grep set number      Multi-word patterns are joined with spaces",
		},
		seeAlso: []string{"cat(1)", "tags(1)"},
	},
	"man": {
		name:     "man - display manual pages",
		synopsis: synopsis("man", optional("COMMAND")),
		description: []string{
			"Display the manual page for a command.",
			"",
			"Without arguments, lists all available manual pages.",
		},
		examples: []string{
			"man                  List all available manual pages",
			"man ls               Display the ls manual",
			"man man              Display this manual (meta!)",
		},
		seeAlso: []string{"help(1)"},
	},
	"help": {
		name:        "help - show available commands",
		synopsis:    synopsis("help"),
		description: []string{"Display a quick reference of all available commands."},
		examples: []string{
			"help                 Show all commands",
			"h                    Alias for help",
		},
		seeAlso: []string{"man(1)"},
	},
	"clear": {
		name:     "clear - clear the terminal screen",
		synopsis: synopsis("clear"),
		description: []string{
			"Clear the terminal screen and scrollback buffer.",
			"Command history is preserved.",
		},
		examples: []string{
			"clear                Clear the screen",
			"c                    Alias for clear",
		},
	},
}

func section(title string) string {
	return ansi.Bold + ansi.Underline + title + ansi.Reset
}

const manIndent = "       "

func runMan(_ context.Context, inv *Invocation) error {
	if len(inv.Args) == 0 {
		names := make([]string, 0, len(manPages))
		for name := range manPages {
			names = append(names, name)
		}
		sort.Strings(names)

		lines := []string{"",
			section("NAME"), manIndent + "man - an interface to the terminal blog command reference manuals", "",
			section("SYNOPSIS"), manIndent + synopsis("man", optional("command")), "",
			section("DESCRIPTION"), manIndent + ansi.Bold + "man" + ansi.Reset + " displays the manual page for a given command.", "",
			section("AVAILABLE MANUAL PAGES"),
		}
		for _, n := range names {
			lines = append(lines, manIndent+ansi.Bold+n+ansi.Reset)
		}
		lines = append(lines, "",
			section("EXAMPLES"),
			manIndent+"man ls        Display the ls manual page",
			manIndent+"man cat       Display the cat manual page",
			"")
		terminal.WriteLines(inv.Term, lines...)
		return nil
	}

	name := strings.ToLower(inv.Args[0])
	page, ok := manPages[name]
	if !ok {
		terminal.WriteLines(inv.Term, "",
			ansi.Error("No manual entry for "+name),
			ansi.Faint("Try 'man' without arguments to see available manual pages"),
			"")
		return nil
	}

	lines := []string{"",
		section("NAME"), manIndent + page.name, "",
		section("SYNOPSIS"), manIndent + page.synopsis, "",
		section("DESCRIPTION"),
	}
	for _, l := range page.description {
		lines = append(lines, manIndent+l)
	}
	lines = append(lines, "")
	if len(page.options) > 0 {
		lines = append(lines, section("OPTIONS"))
		for _, o := range page.options {
			lines = append(lines, manIndent+ansi.Bold+o.flag+ansi.Reset, manIndent+"       "+o.description, "")
		}
	}
	lines = append(lines, section("EXAMPLES"))
	for _, e := range page.examples {
		lines = append(lines, manIndent+e)
	}
	lines = append(lines, "")
	if len(page.seeAlso) > 0 {
		lines = append(lines, section("SEE ALSO"), manIndent+strings.Join(page.seeAlso, ", "), "")
	}
	terminal.WriteLines(inv.Term, lines...)
	return nil
}
