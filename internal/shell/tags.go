package shell

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/fuzzy"
	"github.com/starford/termblog/internal/models"
	"github.com/starford/termblog/internal/terminal"
)

type tagCategory struct {
	color  string
	symbol string
	tags   []string
}

var tagCategories = []tagCategory{
	{ansi.BrightGreen, "⚡", []string{"programming", "webdev", "react", "typescript", "javascript", "python", "go", "rust", "java", "code", "development"}},
	{ansi.BrightMagenta, "🔧", []string{"vim", "git", "terminal", "cli", "shell", "bash", "zsh", "tmux", "productivity", "workflow", "tools"}},
	{ansi.BrightBlue, "📝", []string{"meta", "intro", "about", "announcement", "update"}},
	{ansi.BrightYellow, "📚", []string{"tutorial", "guide", "howto", "tips", "tricks", "learn"}},
}

func tagStyle(tag string) (color, symbol string) {
	lower := strings.ToLower(tag)
	for _, c := range tagCategories {
		if slices.Contains(c.tags, lower) {
			return c.color, c.symbol
		}
	}
	return ansi.BrightCyan, "🏷️"
}

// relatedTags counts tags that appear next to tag, most frequent first.
func relatedTags(tag string, posts []models.Entry, limit int) []string {
	counts := make(map[string]int)
	for _, p := range posts {
		if !slices.Contains(p.Meta.Tags, tag) {
			continue
		}
		for _, t := range p.Meta.Tags {
			if t != tag {
				counts[t]++
			}
		}
	}
	out := make([]string, 0, len(counts))
	for t := range counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out[:min(limit, len(out))]
}

func runTags(_ context.Context, inv *Invocation) error {
	all := inv.Catalog.Tags()
	if len(inv.Args) == 0 {
		terminal.WriteLines(inv.Term, tagsOverview(all)...)
		return nil
	}

	name := inv.Args[0]
	for _, tc := range all {
		if tc.Tag == name {
			terminal.WriteLines(inv.Term, tagPosts(name, tc.Count, inv.Catalog.Posts())...)
			return nil
		}
	}

	terminal.WriteLines(inv.Term, "", ansi.Error(fmt.Sprintf("tags: '%s': No such tag", name)))
	names := make([]string, len(all))
	for i, tc := range all {
		names[i] = tc.Tag
	}
	if suggestion, ok := fuzzy.Closest(name, names, 2); ok {
		terminal.WriteLines(inv.Term, "",
			ansi.Dim+"Did you mean "+ansi.Reset+ansi.BrightGreen+suggestion+ansi.Reset+ansi.Dim+"?"+ansi.Reset)
	} else {
		terminal.WriteLines(inv.Term, "",
			ansi.Dim+"Use "+ansi.Reset+ansi.Green+"tags"+ansi.Reset+ansi.Dim+" to see all tags"+ansi.Reset)
	}
	terminal.Writeln(inv.Term, "")
	return nil
}

func tagsOverview(all []catalog.TagCount) []string {
	rule := ansi.Rule(80)
	lines := []string{
		"",
		ansi.Bold + ansi.BrightCyan + "All Tags" + ansi.Reset + " " + ansi.Faint("(sorted by popularity)"),
		"",
		rule,
	}
	tagged := 0
	for i, tc := range all {
		color, symbol := tagStyle(tc.Tag)
		lines = append(lines, "  "+symbol+" "+ansi.PadRight(color+tc.Tag+ansi.Reset, 26)+" "+ansi.Faint(fmt.Sprintf("(%d)", tc.Count)))
		if i < len(all)-1 {
			lines = append(lines, rule)
		}
		tagged += tc.Count
	}
	return append(lines,
		rule,
		"",
		ansi.Faint(fmt.Sprintf("Total: %d tags, %d tagged posts", len(all), tagged)),
		"",
		ansi.Faint("Usage: tags <tagname> to see posts with a specific tag"),
		"",
	)
}

func tagPosts(tag string, count int, posts []models.Entry) []string {
	color, symbol := tagStyle(tag)
	rule := ansi.Rule(80)
	bar := ansi.Faint("│")
	lines := []string{
		"",
		fmt.Sprintf("%s%sPosts tagged with %s%s %s%s %s",
			ansi.Bold, ansi.BrightCyan, color, symbol, tag, ansi.Reset, ansi.Faint(fmt.Sprintf("(%d posts)", count))),
		"",
		rule,
	}

	var tagged []models.Entry
	for _, p := range posts {
		if slices.Contains(p.Meta.Tags, tag) {
			tagged = append(tagged, p)
		}
	}
	for i, p := range tagged {
		tags := make([]string, len(p.Meta.Tags))
		for j, t := range p.Meta.Tags {
			if t == tag {
				tags[j] = color + ansi.Bold + t + ansi.Reset
			} else {
				tags[j] = ansi.Faint(t)
			}
		}
		lines = append(lines,
			"  "+ansi.Faint(p.Meta.Date)+"  "+ansi.BrightGreen+p.Slug+ansi.Reset,
			"  "+bar+" "+ansi.BrightWhite+p.Meta.Title+ansi.Reset,
			"  "+bar+" "+ansi.Faint(p.Meta.Excerpt),
			"  "+bar+" "+strings.Join(tags, ", "),
		)
		if i < len(tagged)-1 {
			lines = append(lines, rule)
		}
	}
	lines = append(lines, rule)

	if related := relatedTags(tag, posts, 5); len(related) > 0 {
		colored := make([]string, len(related))
		for i, t := range related {
			c, _ := tagStyle(t)
			colored[i] = c + t + ansi.Reset
		}
		lines = append(lines, "", ansi.Dim+"Related tags: "+strings.Join(colored, ", ")+ansi.Reset)
	}
	return append(lines, "", ansi.Faint("Usage: cat <post-name> to read a post"), "")
}
