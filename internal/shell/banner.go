package shell

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/terminal"
)

var tips = []string{
	"Pro tip: Use Tab to autocomplete commands and post names",
	"Did you know? Arrow keys navigate your command history",
	"Shortcut: Ctrl+L clears the screen (same as 'clear')",
	"Try 'ls -l' for detailed post listings with dates and tags",
	"Fun fact: This blog is served by Go over a websocket",
	"Keyboard ninja: Ctrl+C cancels the current input",
	"Use 'cat' or 'bat' to read posts with syntax highlighting",
	"Terminal wisdom: Less is more, unless you're reading blogs",
	"The best interface is the one you don't have to think about",
	"Real programmers use the terminal. You're in good company.",
	"Remember: Type 'help' anytime to see available commands",
	"Hidden feature: Try the 'stats' command for blog analytics",
	"Search everything at once with 'grep <word>'",
	"Your command history is kept - use up/down arrows to browse",
	"Quality over quantity: Every post here is worth your time",
}

var fortunes = []string{
	"A good programmer looks both ways before crossing a one-way street.",
	"Always code as if the person who ends up maintaining your code is a violent psychopath who knows where you live.",
	"Walking on water and developing software from a specification are easy if both are frozen.",
	"Before software can be reusable it first has to be usable.",
	"The most important property of a program is whether it accomplishes the intention of its user.",
	"Simplicity is the soul of efficiency.",
	"Controlling complexity is the essence of computer programming.",
	"Programs must be written for people to read, and only incidentally for machines to execute.",
	"The function of good software is to make the complex appear to be simple.",
	"Truth can only be found in one place: the code.",
	"It's not a bug - it's an undocumented feature.",
	"Code never lies, comments sometimes do.",
	"Premature optimization is the root of all evil.",
	"Good code is its own best documentation.",
	"The best performance improvement is the transition from the nonworking state to the working state.",
}

// TipOfTheDay picks a tip from the day of the year.
func (s *Shell) TipOfTheDay() string {
	return tips[s.now().YearDay()%len(tips)]
}

// identityBox draws the name spaced out inside a double-line box.
func identityBox(name string) []string {
	spaced := strings.Join(strings.Split(strings.ToUpper(name), ""), " ")
	inner := max(35, utf8.RuneCountInString(spaced)+8)
	left := (inner - utf8.RuneCountInString(spaced)) / 2
	right := inner - utf8.RuneCountInString(spaced) - left
	blank := "  ║" + strings.Repeat(" ", inner) + "║"
	return []string{
		ansi.BrightCyan + ansi.Bold + "  ╔" + strings.Repeat("═", inner) + "╗",
		blank,
		"  ║" + strings.Repeat(" ", left) + spaced + strings.Repeat(" ", right) + "║",
		blank,
		"  ╚" + strings.Repeat("═", inner) + "╝" + ansi.Reset,
	}
}

func contactLines(id Identity) []string {
	var lines []string
	if id.Email != "" {
		obfuscated := strings.NewReplacer("@", " [at] ", ".", " . ").Replace(id.Email)
		lines = append(lines, "  "+ansi.PadRight(ansi.BrightGreen+"Email:"+ansi.Reset, 12)+ansi.Faint(obfuscated))
	}
	for _, l := range id.Links {
		label := ansi.BrightGreen + l.Label + ":" + ansi.Reset
		lines = append(lines, "  "+ansi.PadRight(label, 12)+ansi.Link(l.URL, ansi.Faint(l.URL)))
	}
	return lines
}

// Banner is the welcome screen written when a session starts.
func (s *Shell) Banner(env *Env) string {
	id := s.cfg.Identity
	lines := []string{""}
	lines = append(lines, identityBox(id.Name)...)
	lines = append(lines, "")
	if id.Tagline != "" {
		lines = append(lines, "  "+ansi.Faint(id.Tagline), "")
	}
	if contacts := contactLines(id); len(contacts) > 0 {
		lines = append(lines, contacts...)
		lines = append(lines, "")
	}

	if env.Catalog != nil {
		if posts := env.Catalog.Posts(); len(posts) > 0 {
			lines = append(lines, "  "+ansi.BrightWhite+ansi.Bold+"Recent Posts:"+ansi.Reset, "")
			for i, p := range posts[:min(3, len(posts))] {
				link := ansi.Link(env.BaseURL+"/post/"+p.Slug, ansi.BrightCyan+p.Slug+ansi.Reset)
				lines = append(lines, fmt.Sprintf("    %s%d. %s %s(%s) - %s%s",
					ansi.Dim, i+1, link, ansi.Dim, p.Meta.Date, p.Meta.Title, ansi.Reset))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines,
		"  "+ansi.Faint("Tip: "+s.TipOfTheDay()),
		"",
		"  "+ansi.Dim+"Type "+ansi.Reset+ansi.BrightGreen+"help"+ansi.Reset+ansi.Dim+" to get started."+ansi.Reset,
		"",
		"",
	)
	return strings.Join(lines, "\r\n")
}

func runFortune(_ context.Context, inv *Invocation) error {
	fortune := fortunes[rand.IntN(len(fortunes))]
	border := ansi.Bold + ansi.BrightCyan
	lines := []string{
		"",
		border + "╔" + strings.Repeat("═", 58) + "╗" + ansi.Reset,
		border + "║" + ansi.Reset + "  " + ansi.PadRight(ansi.BrightYellow+"✨ Your Fortune"+ansi.Reset, 56) + border + "║" + ansi.Reset,
		border + "╚" + strings.Repeat("═", 58) + "╝" + ansi.Reset,
		"",
	}
	for _, l := range ansi.Wrap(fortune, 55) {
		lines = append(lines, "  "+ansi.Faint(`"`+l+`"`))
	}
	terminal.WriteLines(inv.Term, append(lines, "")...)
	return nil
}
